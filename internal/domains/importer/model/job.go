package model

import (
	"regexp"
	"time"
)

// DefaultJobID is used when the caller does not name a job.
const DefaultJobID = "default"

var jobIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidJobID reports whether id can be used in progress keys.
func ValidJobID(id string) bool {
	return jobIDPattern.MatchString(id)
}

// JobState is the persisted state of one import run.
type JobState struct {
	JobID     string    `json:"job_id"`
	FilePath  string    `json:"file_path"`
	Total     int       `json:"total"`
	Imported  int       `json:"imported"` // cumulative, never above Total
	Cursor    int       `json:"cursor"`   // data rows consumed so far
	UpdatedAt time.Time `json:"updated_at"`
}

// BatchRequest asks the orchestrator for one bounded batch.
type BatchRequest struct {
	JobID     string
	FilePath  string
	BatchSize int
	StartRow  int // data rows to skip, header excluded
}

// RowOutcome classifies what happened to one dispatched row.
type RowOutcome string

const (
	RowCreated RowOutcome = "created"
	RowUpdated RowOutcome = "updated"
	RowSkipped RowOutcome = "skipped"
	RowFailed  RowOutcome = "failed"
)

// RowResult is the outcome of importing one record.
type RowResult struct {
	Row       int        `json:"row"`
	StockNo   string     `json:"stock_no,omitempty"`
	ProductID string     `json:"product_id,omitempty"`
	Outcome   RowOutcome `json:"outcome"`
	ImageSet  bool       `json:"image_set,omitempty"`
	Warnings  []string   `json:"warnings,omitempty"`
}

// RowError records a row that did not produce a product.
type RowError struct {
	Row     int    `json:"row"`
	StockNo string `json:"stock_no,omitempty"`
	Reason  string `json:"reason"`
}

// BatchResult summarises one RunBatch call.
type BatchResult struct {
	JobID             string `json:"job_id"`
	ImportedThisBatch int    `json:"imported_this_batch"`
	Imported          int    `json:"imported"`
	Total             int    `json:"total"`
	NextRow           int    `json:"next_row"`
	Completed         bool   `json:"completed"`

	Created  int        `json:"created"`
	Updated  int        `json:"updated"`
	Skipped  int        `json:"skipped"`  // blank, malformed or keyless rows
	Failed   int        `json:"failed"`   // rows whose save failed
	Replayed int        `json:"replayed"` // rows at or before the stored cursor, not added to Imported
	Errors   []RowError `json:"errors,omitempty"`
	Duration string     `json:"duration"`
}
