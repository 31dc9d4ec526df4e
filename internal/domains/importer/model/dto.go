package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// StartImportRequest is the body (or query) of start_import.
type StartImportRequest struct {
	BatchSize *int   `json:"batch_size" form:"batch_size"`
	StartRow  *int   `json:"start_row" form:"start_row"`
	JobID     string `json:"job_id" form:"job_id"`
}

func (r StartImportRequest) Validate(maxBatchSize int) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BatchSize,
			validation.When(r.BatchSize != nil,
				validation.Required.Error("batch_size must be at least 1"),
				validation.Min(1).Error("batch_size must be at least 1"),
				validation.Max(maxBatchSize).Error("batch_size exceeds the allowed maximum"),
			),
		),
		validation.Field(&r.StartRow,
			validation.When(r.StartRow != nil,
				validation.Min(0).Error("start_row must not be negative"),
			),
		),
		validation.Field(&r.JobID,
			validation.When(r.JobID != "",
				validation.Match(jobIDPattern).Error("job_id may only contain letters, digits, '-' and '_'"),
			),
		),
	)
}

// StartImportResponse is the success payload of start_import.
type StartImportResponse struct {
	Imported  int          `json:"imported"`
	Total     int          `json:"total"`
	NextRow   int          `json:"next_row"`
	Completed bool         `json:"completed"`
	Batch     *BatchResult `json:"batch"`
}

// ProgressResponse is the payload of check_import_progress.
type ProgressResponse struct {
	JobID    string `json:"job_id"`
	Imported int    `json:"imported"`
	Total    int    `json:"total"`
	Cursor   int    `json:"cursor"`
	Active   bool   `json:"active"`
}
