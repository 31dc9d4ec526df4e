package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"catalog-importer/internal/domains/importer/model"
)

// maxReportedErrors bounds BatchResult.Errors; counters stay exact.
const maxReportedErrors = 50

type ImportService interface {
	// RunBatch imports up to BatchSize rows starting after StartRow data
	// rows. Nothing is recorded when the file is missing.
	RunBatch(ctx context.Context, req model.BatchRequest) (*model.BatchResult, error)
	Progress(ctx context.Context, jobID string) (*model.JobState, error)
	Reset(ctx context.Context, jobID string) error
}

type OrchestratorOptions struct {
	FilePath string // used when a request names no file
}

type orchestrator struct {
	rows     RowImporter
	progress ProgressStore
	filePath string
	open     func(path string) (*catalogReader, error)
}

func NewImportService(rows RowImporter, progress ProgressStore, opts OrchestratorOptions) ImportService {
	return &orchestrator{
		rows:     rows,
		progress: progress,
		filePath: opts.FilePath,
		open:     openCatalog,
	}
}

func (o *orchestrator) normalize(req model.BatchRequest) (model.BatchRequest, error) {
	if req.JobID == "" {
		req.JobID = model.DefaultJobID
	}
	if !model.ValidJobID(req.JobID) {
		return req, model.ErrInvalidJobID
	}
	if req.FilePath == "" {
		req.FilePath = o.filePath
	}
	if req.BatchSize <= 0 {
		return req, model.ErrInvalidBatchSize
	}
	if req.StartRow < 0 {
		return req, model.ErrInvalidStartRow
	}
	return req, nil
}

func (o *orchestrator) RunBatch(ctx context.Context, req model.BatchRequest) (*model.BatchResult, error) {
	started := time.Now()

	req, err := o.normalize(req)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(req.FilePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, model.ErrFileNotFound
		}
		return nil, fmt.Errorf("stat import file: %w", err)
	}

	// offset 0 starts a new run of the job and recounts the file
	if req.StartRow == 0 {
		if err := o.progress.Clear(ctx, req.JobID); err != nil {
			return nil, err
		}
	}

	total, err := o.progress.GetOrComputeTotal(ctx, req.JobID, req.FilePath, func() (int, error) {
		return CountImportableRows(req.FilePath)
	})
	if err != nil {
		return nil, err
	}

	reader, err := o.open(req.FilePath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	// rows up to the stored cursor were counted by an earlier batch
	resumeFrom := 0
	prior, err := o.progress.Get(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		resumeFrom = prior.Cursor
	}

	result := &model.BatchResult{JobID: req.JobID, Total: total}

	skipped, err := reader.Skip(req.StartRow)
	if err != nil {
		return nil, err
	}
	eof := skipped < req.StartRow
	position := func() int { return req.StartRow + (reader.rows - skipped) }

	var runErr error
	for !eof && result.ImportedThisBatch < req.BatchSize {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		fields, err := reader.Next()
		if err == io.EOF {
			eof = true
			break
		}
		row := reader.rows

		if err == nil {
			var rec *model.ProductRecord
			rec, err = reader.columns.Map(row, fields)
			if err == nil {
				o.dispatch(ctx, rec, result)
				if position() <= resumeFrom {
					result.Replayed++
				}
				continue
			}
		}

		switch {
		case errors.Is(err, model.ErrBlankRow):
			result.Skipped++
			log.Debug().Int("row", row).Msg("Skipping blank row")
		case errors.Is(err, model.ErrColumnMismatch):
			result.Skipped++
			o.addError(result, row, "", err)
			log.Warn().Int("row", row).Int("expected", reader.columns.Width()).Int("got", len(fields)).
				Msg("Skipping row with mismatched column count")
		default:
			runErr = err
		}
		if runErr != nil {
			break
		}
	}

	// an unreadable row is retried by the next batch
	cursor := position()
	if runErr != nil && ctx.Err() == nil {
		cursor--
	}

	// an interrupted batch still records the rows it finished
	recordCtx := ctx
	if ctx.Err() != nil {
		recordCtx = context.WithoutCancel(ctx)
	}
	state, err := o.progress.RecordProgress(recordCtx, model.JobState{
		JobID:    req.JobID,
		FilePath: req.FilePath,
		Total:    total,
		Cursor:   cursor,
	}, result.ImportedThisBatch-result.Replayed)
	if err != nil {
		return nil, err
	}

	result.Imported = state.Imported
	result.NextRow = cursor
	result.Completed = runErr == nil && (state.Imported >= total || eof)
	if result.Completed {
		result.NextRow = total
		if err := o.progress.Clear(ctx, req.JobID); err != nil {
			return nil, err
		}
	}
	result.Duration = time.Since(started).String()

	log.Info().
		Str("job_id", req.JobID).
		Int("start_row", req.StartRow).
		Int("batch", result.ImportedThisBatch).
		Int("imported", result.Imported).
		Int("total", total).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Int("replayed", result.Replayed).
		Bool("completed", result.Completed).
		Msg("Import batch finished")

	if runErr != nil {
		return result, fmt.Errorf("import batch interrupted at row %d: %w", cursor, runErr)
	}
	return result, nil
}

// dispatch hands one mapped record to the row importer. Every dispatched
// row counts toward the batch, whatever its outcome.
func (o *orchestrator) dispatch(ctx context.Context, rec *model.ProductRecord, result *model.BatchResult) {
	result.ImportedThisBatch++

	res, err := o.rows.ImportRow(ctx, rec)
	switch {
	case errors.Is(err, model.ErrMissingStockNo):
		result.Skipped++
		o.addError(result, rec.Row, "", err)
		log.Warn().Int("row", rec.Row).Msg("Skipping row without stock #")
	case err != nil:
		result.Failed++
		o.addError(result, rec.Row, rec.Core.StockNo, err)
		log.Error().Err(err).Int("row", rec.Row).Str("stock_no", rec.Core.StockNo).Msg("Row import failed")
	case res.Outcome == model.RowCreated:
		result.Created++
	default:
		result.Updated++
	}
}

func (o *orchestrator) addError(result *model.BatchResult, row int, stockNo string, err error) {
	if len(result.Errors) >= maxReportedErrors {
		return
	}
	result.Errors = append(result.Errors, model.RowError{Row: row, StockNo: stockNo, Reason: err.Error()})
}

func (o *orchestrator) Progress(ctx context.Context, jobID string) (*model.JobState, error) {
	if jobID == "" {
		jobID = model.DefaultJobID
	}
	if !model.ValidJobID(jobID) {
		return nil, model.ErrInvalidJobID
	}
	return o.progress.Get(ctx, jobID)
}

func (o *orchestrator) Reset(ctx context.Context, jobID string) error {
	if jobID == "" {
		jobID = model.DefaultJobID
	}
	if !model.ValidJobID(jobID) {
		return model.ErrInvalidJobID
	}
	return o.progress.Clear(ctx, jobID)
}
