package model

import "errors"

var (
	// Job level: the batch is refused and progress is untouched.
	ErrFileNotFound     = errors.New("import file not found")
	ErrEmptyHeader      = errors.New("import file has no header")
	ErrInvalidBatchSize = errors.New("batch size must be positive")
	ErrInvalidStartRow  = errors.New("start row must not be negative")
	ErrInvalidJobID     = errors.New("invalid job id")

	// Row level: the row is skipped and the batch continues.
	ErrMissingStockNo = errors.New("stock # is blank")
	ErrColumnMismatch = errors.New("row column count does not match header")
	ErrBlankRow       = errors.New("row is blank")
)
