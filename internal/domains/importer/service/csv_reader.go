package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"catalog-importer/internal/domains/importer/model"
)

// catalogReader streams data rows of a catalog file after its header.
type catalogReader struct {
	src     io.Closer
	csv     *csv.Reader
	columns *model.ColumnMap
	rows    int // data rows read so far
}

func openCatalog(path string) (*catalogReader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, model.ErrFileNotFound
		}
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return newCatalogReader(f, path)
}

// newCatalogReader reads the header of src. src is closed on error.
func newCatalogReader(src io.ReadCloser, name string) (*catalogReader, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1 // width is checked per row against the header
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		src.Close()
		return nil, model.ErrEmptyHeader
	}
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns, err := model.NewColumnMap(header)
	if err != nil {
		src.Close()
		return nil, err
	}
	if unknown := columns.Unknown(); len(unknown) > 0 {
		log.Debug().Str("file", name).Strs("columns", unknown).Msg("Ignoring unknown catalog columns")
	}

	return &catalogReader{src: src, csv: r, columns: columns}, nil
}

// Next returns the next data row. A row the parser rejects is still
// consumed and reported with model.ErrColumnMismatch; io.EOF ends the file.
func (c *catalogReader) Next() ([]string, error) {
	fields, err := c.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	c.rows++

	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return nil, fmt.Errorf("%w: %v", model.ErrColumnMismatch, parseErr)
	}
	if err != nil {
		return nil, fmt.Errorf("read row %d: %w", c.rows, err)
	}
	return fields, nil
}

// Skip consumes n data rows without inspecting them.
func (c *catalogReader) Skip(n int) (int, error) {
	skipped := 0
	for skipped < n {
		_, err := c.Next()
		if err == io.EOF {
			break
		}
		if err != nil && !errors.Is(err, model.ErrColumnMismatch) {
			return skipped, err
		}
		skipped++
	}
	return skipped, nil
}

func (c *catalogReader) Close() error {
	return c.src.Close()
}

// CountImportableRows counts data rows that are neither blank nor of a
// different width than the header.
func CountImportableRows(path string) (int, error) {
	reader, err := openCatalog(path)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	total := 0
	for {
		fields, err := reader.Next()
		if err == io.EOF {
			return total, nil
		}
		if errors.Is(err, model.ErrColumnMismatch) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if reader.columns.Importable(fields) {
			total++
		}
	}
}
