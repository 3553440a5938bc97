package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"github.com/Veraticus/spice-ledger/internal/sheets"
)

var _ sheets.Table = (*CSVFile)(nil)

// CSVFile is the local ledger mirror: a header row followed by one row per
// entry. It satisfies sheets.Table so it can stand in for the remote sheet.
type CSVFile struct {
	path string
}

// NewCSVFile creates a CSV table stored at path.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path}
}

// Path returns the file location.
func (f *CSVFile) Path() string {
	return f.path
}

// ReadAll returns every row. A missing file is an empty table.
func (f *CSVFile) ReadAll(ctx context.Context) ([][]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	file, err := os.Open(f.path) // #nosec G304
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.path, err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptLedger, f.path, err)
	}
	return rows, nil
}

// ReplaceAll overwrites the file with rows.
func (f *CSVFile) ReplaceAll(ctx context.Context, rows [][]string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	return writeFileAtomic(f.path, buf.Bytes())
}
