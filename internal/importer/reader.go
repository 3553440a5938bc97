package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/xuri/excelize/v2"
)

// Format is a statement file format.
type Format string

// Supported statement formats.
const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatOFX  Format = "ofx"
)

// FormatFromName picks the format from a file name's extension.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	case ".ofx", ".qfx":
		return FormatOFX, nil
	default:
		return "", fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, filepath.Base(name))
	}
}

// Sheet is tabular statement content: a header row and data rows.
// Header names are trimmed.
type Sheet struct {
	Header []string
	Rows   [][]string
}

func newSheet(rows [][]string) Sheet {
	// Skip leading blank rows so a title-less export still finds its header.
	for len(rows) > 0 && blankRow(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return Sheet{}
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	return Sheet{Header: header, Rows: rows[1:]}
}

// ReadXLSX reads the first worksheet of a workbook. Cells are read as
// stored, so dates arrive as Excel serial numbers unless they were typed
// as text.
func ReadXLSX(r io.Reader) (Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Sheet{}, nil
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to read worksheet %q: %w", sheets[0], err)
	}
	return newSheet(rows), nil
}

// ReadCSV reads a comma-separated statement.
func ReadCSV(r io.Reader) (Sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return newSheet(rows), nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
