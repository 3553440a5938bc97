package importer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Column mapping errors.
var (
	ErrNoDateColumn   = errors.New("statement has no date column")
	ErrNoAmountColumn = errors.New("statement has no amount column")
)

// Shape is the column layout of a statement.
type Shape string

const (
	// ShapeBank has separate withdrawal and deposit columns; the type of
	// each row follows from which one is filled.
	ShapeBank Shape = "bank"
	// ShapeGeneric has one amount column and no polarity.
	ShapeGeneric Shape = "generic"
)

// columnMap locates the source columns for each canonical field. A value
// of -1 means the column is absent.
type columnMap struct {
	shape       Shape
	date        int
	amount      int
	withdrawal  int
	deposit     int
	description int
	passthrough map[string]int
}

// passthroughColumns are canonical columns copied verbatim when a
// statement already carries them under their canonical name.
var passthroughColumns = []string{
	model.ColTime, model.ColType, model.ColCategory, model.ColPaymentMethod,
	model.ColAccount, model.ColSource, model.ColTags,
}

// detectShape maps a header row onto canonical fields.
//
// Bank shape applies when one header starts with "withdrawal" and another
// with "deposit". Otherwise headers are matched by substring: "date" (but
// not "value") for the date, "amount", "debit" or "cost" for the amount,
// and "desc", "particulars" or "narration" for the description. Each header
// maps to at most one field and the first matching header wins.
func detectShape(header []string) columnMap {
	m := columnMap{
		shape:       ShapeGeneric,
		date:        -1,
		amount:      -1,
		withdrawal:  -1,
		deposit:     -1,
		description: -1,
		passthrough: make(map[string]int),
	}

	for i, h := range header {
		lower := strings.ToLower(h)
		switch {
		case strings.HasPrefix(lower, "withdrawal") && m.withdrawal < 0:
			m.withdrawal = i
		case strings.HasPrefix(lower, "deposit") && m.deposit < 0:
			m.deposit = i
		}
	}
	if m.withdrawal >= 0 && m.deposit >= 0 {
		m.shape = ShapeBank
	}

	for i, h := range header {
		lower := strings.ToLower(h)
		switch {
		case strings.Contains(lower, "date") && !strings.Contains(lower, "value"):
			if m.date < 0 {
				m.date = i
			}
		case containsAny(lower, "amount", "debit", "cost"):
			if m.amount < 0 && m.shape == ShapeGeneric {
				m.amount = i
			}
		case containsAny(lower, "desc", "particulars", "narration"):
			if m.description < 0 {
				m.description = i
			}
		}
	}

	for _, col := range passthroughColumns {
		for i, h := range header {
			if h == col {
				m.passthrough[col] = i
				break
			}
		}
	}
	if m.shape == ShapeBank {
		// Polarity comes from the amount columns.
		delete(m.passthrough, model.ColType)
	}
	return m
}

func (m columnMap) validate() error {
	if m.date < 0 {
		return ErrNoDateColumn
	}
	if m.shape == ShapeGeneric && m.amount < 0 {
		return ErrNoAmountColumn
	}
	return nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// excelSerialMax is the serial of 9999-12-31, the last date Excel knows.
const excelSerialMax = 2958465

// parseStatementDate reads a statement date day-first. Bare numbers are
// taken as Excel date serials.
func parseStatementDate(s string) (time.Time, error) {
	if d, err := model.ParseDate(s, true); err == nil {
		return d, nil
	}

	serial, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || serial < 1 || serial > excelSerialMax {
		return time.Time{}, fmt.Errorf("%w: %q", model.ErrUnparseableDate, s)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", model.ErrUnparseableDate, s, err)
	}
	return model.CalendarDate(t), nil
}

// parseStatementAmount coerces an amount cell; anything non-numeric is 0.
func parseStatementAmount(s string) decimal.Decimal {
	d, _ := model.ParseAmount(s)
	return d
}
