package model

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the plain-text date format used by every ledger backend.
const DateLayout = "2006-01-02"

// ErrUnparseableDate is returned when no known layout matches.
var ErrUnparseableDate = errors.New("unparseable date")

var isoLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006/01/02",
}

var dayFirstLayouts = []string{
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
	"2-1-06",
	"2.1.2006",
	"2.1.06",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2 Jan 2006",
	"2-Jan-2006",
	"2-Jan-06",
	"2 Jan 06",
	"2 January 2006",
}

var monthFirstLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"1-2-2006",
	"1-2-06",
	"1/2/2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate parses s into a calendar date at UTC midnight. ISO layouts are
// always tried first. With dayFirst the ambiguous numeric layouts are read
// as day/month and fall back to month/day only when that fails (e.g.
// "01/13/2024").
func ParseDate(s string, dayFirst bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrUnparseableDate
	}

	groups := [][]string{isoLayouts, monthFirstLayouts, dayFirstLayouts}
	if dayFirst {
		groups = [][]string{isoLayouts, dayFirstLayouts, monthFirstLayouts}
	}

	for _, layouts := range groups {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return CalendarDate(t), nil
			}
		}
	}
	return time.Time{}, ErrUnparseableDate
}

// CalendarDate truncates t to its calendar day in UTC.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a calendar date; the zero date renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// AmountPlaces is the number of decimal places amounts are stored with.
const AmountPlaces = 2

// RoundAmount rounds d to the stored precision, half away from zero.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountPlaces)
}

// ParseAmount coerces a cell into a decimal. Thousands separators and
// surrounding whitespace are tolerated; anything else that is not numeric
// yields zero and false.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
