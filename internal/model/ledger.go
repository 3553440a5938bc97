package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType carries the polarity of a ledger entry. Amounts are never signed.
type EntryType string

const (
	// TypeExpense is money leaving an account.
	TypeExpense EntryType = "Expense"
	// TypeIncome is money arriving in an account.
	TypeIncome EntryType = "Income"
	// TypeTransfer moves money between the operator's own accounts.
	TypeTransfer EntryType = "Transfer"
)

// EntrySource records how an entry reached the ledger.
type EntrySource string

const (
	// SourceManual marks entries typed in by the operator.
	SourceManual EntrySource = "Manual"
	// SourceUpload marks entries produced by a statement import.
	SourceUpload EntrySource = "Upload"
	// SourceRecurring marks entries written when a recurring payment is marked paid.
	SourceRecurring EntrySource = "Recurring Auto"
)

// Canonical ledger column names.
const (
	ColDate          = "Date"
	ColTime          = "Time"
	ColType          = "Type"
	ColCategory      = "Category"
	ColAmount        = "Amount"
	ColPaymentMethod = "Payment Method"
	ColAccount       = "Account"
	ColDescription   = "Description"
	ColSource        = "Source"
	ColTags          = "Tags"
)

// Columns is the canonical column order. Stored ledgers depend on it.
var Columns = []string{
	ColDate, ColTime, ColType, ColCategory, ColAmount,
	ColPaymentMethod, ColAccount, ColDescription, ColSource, ColTags,
}

// Defaults applied to imported rows that lack the corresponding column.
const (
	DefaultTime          = "00:00"
	DefaultPaymentMethod = "Transfer"
	DefaultCategory      = "Uncategorized"
	DefaultDescription   = "Imported Transaction"
	DefaultAccountName   = "Main Account"
)

// LedgerEntry is one canonical ledger row.
//
// Amount is always non-negative; Type says which way the money moved.
// A zero Date means the stored value could not be parsed.
type LedgerEntry struct {
	Date          time.Time
	Amount        decimal.Decimal
	Time          string
	Type          EntryType
	Category      string
	PaymentMethod string
	Account       string
	Description   string
	Source        EntrySource
	Tags          string
}

// DedupKey is the structural identity of an entry for deduplication.
type DedupKey struct {
	Date        string
	Amount      string
	Description string
}

// Key returns the (date, amount, description) identity of the entry. The
// amount is compared in its stored form.
func (e LedgerEntry) Key() DedupKey {
	return DedupKey{
		Date:        FormatDate(e.Date),
		Amount:      e.Amount.StringFixed(AmountPlaces),
		Description: e.Description,
	}
}

// Record renders the entry in canonical column order. Dates are written as
// plain text so no backend applies its own date encoding.
func (e LedgerEntry) Record() []string {
	return []string{
		FormatDate(e.Date),
		e.Time,
		string(e.Type),
		e.Category,
		e.Amount.StringFixed(AmountPlaces),
		e.PaymentMethod,
		e.Account,
		e.Description,
		string(e.Source),
		e.Tags,
	}
}

// TagList splits the comma-separated tags field.
func (e LedgerEntry) TagList() []string {
	var tags []string
	for _, t := range strings.Split(e.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// ColumnIndex maps header names to their position in a row. Columns that
// are not part of the canonical set are kept in the index but never read
// into a LedgerEntry.
type ColumnIndex map[string]int

// NewColumnIndex indexes a header row. Names are trimmed; the first
// occurrence of a duplicated name wins.
func NewColumnIndex(header []string) ColumnIndex {
	idx := make(ColumnIndex, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return idx
}

// Has reports whether the header contains the column.
func (c ColumnIndex) Has(col string) bool {
	_, ok := c[col]
	return ok
}

// Value returns the cell for col in row. Short rows yield "".
func (c ColumnIndex) Value(row []string, col string) (string, bool) {
	i, ok := c[col]
	if !ok {
		return "", false
	}
	if i >= len(row) {
		return "", true
	}
	return strings.TrimSpace(row[i]), true
}
