package model

import "github.com/shopspring/decimal"

// RecurringProfile is a monthly payment template. Name doubles as the
// description a paid occurrence carries in the ledger.
type RecurringProfile struct {
	Name     string
	Amount   decimal.Decimal
	Category string
	Type     EntryType
	Day      int
}
