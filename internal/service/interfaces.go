// Package service defines the interfaces shared between the ledger components.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/shopspring/decimal"
)

// LedgerStore persists the canonical ledger as a whole. Every mutation is
// a full load, mutate, save cycle; there is no lock around it, so two
// concurrent writers can lose one another's update.
type LedgerStore interface {
	Load(ctx context.Context) ([]model.LedgerEntry, error)
	Save(ctx context.Context, entries []model.LedgerEntry) error
}

// RegistryBackend is a primary store for registry items, keyed by kind.
type RegistryBackend interface {
	LoadItems(ctx context.Context, kind model.RegistryKind) ([]model.RegistryItem, error)
	SaveItems(ctx context.Context, kind model.RegistryKind, items []model.RegistryItem) error
}

// DefaultAccountResolver names the account that unattributed entries go to.
type DefaultAccountResolver interface {
	DefaultName(ctx context.Context) string
}

// RuleSource provides the current categorization rules.
type RuleSource interface {
	Load(ctx context.Context) (*model.Rules, error)
}

// RetryOptions configures retry behavior for remote operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// TransactionFilter defines filtering options for ledger queries. Empty
// slices and nil dates do not filter.
type TransactionFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Accounts   []string
	Categories []string
	Types      []model.EntryType
	Limit      int
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// CategorySummary contains aggregated statistics for a category.
type CategorySummary struct {
	Count  int
	Amount decimal.Decimal
}

// DailyTotal is the expense total for one calendar day.
type DailyTotal struct {
	Date   time.Time
	Amount decimal.Decimal
}

// CashFlowSummary contains income, expense, and net flow calculations.
type CashFlowSummary struct {
	DateRange          DateRange
	ExpensesByCategory map[string]CategorySummary
	DailyExpenses      []DailyTotal
	Recent             []model.LedgerEntry
	TotalIncome        decimal.Decimal
	TotalExpenses      decimal.Decimal
	CreditCardSpending decimal.Decimal
	NetSavings         decimal.Decimal
	TransferTotal      decimal.Decimal
}
