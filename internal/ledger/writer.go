// Package ledger holds the single-entry write path and the read-side
// filters and summaries over a loaded ledger.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/shopspring/decimal"
)

// Entry validation errors.
var (
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrInvalidType    = errors.New("invalid entry type")
)

// EntryInput is a single entry as supplied by a caller. Zero values are
// replaced with defaults: today's date, "00:00", the "Main Account"
// account and the Manual source.
type EntryInput struct {
	Date          time.Time
	Amount        decimal.Decimal
	Time          string
	Type          model.EntryType
	Category      string
	PaymentMethod string
	Account       string
	Description   string
	Source        model.EntrySource
	Tags          string
}

// Writer appends entries one at a time. Each Add loads the whole ledger,
// appends and saves it back; it is not an atomic append.
type Writer struct {
	store  service.LedgerStore
	logger *slog.Logger
	now    func() time.Time
}

// NewWriter creates a writer over store.
func NewWriter(store service.LedgerStore, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{store: store, logger: logger, now: time.Now}
}

// Add validates in, fills defaults and appends it to the ledger.
func (w *Writer) Add(ctx context.Context, in EntryInput) (model.LedgerEntry, error) {
	entry, err := w.build(in)
	if err != nil {
		return model.LedgerEntry{}, err
	}

	entries, err := w.store.Load(ctx)
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("failed to load ledger: %w", err)
	}

	entries = append(entries, entry)
	if err := w.store.Save(ctx, entries); err != nil {
		return model.LedgerEntry{}, fmt.Errorf("failed to save ledger: %w", err)
	}

	w.logger.Info("added ledger entry",
		"date", model.FormatDate(entry.Date),
		"type", entry.Type,
		"amount", entry.Amount.StringFixed(2),
		"description", entry.Description)
	return entry, nil
}

func (w *Writer) build(in EntryInput) (model.LedgerEntry, error) {
	if in.Amount.IsNegative() {
		return model.LedgerEntry{}, fmt.Errorf("%w: %s", ErrNegativeAmount, in.Amount)
	}
	switch in.Type {
	case model.TypeExpense, model.TypeIncome, model.TypeTransfer:
	default:
		return model.LedgerEntry{}, fmt.Errorf("%w: %q", ErrInvalidType, in.Type)
	}

	entry := model.LedgerEntry{
		Date:          in.Date,
		Amount:        model.RoundAmount(in.Amount),
		Time:          strings.TrimSpace(in.Time),
		Type:          in.Type,
		Category:      strings.TrimSpace(in.Category),
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
		Account:       strings.TrimSpace(in.Account),
		Description:   strings.TrimSpace(in.Description),
		Source:        in.Source,
		Tags:          strings.TrimSpace(in.Tags),
	}

	if entry.Date.IsZero() {
		entry.Date = w.now()
	}
	entry.Date = model.CalendarDate(entry.Date)
	if entry.Time == "" {
		entry.Time = model.DefaultTime
	}
	if entry.Account == "" {
		entry.Account = model.DefaultAccountName
	}
	if entry.Source == "" {
		entry.Source = model.SourceManual
	}
	return entry, nil
}
