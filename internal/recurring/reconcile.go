// Package recurring tracks monthly payment templates and which of them
// are still unpaid in the current month.
package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// Payment details written for a profile marked as paid.
const (
	PaidPaymentMethod = "Bank Transfer"
	PaidTags          = "#recurring"
)

// Pending returns the profiles with no ledger entry in now's month whose
// description equals the profile name exactly. Order is preserved.
func Pending(entries []model.LedgerEntry, profiles []model.RecurringProfile, now time.Time) []model.RecurringProfile {
	paid := make(map[string]bool)
	for _, e := range ledger.InMonth(entries, now) {
		paid[e.Description] = true
	}

	pending := make([]model.RecurringProfile, 0, len(profiles))
	for _, p := range profiles {
		if !paid[p.Name] {
			pending = append(pending, p)
		}
	}
	return pending
}

// EntryAdder appends a single entry to the ledger.
type EntryAdder interface {
	Add(ctx context.Context, in ledger.EntryInput) (model.LedgerEntry, error)
}

// Reconciler joins the profile store with the ledger.
type Reconciler struct {
	profiles *FileStore
	ledger   service.LedgerStore
	writer   EntryAdder
	logger   *slog.Logger
	now      func() time.Time
}

// NewReconciler creates a reconciler.
func NewReconciler(profiles *FileStore, store service.LedgerStore, writer EntryAdder, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		profiles: profiles,
		ledger:   store,
		writer:   writer,
		logger:   logger,
		now:      time.Now,
	}
}

// Pending loads the ledger and profiles and returns this month's unpaid
// profiles.
func (r *Reconciler) Pending(ctx context.Context) ([]model.RecurringProfile, error) {
	profiles, err := r.profiles.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}

	entries, err := r.ledger.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return Pending(entries, profiles, r.now()), nil
}

// MarkPaid records the profile called name as paid today.
func (r *Reconciler) MarkPaid(ctx context.Context, name string) (model.LedgerEntry, error) {
	profile, err := r.profiles.Get(ctx, name)
	if err != nil {
		return model.LedgerEntry{}, err
	}
	if profile == nil {
		return model.LedgerEntry{}, fmt.Errorf("%w: recurring profile %q", common.ErrNotFound, name)
	}
	return MarkPaid(ctx, r.writer, *profile, r.now())
}

// MarkPaid writes the ledger entry for one occurrence of profile.
func MarkPaid(ctx context.Context, w EntryAdder, profile model.RecurringProfile, now time.Time) (model.LedgerEntry, error) {
	entry, err := w.Add(ctx, ledger.EntryInput{
		Date:          now,
		Amount:        profile.Amount,
		Type:          profile.Type,
		Category:      profile.Category,
		PaymentMethod: PaidPaymentMethod,
		Description:   profile.Name,
		Source:        model.SourceRecurring,
		Tags:          PaidTags,
	})
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("failed to record %q: %w", profile.Name, err)
	}
	return entry, nil
}
