package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/sheets"
)

var _ service.LedgerStore = (*LedgerStore)(nil)

// LedgerStore reads and writes the whole ledger.
//
// The remote sheet, when the probe found one, is the read source; a failed
// remote read falls back to the local file for that call only. Saves write
// the remote best-effort and the local file always, so the local file is a
// complete mirror whenever the last save succeeded.
type LedgerStore struct {
	local    sheets.Table
	accounts service.DefaultAccountResolver
	logger   *slog.Logger
	remote   RemoteProbe
}

// NewLedgerStore creates a ledger store. accounts names the account stamped
// onto rows stored without one; it may be nil.
func NewLedgerStore(local sheets.Table, remote RemoteProbe, accounts service.DefaultAccountResolver, logger *slog.Logger) (*LedgerStore, error) {
	if local == nil {
		return nil, ErrNoLocalBackend
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerStore{
		local:    local,
		remote:   remote,
		accounts: accounts,
		logger:   logger,
	}, nil
}

// Remote reports whether the remote ledger is in use.
func (s *LedgerStore) Remote() bool {
	return s.remote.Available()
}

// Load returns the canonical ledger, empty if nothing is stored yet.
func (s *LedgerStore) Load(ctx context.Context) ([]model.LedgerEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.readRows(ctx)
	if err != nil {
		return nil, err
	}
	return s.decode(ctx, rows), nil
}

// Save overwrites the stored ledger with entries.
func (s *LedgerStore) Save(ctx context.Context, entries []model.LedgerEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	rows := EncodeLedger(entries)

	if s.remote.Available() {
		if err := s.remote.Table.ReplaceAll(ctx, rows); err != nil {
			s.logger.Warn("failed to save remote ledger, local file still written", "error", err)
		}
	}

	if err := s.local.ReplaceAll(ctx, rows); err != nil {
		return fmt.Errorf("failed to save local ledger: %w", err)
	}

	s.logger.Debug("saved ledger", "entries", len(entries), "remote", s.remote.Available())
	return nil
}

func (s *LedgerStore) readRows(ctx context.Context) ([][]string, error) {
	if s.remote.Available() {
		rows, err := s.remote.Table.ReadAll(ctx)
		if err == nil {
			return rows, nil
		}
		s.logger.Warn("failed to read remote ledger, using local file", "error", err)
	}

	rows, err := s.local.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load local ledger: %w", err)
	}
	return rows, nil
}

// decode turns stored rows into entries. Missing columns read as empty;
// rows without an account are attributed to the default account.
func (s *LedgerStore) decode(ctx context.Context, rows [][]string) []model.LedgerEntry {
	if len(rows) == 0 {
		return []model.LedgerEntry{}
	}

	idx := model.NewColumnIndex(rows[0])
	entries := make([]model.LedgerEntry, 0, len(rows)-1)

	var defaultAccount string
	for n, row := range rows[1:] {
		if blankRow(row) {
			continue
		}

		var e model.LedgerEntry
		if raw, _ := idx.Value(row, model.ColDate); raw != "" {
			date, err := model.ParseDate(raw, false)
			if err != nil {
				s.logger.Warn("stored entry has unparseable date", "row", n+2, "date", raw)
			} else {
				e.Date = date
			}
		}
		if raw, _ := idx.Value(row, model.ColAmount); raw != "" {
			amount, ok := model.ParseAmount(raw)
			if !ok {
				s.logger.Warn("stored entry has unparseable amount", "row", n+2, "amount", raw)
			}
			e.Amount = amount
		}

		typ, _ := idx.Value(row, model.ColType)
		source, _ := idx.Value(row, model.ColSource)
		e.Type = model.EntryType(typ)
		e.Source = model.EntrySource(source)
		e.Time, _ = idx.Value(row, model.ColTime)
		e.Category, _ = idx.Value(row, model.ColCategory)
		e.PaymentMethod, _ = idx.Value(row, model.ColPaymentMethod)
		e.Account, _ = idx.Value(row, model.ColAccount)
		e.Description, _ = idx.Value(row, model.ColDescription)
		e.Tags, _ = idx.Value(row, model.ColTags)

		if e.Account == "" {
			if defaultAccount == "" {
				defaultAccount = s.defaultAccount(ctx)
			}
			e.Account = defaultAccount
		}

		entries = append(entries, e)
	}

	return entries
}

func (s *LedgerStore) defaultAccount(ctx context.Context) string {
	if s.accounts == nil {
		return model.DefaultAccountName
	}
	return s.accounts.DefaultName(ctx)
}

// EncodeLedger renders entries as a header row plus one row per entry in
// canonical column order.
func EncodeLedger(entries []model.LedgerEntry) [][]string {
	rows := make([][]string, 0, len(entries)+1)
	rows = append(rows, append([]string(nil), model.Columns...))
	for _, e := range entries {
		rows = append(rows, e.Record())
	}
	return rows
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
