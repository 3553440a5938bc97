// Package importer turns bank statements into canonical ledger entries and
// merges them into the stored ledger.
//
// An import reads a statement, maps its columns onto the canonical shape,
// categorizes the new rows, merges them behind the existing ledger with
// (date, amount, description) deduplication, and saves the result only when
// something was added. Any failure before the save aborts the import
// without writing.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/spice-ledger/internal/categorize"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// Result reports what an import did.
type Result struct {
	// Added is the growth of the ledger; never negative.
	Added int
	// Parsed is the number of rows read from the statement.
	Parsed int
	// Duplicates counts rows dropped by deduplication.
	Duplicates int
	// Dropped counts statement rows discarded for an unparseable date.
	Dropped int
}

// Importer merges statements into a ledger.
type Importer struct {
	store    service.LedgerStore
	rules    service.RuleSource
	accounts service.DefaultAccountResolver
	logger   *slog.Logger
}

// New creates an importer. rules and accounts may be nil, meaning no
// categorization and the "Main Account" default respectively.
func New(store service.LedgerStore, rules service.RuleSource, accounts service.DefaultAccountResolver, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		store:    store,
		rules:    rules,
		accounts: accounts,
		logger:   logger,
	}
}

// ImportFile imports the statement at path.
func (im *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return Result{}, fmt.Errorf("failed to open statement: %w", err)
	}
	defer func() { _ = f.Close() }()

	return im.Import(ctx, filepath.Base(path), f)
}

// Import imports a statement read from r; name selects the format.
func (im *Importer) Import(ctx context.Context, name string, r io.Reader) (Result, error) {
	format, err := FormatFromName(name)
	if err != nil {
		return Result{}, err
	}

	account := im.defaultAccount(ctx)

	var (
		incoming []model.LedgerEntry
		dropped  int
	)
	switch format {
	case FormatOFX:
		incoming, err = ReadOFX(r, account, im.logger)
		if err != nil {
			return Result{}, err
		}
	default:
		var sheet Sheet
		if format == FormatXLSX {
			sheet, err = ReadXLSX(r)
		} else {
			sheet, err = ReadCSV(r)
		}
		if err != nil {
			return Result{}, err
		}

		norm, err := Normalize(sheet, account, im.logger)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", name, err)
		}
		im.logger.Debug("normalized statement", "file", name, "shape", norm.Shape, "rows", len(norm.Entries))
		incoming, dropped = norm.Entries, norm.Dropped
	}

	res, err := im.ImportEntries(ctx, incoming)
	if err != nil {
		return Result{}, err
	}
	res.Dropped = dropped

	im.logger.Info("imported statement",
		"file", name,
		"added", res.Added,
		"duplicates", res.Duplicates,
		"dropped", res.Dropped)
	return res, nil
}

// ImportEntries categorizes already-normalized entries, merges them into
// the stored ledger and saves it if anything was added.
func (im *Importer) ImportEntries(ctx context.Context, incoming []model.LedgerEntry) (Result, error) {
	if im.rules != nil {
		rules, err := im.rules.Load(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("failed to load categorization rules: %w", err)
		}
		incoming = categorize.Apply(incoming, rules)
	}

	existing, err := im.store.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load ledger: %w", err)
	}

	merged, added := Merge(existing, incoming)
	res := Result{
		Added:      added,
		Parsed:     len(incoming),
		Duplicates: len(existing) + len(incoming) - len(merged),
	}

	if added > 0 {
		if err := im.store.Save(ctx, merged); err != nil {
			return Result{}, fmt.Errorf("failed to save ledger: %w", err)
		}
	}
	return res, nil
}

func (im *Importer) defaultAccount(ctx context.Context) string {
	if im.accounts == nil {
		return model.DefaultAccountName
	}
	return im.accounts.DefaultName(ctx)
}

// Merge appends incoming behind existing and drops every entry whose
// (date, amount, description) key was already seen, so existing entries
// win over incoming ones. Duplicates already inside existing collapse too,
// which is why added is the ledger's growth clamped at zero rather than
// the number of incoming entries kept.
func Merge(existing, incoming []model.LedgerEntry) (merged []model.LedgerEntry, added int) {
	seen := make(map[model.DedupKey]struct{}, len(existing)+len(incoming))
	merged = make([]model.LedgerEntry, 0, len(existing)+len(incoming))

	for _, group := range [][]model.LedgerEntry{existing, incoming} {
		for _, e := range group {
			key := e.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, e)
		}
	}

	added = max(len(merged)-len(existing), 0)
	return merged, added
}
