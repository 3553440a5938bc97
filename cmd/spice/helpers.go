package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-ledger/internal/categorize"
	"github.com/Veraticus/spice-ledger/internal/config"
	"github.com/Veraticus/spice-ledger/internal/importer"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/recurring"
	"github.com/Veraticus/spice-ledger/internal/sheets"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

// app holds every store and service a command may need, built once per
// invocation from the resolved configuration.
type app struct {
	logger     *slog.Logger
	db         *storage.SQLiteStorage
	accounts   *storage.Registry
	categories *storage.Registry
	ledger     *storage.LedgerStore
	writer     *ledger.Writer
	importer   *importer.Importer
	rules      *categorize.FileStore
	recurring  *recurring.FileStore
	reconciler *recurring.Reconciler
	paths      config.Paths
}

// initApp opens the registry database and the ledger backends.
func initApp(ctx context.Context) (*app, error) {
	return newApp(ctx, config.LoadPaths(), config.LoadSheetsConfig(), openSheet)
}

func newApp(ctx context.Context, paths config.Paths, sheetsCfg sheets.Config, open storage.TableOpener) (*app, error) {
	logger := slog.Default()

	db, err := storage.NewSQLiteStorage(paths.Database)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a := &app{
		logger:     logger,
		db:         db,
		paths:      paths,
		accounts:   storage.NewAccounts(db, storage.NewJSONCache(paths.Accounts), logger),
		categories: storage.NewCategories(db, storage.NewJSONCache(paths.Categories), logger),
		rules:      categorize.NewFileStore(paths.Rules),
		recurring:  recurring.NewFileStore(paths.Recurring),
	}

	for _, reg := range []*storage.Registry{a.accounts, a.categories} {
		if _, err := reg.EnsureSeeded(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to seed %s: %w", reg.Kind(), err)
		}
	}

	probe := storage.ProbeRemote(ctx, sheetsCfg, open)
	if probe.Configured() && !probe.Available() {
		logger.Warn("Remote ledger unavailable, using local file", "error", probe.Err)
	}

	a.ledger, err = storage.NewLedgerStore(storage.NewCSVFile(paths.Ledger), probe, a.accounts, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a.writer = ledger.NewWriter(a.ledger, logger)
	a.importer = importer.New(a.ledger, a.rules, a.accounts, logger)
	a.reconciler = recurring.NewReconciler(a.recurring, a.ledger, a.writer, logger)

	return a, nil
}

// Close releases the registry database.
func (a *app) Close() error {
	return a.db.Close()
}

// openSheet connects to the configured spreadsheet.
func openSheet(ctx context.Context, cfg sheets.Config) (sheets.Table, error) {
	client, err := sheets.Open(ctx, cfg, slog.Default())
	if err != nil {
		return nil, err
	}
	return client, nil
}

// withApp runs fn against a freshly opened app and closes it afterwards.
func withApp(ctx context.Context, fn func(*app) error) (err error) {
	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()
	return fn(a)
}
