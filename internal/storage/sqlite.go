package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

var _ service.RegistryBackend = (*SQLiteStorage)(nil)

// SQLiteStorage is the primary registry backend.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections; one connection also
	// keeps an in-memory database alive between calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// LoadItems returns the items of one registry in stored order.
func (s *SQLiteStorage) LoadItems(ctx context.Context, kind model.RegistryKind) ([]model.RegistryItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateKind(kind); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, type, description, status, is_default
		FROM registry_items
		WHERE kind = ?
		ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", kind, err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.RegistryItem
	for rows.Next() {
		var item model.RegistryItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Type, &item.Description, &item.Status, &item.IsDefault); err != nil {
			return nil, fmt.Errorf("failed to scan %s item: %w", kind, err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", kind, err)
	}

	slog.Debug("retrieved registry items", "kind", kind, "count", len(items))
	return items, nil
}

// SaveItems replaces the items of one registry.
func (s *SQLiteStorage) SaveItems(ctx context.Context, kind model.RegistryKind, items []model.RegistryItem) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateKind(kind); err != nil {
		return err
	}
	if err := validateItems(items); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM registry_items WHERE kind = ?`, string(kind)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", kind, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO registry_items (kind, position, id, name, type, description, status, is_default)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, item := range items {
		if _, err := stmt.ExecContext(ctx, string(kind), i, item.ID, item.Name, item.Type, item.Description, item.Status, item.IsDefault); err != nil {
			return fmt.Errorf("failed to insert %s item %q: %w", kind, item.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", kind, err)
	}
	return nil
}
