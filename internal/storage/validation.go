// Package storage provides the data persistence layer for the ledger.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrInvalidKind    = errors.New("invalid registry kind")
	ErrInvalidItem    = errors.New("invalid registry item")
	ErrCorruptCache   = errors.New("registry cache is corrupt")
	ErrCorruptLedger  = errors.New("ledger file is corrupt")
	ErrNoLocalBackend = errors.New("local ledger backend is required")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateKind(kind model.RegistryKind) error {
	switch kind {
	case model.KindAccount, model.KindCategory:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
}

// validateItems checks the fields every persisted item must carry.
func validateItems(items []model.RegistryItem) error {
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("%w at index %d: missing name", ErrInvalidItem, i)
		}
		if item.ID == "" {
			return fmt.Errorf("%w at index %d: missing id", ErrInvalidItem, i)
		}
	}
	return nil
}
