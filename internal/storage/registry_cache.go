package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// JSONCache is the flat-file copy of a registry. It is always written on
// save and is the durability guarantee when the primary backend fails.
type JSONCache struct {
	path string
}

// NewJSONCache creates a cache stored at path.
func NewJSONCache(path string) *JSONCache {
	return &JSONCache{path: path}
}

// Path returns the file location.
func (c *JSONCache) Path() string {
	return c.path
}

// Load reads the cached items. A missing file is an empty registry.
func (c *JSONCache) Load(ctx context.Context) ([]model.RegistryItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(c.path) // #nosec G304
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.path, err)
	}

	var items []model.RegistryItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptCache, c.path, err)
	}
	return items, nil
}

// Quarantine moves an unreadable cache aside so the next save starts fresh.
// It returns where the file went.
func (c *JSONCache) Quarantine() (string, error) {
	dest := c.path + ".corrupt"
	if err := os.Rename(c.path, dest); err != nil {
		return "", fmt.Errorf("failed to move %s aside: %w", c.path, err)
	}
	return dest, nil
}

// Save overwrites the cache with items.
func (c *JSONCache) Save(ctx context.Context, items []model.RegistryItem) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if items == nil {
		items = []model.RegistryItem{}
	}

	data, err := json.MarshalIndent(items, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}

	return writeFileAtomic(c.path, data)
}

// writeFileAtomic writes data beside path and renames it into place so a
// crash never leaves a half-written file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
