package categorize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	yaml "gopkg.in/yaml.v2"
)

// ErrCorruptRules is returned when the rule file cannot be parsed.
var ErrCorruptRules = errors.New("rule file is corrupt")

var _ service.RuleSource = (*FileStore)(nil)

// FileStore keeps rules in a YAML mapping of keyword to category. The
// mapping's order in the file is the rule order.
type FileStore struct {
	path string
}

// NewFileStore creates a rule store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the rules. A missing file is an empty rule set.
func (s *FileStore) Load(_ context.Context) (*model.Rules, error) {
	rules := model.NewRules()

	data, err := os.ReadFile(s.path) // #nosec G304
	if errors.Is(err, os.ErrNotExist) {
		return rules, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRules, s.path, err)
	}

	for _, item := range doc {
		if item.Key == nil {
			continue
		}
		category := ""
		if item.Value != nil {
			category = strings.TrimSpace(fmt.Sprint(item.Value))
		}
		rules.Set(fmt.Sprint(item.Key), category)
	}
	return rules, nil
}

// Save overwrites the file with rules.
func (s *FileStore) Save(_ context.Context, rules *model.Rules) error {
	doc := make(yaml.MapSlice, 0, rules.Len())
	rules.Each(func(keyword, category string) {
		doc = append(doc, yaml.MapItem{Key: keyword, Value: category})
	})

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("failed to create rules directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write rules: %w", err)
	}
	return nil
}

// Set maps keyword to category and persists the change.
func (s *FileStore) Set(ctx context.Context, keyword, category string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return fmt.Errorf("keyword cannot be empty")
	}

	rules, err := s.Load(ctx)
	if err != nil {
		return err
	}
	rules.Set(keyword, category)
	return s.Save(ctx, rules)
}

// Delete removes keyword. It reports false when no such rule exists.
func (s *FileStore) Delete(ctx context.Context, keyword string) (bool, error) {
	rules, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	if !rules.Delete(keyword) {
		return false, nil
	}
	return true, s.Save(ctx, rules)
}
