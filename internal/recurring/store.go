package recurring

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/shopspring/decimal"
	yaml "gopkg.in/yaml.v2"
)

// Profile validation errors.
var (
	ErrInvalidDay     = errors.New("day of month must be between 1 and 31")
	ErrInvalidProfile = errors.New("invalid recurring profile")
	ErrCorruptFile    = errors.New("recurring profile file is corrupt")
)

type profileRecord struct {
	Name     string `yaml:"name"`
	Amount   string `yaml:"amount"`
	Category string `yaml:"category"`
	Type     string `yaml:"type"`
	Day      int    `yaml:"day"`
}

// FileStore keeps recurring profiles as an ordered YAML list.
type FileStore struct {
	path string
}

// NewFileStore creates a profile store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// List returns every profile in file order. A missing file is empty.
func (s *FileStore) List(_ context.Context) ([]model.RecurringProfile, error) {
	data, err := os.ReadFile(s.path) // #nosec G304
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read recurring profiles: %w", err)
	}

	var records []profileRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptFile, s.path, err)
	}

	profiles := make([]model.RecurringProfile, 0, len(records))
	for i, rec := range records {
		amount, ok := model.ParseAmount(rec.Amount)
		if !ok {
			return nil, fmt.Errorf("%w: %s: profile %d has amount %q", ErrCorruptFile, s.path, i+1, rec.Amount)
		}
		profiles = append(profiles, model.RecurringProfile{
			Name:     strings.TrimSpace(rec.Name),
			Amount:   model.RoundAmount(amount),
			Category: rec.Category,
			Type:     model.EntryType(rec.Type),
			Day:      rec.Day,
		})
	}
	return profiles, nil
}

// Get returns the profile called name, or nil.
func (s *FileStore) Get(ctx context.Context, name string) (*model.RecurringProfile, error) {
	profiles, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].Name == name {
			return &profiles[i], nil
		}
	}
	return nil, nil
}

// Add appends a profile. Names must be unique since the name is what a
// paid occurrence is matched by.
func (s *FileStore) Add(ctx context.Context, p model.RecurringProfile) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Amount = model.RoundAmount(p.Amount)
	if err := validateProfile(p); err != nil {
		return err
	}

	profiles, err := s.List(ctx)
	if err != nil {
		return err
	}
	for _, existing := range profiles {
		if existing.Name == p.Name {
			return fmt.Errorf("%w: recurring profile %q", common.ErrDuplicateEntry, p.Name)
		}
	}

	return s.save(append(profiles, p))
}

// Remove deletes the profile at index. It reports false when index is out
// of range.
func (s *FileStore) Remove(ctx context.Context, index int) (bool, error) {
	profiles, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(profiles) {
		return false, nil
	}

	profiles = append(profiles[:index], profiles[index+1:]...)
	return true, s.save(profiles)
}

func (s *FileStore) save(profiles []model.RecurringProfile) error {
	records := make([]profileRecord, len(profiles))
	for i, p := range profiles {
		records[i] = profileRecord{
			Name:     p.Name,
			Amount:   p.Amount.StringFixed(model.AmountPlaces),
			Category: p.Category,
			Type:     string(p.Type),
			Day:      p.Day,
		}
	}

	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode recurring profiles: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write recurring profiles: %w", err)
	}
	return nil
}

func validateProfile(p model.RecurringProfile) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if p.Day < 1 || p.Day > 31 {
		return fmt.Errorf("%w: got %d", ErrInvalidDay, p.Day)
	}
	if p.Amount.LessThan(decimal.Zero) {
		return fmt.Errorf("%w: amount cannot be negative", ErrInvalidProfile)
	}
	switch p.Type {
	case model.TypeExpense, model.TypeIncome, model.TypeTransfer:
		return nil
	default:
		return fmt.Errorf("%w: type %q", ErrInvalidProfile, p.Type)
	}
}
