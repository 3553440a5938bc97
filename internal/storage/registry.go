package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// RegistryPolicy captures what differs between the accounts and the
// categories registries. Everything else about them is shared.
type RegistryPolicy struct {
	// Partition groups items that share a single default.
	Partition func(model.RegistryItem) string
	// SameName decides name collisions and lookups.
	SameName func(a, b string) bool
	// Slug derives an item ID from its name.
	Slug func(string) string
	// Prepare fills defaults on a newly created item.
	Prepare func(*model.RegistryItem)
	// Valid reports whether an item's type and status are allowed.
	Valid func(model.RegistryItem) bool
	// Promote picks the item to make default in a partition that lost its
	// default, or returns -1 to leave the partition without one.
	Promote func(items []model.RegistryItem, partition string) int
	// Deletable reports whether an item may be removed.
	Deletable func(model.RegistryItem) bool
	Kind      model.RegistryKind
	// PrimaryPartition is consulted by Default when no item is flagged.
	PrimaryPartition string
	// FallbackName is what DefaultName reports when nothing qualifies.
	FallbackName string
	Seed         []model.RegistryItem
}

// AccountPolicy is the policy of the accounts registry: names are case
// sensitive, all accounts share one default, the first active account is
// promoted when none is flagged, and the default account cannot be deleted.
func AccountPolicy() RegistryPolicy {
	return RegistryPolicy{
		Kind:      model.KindAccount,
		Partition: func(model.RegistryItem) string { return "" },
		SameName:  func(a, b string) bool { return a == b },
		Slug:      model.AccountID,
		Prepare: func(item *model.RegistryItem) {
			if item.Status == "" {
				item.Status = model.StatusActive
			}
		},
		Valid: func(item model.RegistryItem) bool {
			return slices.Contains(model.AccountTypes(), item.Type) &&
				(item.Status == model.StatusActive || item.Status == model.StatusInactive)
		},
		Promote: func(items []model.RegistryItem, _ string) int {
			return slices.IndexFunc(items, model.RegistryItem.Active)
		},
		Deletable:    func(item model.RegistryItem) bool { return !item.IsDefault },
		FallbackName: model.DefaultAccountName,
		Seed: []model.RegistryItem{
			{
				ID:          "main_account",
				Name:        model.DefaultAccountName,
				Type:        model.AccountBank,
				Description: "Default account",
				Status:      model.StatusActive,
				IsDefault:   true,
			},
		},
	}
}

// CategoryPolicy is the policy of the categories registry: names collide
// case-insensitively, Expense and Income keep independent defaults, and
// only the Expense partition falls back to "Others".
func CategoryPolicy() RegistryPolicy {
	return RegistryPolicy{
		Kind:      model.KindCategory,
		Partition: func(item model.RegistryItem) string { return item.Type },
		SameName:  strings.EqualFold,
		Slug:      model.CategoryID,
		Prepare: func(item *model.RegistryItem) {
			if item.Type == "" {
				item.Type = model.CategoryExpense
			}
			item.Status = ""
		},
		Valid: func(item model.RegistryItem) bool {
			return item.Type == model.CategoryExpense || item.Type == model.CategoryIncome
		},
		Promote: func(items []model.RegistryItem, partition string) int {
			if partition != model.CategoryExpense {
				return -1
			}
			return slices.IndexFunc(items, func(it model.RegistryItem) bool {
				return it.Name == model.FallbackCategory && it.Type == model.CategoryExpense
			})
		},
		Deletable:        func(model.RegistryItem) bool { return true },
		PrimaryPartition: model.CategoryExpense,
		FallbackName:     model.FallbackCategory,
		Seed:             defaultCategories(),
	}
}

func defaultCategories() []model.RegistryItem {
	expense := func(id, name string) model.RegistryItem {
		return model.RegistryItem{ID: id, Name: name, Type: model.CategoryExpense}
	}
	income := func(id, name string) model.RegistryItem {
		return model.RegistryItem{ID: id, Name: name, Type: model.CategoryIncome}
	}

	others := expense("others", model.FallbackCategory)
	others.IsDefault = true

	return []model.RegistryItem{
		expense("food", "Food"),
		expense("transport", "Transport"),
		expense("entertainment", "Entertainment"),
		expense("medicals", "MEDICALS"),
		expense("groceries", "Groceries"),
		others,
		expense("shopping", "Shopping"),
		expense("bills_utilities", "Bills and Utilities"),
		expense("education", "Education"),
		expense("rent", "Rent"),
		expense("home", "Home"),
		expense("chit", "Chit"),
		expense("insurance", "Insurance"),
		income("salary", "Salary"),
		income("investment", "Investment"),
	}
}

// RegistryUpdate lists the fields to change. Nil fields, and empty name,
// type or status, are left alone.
type RegistryUpdate struct {
	Name        *string
	Type        *string
	Description *string
	Status      *string
	IsDefault   *bool
}

// Registry is a named set of items with at most one default per partition.
//
// Reads come from the primary backend and fall back to the JSON cache when
// it fails or is empty. Writes go to the primary best-effort and always to
// the cache. Each operation is a full load, mutate, save cycle with no lock
// around it; concurrent writers can lose updates.
type Registry struct {
	primary service.RegistryBackend
	cache   *JSONCache
	logger  *slog.Logger
	policy  RegistryPolicy
}

// NewRegistry creates a registry. primary may be nil.
func NewRegistry(policy RegistryPolicy, primary service.RegistryBackend, cache *JSONCache, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		policy:  policy,
		primary: primary,
		cache:   cache,
		logger:  logger.With("registry", string(policy.Kind)),
	}
}

// NewAccounts creates the accounts registry.
func NewAccounts(primary service.RegistryBackend, cache *JSONCache, logger *slog.Logger) *Registry {
	return NewRegistry(AccountPolicy(), primary, cache, logger)
}

// NewCategories creates the categories registry.
func NewCategories(primary service.RegistryBackend, cache *JSONCache, logger *slog.Logger) *Registry {
	return NewRegistry(CategoryPolicy(), primary, cache, logger)
}

// Kind returns which registry this is.
func (r *Registry) Kind() model.RegistryKind {
	return r.policy.Kind
}

// Load returns all items. An empty result means both backends are empty;
// seeding is left to the caller (see EnsureSeeded).
func (r *Registry) Load(ctx context.Context) ([]model.RegistryItem, error) {
	if r.primary != nil {
		items, err := r.primary.LoadItems(ctx, r.policy.Kind)
		switch {
		case err != nil:
			r.logger.Warn("primary registry backend failed, reading cache", "error", err)
		case len(items) > 0:
			return items, nil
		}
	}

	items, err := r.cache.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", r.policy.Kind, err)
	}
	return items, nil
}

// Save enforces the default invariant on items in place and persists them.
// Primary backend errors are logged; only a failed cache write is returned.
func (r *Registry) Save(ctx context.Context, items []model.RegistryItem) error {
	enforceDefaults(items, r.policy)

	if r.primary != nil {
		if err := r.primary.SaveItems(ctx, r.policy.Kind, items); err != nil {
			r.logger.Warn("failed to save to primary registry backend", "error", err)
		}
	}

	if err := r.cache.Save(ctx, items); err != nil {
		return fmt.Errorf("failed to save %s: %w", r.policy.Kind, err)
	}
	return nil
}

// EnsureSeeded writes the policy's seed items when the registry is empty
// and returns the current items. A corrupt cache with nothing in the
// primary backend is moved aside and counts as empty.
func (r *Registry) EnsureSeeded(ctx context.Context) ([]model.RegistryItem, error) {
	items, err := r.Load(ctx)
	if errors.Is(err, ErrCorruptCache) {
		moved, qerr := r.cache.Quarantine()
		if qerr != nil {
			return nil, errors.Join(err, qerr)
		}
		r.logger.Warn("registry cache is corrupt, reseeding", "kind", r.policy.Kind, "moved_to", moved, "error", err)
		items, err = nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return items, nil
	}

	items = slices.Clone(r.policy.Seed)
	if err := r.Save(ctx, items); err != nil {
		return nil, err
	}
	r.logger.Info("seeded registry", "count", len(items))
	return items, nil
}

// All returns every item, seeding an empty registry first.
func (r *Registry) All(ctx context.Context) ([]model.RegistryItem, error) {
	return r.EnsureSeeded(ctx)
}

// Create adds an item. It returns false when the name is taken or the item
// is invalid. The ID is derived from the name; requesting the default
// demotes the other items of the same partition.
func (r *Registry) Create(ctx context.Context, item model.RegistryItem) (bool, error) {
	if strings.TrimSpace(item.Name) == "" {
		return false, nil
	}

	items, err := r.Load(ctx)
	if err != nil {
		return false, err
	}

	if r.find(items, item.Name) >= 0 {
		return false, nil
	}

	item.ID = r.policy.Slug(item.Name)
	r.policy.Prepare(&item)
	if !r.policy.Valid(item) {
		return false, nil
	}

	if item.IsDefault {
		r.demote(items, r.policy.Partition(item))
	}

	items = append(items, item)
	if err := r.Save(ctx, items); err != nil {
		return false, err
	}
	return true, nil
}

// Update applies a partial update to the item called name. Renaming
// regenerates the ID and is refused when the new name is taken.
func (r *Registry) Update(ctx context.Context, name string, upd RegistryUpdate) (bool, error) {
	items, err := r.Load(ctx)
	if err != nil {
		return false, err
	}

	i := r.find(items, name)
	if i < 0 {
		return false, nil
	}
	item := items[i]

	if upd.Name != nil && *upd.Name != "" && *upd.Name != item.Name {
		if j := r.find(items, *upd.Name); j >= 0 && j != i {
			return false, nil
		}
		item.Name = *upd.Name
		item.ID = r.policy.Slug(item.Name)
	}
	if upd.Type != nil && *upd.Type != "" {
		item.Type = *upd.Type
	}
	if upd.Description != nil {
		item.Description = *upd.Description
	}
	if upd.Status != nil && *upd.Status != "" {
		item.Status = *upd.Status
	}
	if !r.policy.Valid(item) {
		return false, nil
	}

	if upd.IsDefault != nil {
		if *upd.IsDefault {
			r.demote(items, r.policy.Partition(item))
		}
		item.IsDefault = *upd.IsDefault
	}

	items[i] = item
	if err := r.Save(ctx, items); err != nil {
		return false, err
	}
	return true, nil
}

// SetDefault makes name the default of its partition.
func (r *Registry) SetDefault(ctx context.Context, name string) (bool, error) {
	isDefault := true
	return r.Update(ctx, name, RegistryUpdate{IsDefault: &isDefault})
}

// Delete removes the item called name. It returns false, and leaves the
// registry untouched, when the item is missing or the policy protects it.
func (r *Registry) Delete(ctx context.Context, name string) (bool, error) {
	items, err := r.Load(ctx)
	if err != nil {
		return false, err
	}

	i := r.find(items, name)
	if i < 0 || !r.policy.Deletable(items[i]) {
		return false, nil
	}

	items = slices.Delete(items, i, i+1)
	if err := r.Save(ctx, items); err != nil {
		return false, err
	}
	return true, nil
}

// Get returns the item called name, or nil.
func (r *Registry) Get(ctx context.Context, name string) (*model.RegistryItem, error) {
	items, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	if i := r.find(items, name); i >= 0 {
		return &items[i], nil
	}
	return nil, nil
}

// Default returns the first flagged item, falling back to the policy's
// promotion rule for the primary partition. It returns nil when neither
// yields an item.
func (r *Registry) Default(ctx context.Context) (*model.RegistryItem, error) {
	items, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	if i := slices.IndexFunc(items, func(it model.RegistryItem) bool { return it.IsDefault }); i >= 0 {
		return &items[i], nil
	}
	if i := r.policy.Promote(items, r.policy.PrimaryPartition); i >= 0 {
		return &items[i], nil
	}
	return nil, nil
}

// DefaultFor returns the flagged item of one partition, or nil.
func (r *Registry) DefaultFor(ctx context.Context, partition string) (*model.RegistryItem, error) {
	items, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i, it := range items {
		if it.IsDefault && r.policy.Partition(it) == partition {
			return &items[i], nil
		}
	}
	return nil, nil
}

// DefaultName returns the default item's name or the policy fallback.
// It never fails; load errors are logged.
func (r *Registry) DefaultName(ctx context.Context) string {
	item, err := r.Default(ctx)
	if err != nil {
		r.logger.Warn("could not resolve default, using fallback", "fallback", r.policy.FallbackName, "error", err)
		return r.policy.FallbackName
	}
	if item == nil {
		return r.policy.FallbackName
	}
	return item.Name
}

// Active returns the items whose status is Active (or unset).
func (r *Registry) Active(ctx context.Context) ([]model.RegistryItem, error) {
	items, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(items, func(it model.RegistryItem) bool { return !it.Active() }), nil
}

// ByType returns the items of one type; an empty type returns all.
func (r *Registry) ByType(ctx context.Context, itemType string) ([]model.RegistryItem, error) {
	items, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	if itemType == "" {
		return items, nil
	}
	return slices.DeleteFunc(items, func(it model.RegistryItem) bool { return it.Type != itemType }), nil
}

// Names returns the names of the items of one type; an empty type returns all.
func (r *Registry) Names(ctx context.Context, itemType string) ([]string, error) {
	items, err := r.ByType(ctx, itemType)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names, nil
}

func (r *Registry) find(items []model.RegistryItem, name string) int {
	return slices.IndexFunc(items, func(it model.RegistryItem) bool {
		return r.policy.SameName(it.Name, name)
	})
}

func (r *Registry) demote(items []model.RegistryItem, partition string) {
	for i := range items {
		if r.policy.Partition(items[i]) == partition {
			items[i].IsDefault = false
		}
	}
}

// enforceDefaults leaves at most one default per partition: scanning from
// the end, the first flagged item seen (the last in list order) keeps the
// flag and every earlier one in the partition loses it. Partitions left
// without a default get the one chosen by the policy's Promote.
func enforceDefaults(items []model.RegistryItem, policy RegistryPolicy) {
	kept := make(map[string]bool)
	for i := len(items) - 1; i >= 0; i-- {
		if !items[i].IsDefault {
			continue
		}
		p := policy.Partition(items[i])
		if kept[p] {
			items[i].IsDefault = false
			continue
		}
		kept[p] = true
	}

	for _, item := range items {
		p := policy.Partition(item)
		if kept[p] {
			continue
		}
		kept[p] = true
		if idx := policy.Promote(items, p); idx >= 0 {
			items[idx].IsDefault = true
		}
	}
}
