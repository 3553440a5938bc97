package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend is an in-memory RegistryBackend with injectable failures.
type stubBackend struct {
	items   map[model.RegistryKind][]model.RegistryItem
	loadErr error
	saveErr error
	saves   int
}

func newStubBackend() *stubBackend {
	return &stubBackend{items: make(map[model.RegistryKind][]model.RegistryItem)}
}

func (b *stubBackend) LoadItems(_ context.Context, kind model.RegistryKind) ([]model.RegistryItem, error) {
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	return append([]model.RegistryItem(nil), b.items[kind]...), nil
}

func (b *stubBackend) SaveItems(_ context.Context, kind model.RegistryKind, items []model.RegistryItem) error {
	b.saves++
	if b.saveErr != nil {
		return b.saveErr
	}
	b.items[kind] = append([]model.RegistryItem(nil), items...)
	return nil
}

func newTestAccounts(t *testing.T) (*Registry, *JSONCache) {
	t.Helper()
	cache := NewJSONCache(filepath.Join(t.TempDir(), "accounts.json"))
	return NewAccounts(nil, cache, nil), cache
}

func newTestCategories(t *testing.T) (*Registry, *JSONCache) {
	t.Helper()
	cache := NewJSONCache(filepath.Join(t.TempDir(), "categories.json"))
	return NewCategories(nil, cache, nil), cache
}

func countDefaults(items []model.RegistryItem, partition func(model.RegistryItem) string) map[string]int {
	counts := make(map[string]int)
	for _, it := range items {
		if it.IsDefault {
			counts[partition(it)]++
		}
	}
	return counts
}

func TestEnforceDefaults(t *testing.T) {
	accounts := AccountPolicy()
	categories := CategoryPolicy()

	tests := []struct {
		name         string
		policy       RegistryPolicy
		items        []model.RegistryItem
		wantDefaults []string
	}{
		{
			name:   "last flagged account wins",
			policy: accounts,
			items: []model.RegistryItem{
				{Name: "A", Status: model.StatusActive, IsDefault: true},
				{Name: "B", Status: model.StatusActive, IsDefault: true},
				{Name: "C", Status: model.StatusActive},
			},
			wantDefaults: []string{"B"},
		},
		{
			name:   "first active account promoted",
			policy: accounts,
			items: []model.RegistryItem{
				{Name: "Old", Status: model.StatusInactive},
				{Name: "Card", Status: model.StatusActive},
				{Name: "Cash", Status: model.StatusActive},
			},
			wantDefaults: []string{"Card"},
		},
		{
			name:   "no active account leaves none",
			policy: accounts,
			items: []model.RegistryItem{
				{Name: "Old", Status: model.StatusInactive},
			},
			wantDefaults: nil,
		},
		{
			name:   "category partitions are independent",
			policy: categories,
			items: []model.RegistryItem{
				{Name: "Food", Type: model.CategoryExpense, IsDefault: true},
				{Name: "Salary", Type: model.CategoryIncome, IsDefault: true},
				{Name: "Rent", Type: model.CategoryExpense, IsDefault: true},
			},
			wantDefaults: []string{"Salary", "Rent"},
		},
		{
			name:   "others promoted in expense only",
			policy: categories,
			items: []model.RegistryItem{
				{Name: "Food", Type: model.CategoryExpense},
				{Name: "Others", Type: model.CategoryExpense},
				{Name: "Salary", Type: model.CategoryIncome},
			},
			wantDefaults: []string{"Others"},
		},
		{
			name:   "expense without others stays without default",
			policy: categories,
			items: []model.RegistryItem{
				{Name: "Food", Type: model.CategoryExpense},
			},
			wantDefaults: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enforceDefaults(tt.items, tt.policy)

			var got []string
			for _, it := range tt.items {
				if it.IsDefault {
					got = append(got, it.Name)
				}
			}
			assert.Equal(t, tt.wantDefaults, got)
		})
	}
}

func TestRegistry_EnsureSeeded(t *testing.T) {
	ctx := context.Background()

	t.Run("accounts", func(t *testing.T) {
		reg, _ := newTestAccounts(t)
		items, err := reg.EnsureSeeded(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "main_account", items[0].ID)
		assert.True(t, items[0].IsDefault)

		// Seeding twice keeps what is there.
		_, err = reg.Create(ctx, model.RegistryItem{Name: "Card", Type: model.AccountCreditCard})
		require.NoError(t, err)
		items, err = reg.EnsureSeeded(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("categories", func(t *testing.T) {
		reg, _ := newTestCategories(t)
		items, err := reg.EnsureSeeded(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 15)

		def, err := reg.DefaultFor(ctx, model.CategoryExpense)
		require.NoError(t, err)
		require.NotNil(t, def)
		assert.Equal(t, "Others", def.Name)

		income, err := reg.DefaultFor(ctx, model.CategoryIncome)
		require.NoError(t, err)
		assert.Nil(t, income)
	})
}

func TestRegistry_EnsureSeededCorruptCache(t *testing.T) {
	ctx := context.Background()

	t.Run("no primary", func(t *testing.T) {
		reg, cache := newTestAccounts(t)
		require.NoError(t, os.WriteFile(cache.Path(), []byte("{not json"), 0600))

		_, err := reg.Load(ctx)
		require.ErrorIs(t, err, ErrCorruptCache)

		items, err := reg.EnsureSeeded(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "main_account", items[0].ID)

		kept, err := os.ReadFile(cache.Path() + ".corrupt")
		require.NoError(t, err)
		assert.Equal(t, "{not json", string(kept))

		items, err = reg.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("failing primary", func(t *testing.T) {
		backend := newStubBackend()
		backend.loadErr = errors.New("database is locked")
		cache := NewJSONCache(filepath.Join(t.TempDir(), "categories.json"))
		require.NoError(t, os.WriteFile(cache.Path(), []byte("[{"), 0600))
		reg := NewCategories(backend, cache, nil)

		items, err := reg.EnsureSeeded(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 15)
	})
}

func TestRegistry_Create(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestAccounts(t)
	_, err := reg.EnsureSeeded(ctx)
	require.NoError(t, err)

	ok, err := reg.Create(ctx, model.RegistryItem{Name: "Travel Card", Type: model.AccountCreditCard})
	require.NoError(t, err)
	assert.True(t, ok)

	item, err := reg.Get(ctx, "Travel Card")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "travel_card", item.ID)
	assert.Equal(t, model.StatusActive, item.Status)
	assert.False(t, item.IsDefault)

	// Account names are case sensitive.
	ok, err = reg.Create(ctx, model.RegistryItem{Name: "Travel Card", Type: model.AccountCash})
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = reg.Create(ctx, model.RegistryItem{Name: "travel card", Type: model.AccountCash})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = reg.Create(ctx, model.RegistryItem{Name: "Crypto", Type: "Wallet of Doom"})
	require.NoError(t, err)
	assert.False(t, ok, "unknown account type")

	ok, err = reg.Create(ctx, model.RegistryItem{Name: "  ", Type: model.AccountCash})
	require.NoError(t, err)
	assert.False(t, ok, "blank name")
}

func TestRegistry_CategoryNamesIgnoreCase(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestCategories(t)
	_, err := reg.EnsureSeeded(ctx)
	require.NoError(t, err)

	ok, err := reg.Create(ctx, model.RegistryItem{Name: "food"})
	require.NoError(t, err)
	assert.False(t, ok)

	item, err := reg.Get(ctx, "medicals")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "MEDICALS", item.Name)

	ok, err = reg.Create(ctx, model.RegistryItem{Name: "Pets and Vets"})
	require.NoError(t, err)
	assert.True(t, ok)
	item, err = reg.Get(ctx, "Pets and Vets")
	require.NoError(t, err)
	assert.Equal(t, "pets__vets", item.ID)
	assert.Equal(t, model.CategoryExpense, item.Type)
	assert.Empty(t, item.Status)
}

func TestRegistry_DefaultSwitch(t *testing.T) {
	ctx := context.Background()
	reg, cache := newTestAccounts(t)

	require.NoError(t, reg.Save(ctx, []model.RegistryItem{
		{ID: "a", Name: "A", Type: model.AccountBank, Status: model.StatusActive, IsDefault: true},
		{ID: "b", Name: "B", Type: model.AccountBank, Status: model.StatusActive},
	}))

	ok, err := reg.SetDefault(ctx, "B")
	require.NoError(t, err)
	require.True(t, ok)

	items, err := cache.Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.False(t, items[0].IsDefault)
	assert.True(t, items[1].IsDefault)

	ok, err = reg.Delete(ctx, "A")
	require.NoError(t, err)
	assert.True(t, ok)

	items, err = reg.Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "B", items[0].Name)
	assert.True(t, items[0].IsDefault)
}

func TestRegistry_DeleteDefaultAccountRefused(t *testing.T) {
	ctx := context.Background()
	reg, cache := newTestAccounts(t)
	_, err := reg.EnsureSeeded(ctx)
	require.NoError(t, err)

	before, err := cache.Load(ctx)
	require.NoError(t, err)

	ok, err := reg.Delete(ctx, model.DefaultAccountName)
	require.NoError(t, err)
	assert.False(t, ok)

	after, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	ok, err = reg.Delete(ctx, "Nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistry_DeleteDefaultCategoryPromotesOthers(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestCategories(t)
	_, err := reg.EnsureSeeded(ctx)
	require.NoError(t, err)

	ok, err := reg.SetDefault(ctx, "Food")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = reg.Delete(ctx, "Food")
	require.NoError(t, err)
	require.True(t, ok)

	def, err := reg.DefaultFor(ctx, model.CategoryExpense)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, "Others", def.Name)
}

func TestRegistry_Update(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestAccounts(t)
	_, err := reg.EnsureSeeded(ctx)
	require.NoError(t, err)
	_, err = reg.Create(ctx, model.RegistryItem{Name: "Wallet", Type: model.AccountCash})
	require.NoError(t, err)

	newName := "Pocket Cash"
	desc := "coins"
	ok, err := reg.Update(ctx, "Wallet", RegistryUpdate{Name: &newName, Description: &desc})
	require.NoError(t, err)
	require.True(t, ok)

	item, err := reg.Get(ctx, "Pocket Cash")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "pocket_cash", item.ID)
	assert.Equal(t, "coins", item.Description)

	taken := model.DefaultAccountName
	ok, err = reg.Update(ctx, "Pocket Cash", RegistryUpdate{Name: &taken})
	require.NoError(t, err)
	assert.False(t, ok, "rename onto an existing name")

	badStatus := "Frozen"
	ok, err = reg.Update(ctx, "Pocket Cash", RegistryUpdate{Status: &badStatus})
	require.NoError(t, err)
	assert.False(t, ok)

	missing := "x"
	ok, err = reg.Update(ctx, "Ghost", RegistryUpdate{Name: &missing})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistry_DefaultUniqueAfterEveryOperation(t *testing.T) {
	ctx := context.Background()
	reg, cache := newTestCategories(t)
	_, err := reg.EnsureSeeded(ctx)
	require.NoError(t, err)

	yes, no := true, false
	ops := []func() (bool, error){
		func() (bool, error) {
			return reg.Create(ctx, model.RegistryItem{Name: "Gifts", Type: model.CategoryIncome, IsDefault: true})
		},
		func() (bool, error) {
			return reg.Create(ctx, model.RegistryItem{Name: "Bonus", Type: model.CategoryIncome, IsDefault: true})
		},
		func() (bool, error) { return reg.SetDefault(ctx, "Rent") },
		func() (bool, error) { return reg.Update(ctx, "Salary", RegistryUpdate{IsDefault: &yes}) },
		func() (bool, error) { return reg.Update(ctx, "Rent", RegistryUpdate{IsDefault: &no}) },
		func() (bool, error) { return reg.Delete(ctx, "Salary") },
		func() (bool, error) { return reg.Delete(ctx, "Others") },
	}

	partition := CategoryPolicy().Partition
	for i, op := range ops {
		_, err := op()
		require.NoError(t, err, "op %d", i)

		items, err := cache.Load(ctx)
		require.NoError(t, err)
		for p, n := range countDefaults(items, partition) {
			assert.LessOrEqual(t, n, 1, "op %d partition %s", i, p)
		}
	}
}

func TestRegistry_PrimaryBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("primary preferred when populated", func(t *testing.T) {
		primary := newStubBackend()
		primary.items[model.KindAccount] = []model.RegistryItem{
			{ID: "p", Name: "Primary", Type: model.AccountBank, Status: model.StatusActive, IsDefault: true},
		}
		cache := NewJSONCache(filepath.Join(t.TempDir(), "accounts.json"))
		require.NoError(t, cache.Save(ctx, []model.RegistryItem{{ID: "c", Name: "Cached"}}))

		reg := NewAccounts(primary, cache, nil)
		items, err := reg.Load(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Primary", items[0].Name)
	})

	t.Run("cache used when primary fails", func(t *testing.T) {
		primary := newStubBackend()
		primary.loadErr = errors.New("database is locked")
		cache := NewJSONCache(filepath.Join(t.TempDir(), "accounts.json"))
		require.NoError(t, cache.Save(ctx, []model.RegistryItem{{ID: "c", Name: "Cached"}}))

		reg := NewAccounts(primary, cache, nil)
		assert.Equal(t, "Cached", reg.DefaultName(ctx))
	})

	t.Run("cache written when primary save fails", func(t *testing.T) {
		primary := newStubBackend()
		primary.saveErr = errors.New("disk full")
		cache := NewJSONCache(filepath.Join(t.TempDir(), "accounts.json"))

		reg := NewAccounts(primary, cache, nil)
		_, err := reg.EnsureSeeded(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, primary.saves)

		items, err := cache.Load(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, model.DefaultAccountName, items[0].Name)
	})
}

func TestRegistry_Queries(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestAccounts(t)
	require.NoError(t, reg.Save(ctx, []model.RegistryItem{
		{ID: "a", Name: "A", Type: model.AccountBank, Status: model.StatusActive},
		{ID: "b", Name: "B", Type: model.AccountCreditCard, Status: model.StatusInactive},
		{ID: "c", Name: "C", Type: model.AccountCreditCard, Status: model.StatusActive},
	}))

	active, err := reg.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	names, err := reg.Names(ctx, model.AccountCreditCard)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, names)

	all, err := reg.Names(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, all)

	// Save promoted the first active account.
	assert.Equal(t, "A", reg.DefaultName(ctx))
}

func TestRegistry_DefaultNameFallback(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestAccounts(t)
	assert.Equal(t, model.DefaultAccountName, reg.DefaultName(ctx))
}
