package recurring

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryLedger struct {
	entries []model.LedgerEntry
}

func (m *memoryLedger) Load(context.Context) ([]model.LedgerEntry, error) {
	return append([]model.LedgerEntry(nil), m.entries...), nil
}

func (m *memoryLedger) Save(_ context.Context, entries []model.LedgerEntry) error {
	m.entries = append([]model.LedgerEntry(nil), entries...)
	return nil
}

func profile(name string, amount int64) model.RecurringProfile {
	return model.RecurringProfile{
		Name:     name,
		Amount:   decimal.NewFromInt(amount),
		Category: "Bills and Utilities",
		Type:     model.TypeExpense,
		Day:      5,
	}
}

func TestPending(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	profiles := []model.RecurringProfile{profile("Rent", 1200), profile("SIP Fund", 500), profile("Gym", 40)}

	tests := []struct {
		name    string
		entries []model.LedgerEntry
		want    []string
	}{
		{
			name: "empty ledger",
			want: []string{"Rent", "SIP Fund", "Gym"},
		},
		{
			name: "paid this month",
			entries: []model.LedgerEntry{
				{Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Description: "Rent"},
			},
			want: []string{"SIP Fund", "Gym"},
		},
		{
			name: "paid last month or last year",
			entries: []model.LedgerEntry{
				{Date: time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), Description: "Rent"},
				{Date: time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC), Description: "Gym"},
			},
			want: []string{"Rent", "SIP Fund", "Gym"},
		},
		{
			name: "description must match exactly",
			entries: []model.LedgerEntry{
				{Date: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), Description: "rent"},
				{Date: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), Description: "SIP Fund payment"},
				{Date: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), Description: "Gym"},
			},
			want: []string{"Rent", "SIP Fund"},
		},
		{
			name: "amount is not compared",
			entries: []model.LedgerEntry{
				{Date: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), Description: "Rent", Amount: decimal.NewFromInt(1)},
			},
			want: []string{"SIP Fund", "Gym"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, p := range Pending(tt.entries, profiles, now) {
				got = append(got, p.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "recurring_expenses.yaml"))

	profiles, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, profiles)

	require.NoError(t, store.Add(ctx, profile("Rent", 1200)))
	require.NoError(t, store.Add(ctx, profile("Gym", 40)))

	err = store.Add(ctx, profile("Rent", 1))
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	bad := profile("Bad", 1)
	bad.Day = 32
	assert.ErrorIs(t, store.Add(ctx, bad), ErrInvalidDay)
	bad.Day = 0
	assert.ErrorIs(t, store.Add(ctx, bad), ErrInvalidDay)

	bad = profile("Bad", 1)
	bad.Type = "Refund"
	assert.ErrorIs(t, store.Add(ctx, bad), ErrInvalidProfile)

	profiles, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "Rent", profiles[0].Name)
	assert.True(t, profiles[0].Amount.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, 5, profiles[0].Day)

	ok, err := store.Remove(ctx, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Remove(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	profiles, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Gym", profiles[0].Name)
}

func TestFileStore_HandWritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recurring.yaml")
	content := "- name: SIP Fund\n  amount: 5000\n  category: Investment\n  type: Expense\n  day: 10\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	p, err := NewFileStore(path).Get(context.Background(), "SIP Fund")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, model.TypeExpense, p.Type)
	assert.Equal(t, 10, p.Day)
}

func TestFileStore_HandWrittenPaddedName(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "recurring.yaml")
	content := "- name: \" Rent \"\n  amount: 1200.005\n  category: Housing\n  type: Expense\n  day: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	profiles := NewFileStore(path)
	p, err := profiles.Get(ctx, "Rent")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Rent", p.Name)
	assert.True(t, p.Amount.Equal(decimal.RequireFromString("1200.01")))

	store := &memoryLedger{}
	r := NewReconciler(profiles, store, ledger.NewWriter(store, nil), nil)
	r.now = func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) }

	_, err = r.MarkPaid(ctx, "Rent")
	require.NoError(t, err)

	pending, err := r.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestFileStore_BadAmount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recurring.yaml")
	content := "- name: Gym\n  amount: 40\n  category: Health\n  type: Expense\n  day: 3\n- name: Rent\n  amount: abc\n  category: Housing\n  type: Expense\n  day: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	_, err := NewFileStore(path).List(context.Background())
	require.ErrorIs(t, err, ErrCorruptFile)
	assert.Contains(t, err.Error(), "profile 2")
}

func TestReconciler(t *testing.T) {
	ctx := context.Background()
	profiles := NewFileStore(filepath.Join(t.TempDir(), "recurring.yaml"))
	require.NoError(t, profiles.Add(ctx, profile("Rent", 1200)))
	require.NoError(t, profiles.Add(ctx, profile("Gym", 40)))

	store := &memoryLedger{}
	writer := ledger.NewWriter(store, nil)
	r := NewReconciler(profiles, store, writer, nil)
	r.now = func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) }

	pending, err := r.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	entry, err := r.MarkPaid(ctx, "Rent")
	require.NoError(t, err)
	assert.Equal(t, "Rent", entry.Description)
	assert.Equal(t, PaidPaymentMethod, entry.PaymentMethod)
	assert.Equal(t, PaidTags, entry.Tags)
	assert.Equal(t, model.SourceRecurring, entry.Source)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), entry.Date)

	pending, err = r.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Gym", pending[0].Name)

	_, err = r.MarkPaid(ctx, "Netflix")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
