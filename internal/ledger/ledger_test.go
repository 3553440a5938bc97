package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	entries []model.LedgerEntry
	loadErr error
	saveErr error
	saves   int
}

func (m *memoryStore) Load(context.Context) ([]model.LedgerEntry, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]model.LedgerEntry(nil), m.entries...), nil
}

func (m *memoryStore) Save(_ context.Context, entries []model.LedgerEntry) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries = append([]model.LedgerEntry(nil), entries...)
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func entry(date time.Time, typ model.EntryType, category, amount string) model.LedgerEntry {
	return model.LedgerEntry{
		Date:     date,
		Type:     typ,
		Category: category,
		Amount:   decimal.RequireFromString(amount),
		Account:  model.DefaultAccountName,
	}
}

func TestWriter_Add(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{entries: []model.LedgerEntry{entry(day(2024, 1, 1), model.TypeIncome, "Salary", "1000")}}
	w := NewWriter(store, nil)
	w.now = func() time.Time { return time.Date(2024, 2, 14, 18, 45, 0, 0, time.UTC) }

	got, err := w.Add(ctx, EntryInput{
		Type:        model.TypeExpense,
		Category:    "Food",
		Amount:      decimal.RequireFromString("42.5"),
		Description: " Dinner ",
	})
	require.NoError(t, err)

	assert.Equal(t, day(2024, 2, 14), got.Date)
	assert.Equal(t, model.DefaultTime, got.Time)
	assert.Equal(t, model.DefaultAccountName, got.Account)
	assert.Equal(t, model.SourceManual, got.Source)
	assert.Equal(t, "Dinner", got.Description)

	require.Len(t, store.entries, 2)
	assert.Equal(t, got, store.entries[1])
}

func TestWriter_AddKeepsExplicitFields(t *testing.T) {
	store := &memoryStore{}
	w := NewWriter(store, nil)

	got, err := w.Add(context.Background(), EntryInput{
		Date:          day(2023, 12, 31),
		Time:          "23:59",
		Type:          model.TypeTransfer,
		Amount:        decimal.NewFromInt(5),
		PaymentMethod: "UPI",
		Account:       "Wallet",
		Source:        model.SourceRecurring,
		Tags:          "#a,#b",
	})
	require.NoError(t, err)
	assert.Equal(t, "23:59", got.Time)
	assert.Equal(t, "Wallet", got.Account)
	assert.Equal(t, model.SourceRecurring, got.Source)
	assert.Equal(t, []string{"#a", "#b"}, got.TagList())
}

func TestWriter_AddErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		store   *memoryStore
		input   EntryInput
		wantErr error
	}{
		{
			name:    "negative amount",
			store:   &memoryStore{},
			input:   EntryInput{Type: model.TypeExpense, Amount: decimal.NewFromInt(-1)},
			wantErr: ErrNegativeAmount,
		},
		{
			name:    "unknown type",
			store:   &memoryStore{},
			input:   EntryInput{Type: "Refund", Amount: decimal.NewFromInt(1)},
			wantErr: ErrInvalidType,
		},
		{
			name:  "load failure",
			store: &memoryStore{loadErr: errors.New("disk gone")},
			input: EntryInput{Type: model.TypeExpense, Amount: decimal.NewFromInt(1)},
		},
		{
			name:  "save failure",
			store: &memoryStore{saveErr: errors.New("read-only")},
			input: EntryInput{Type: model.TypeExpense, Amount: decimal.NewFromInt(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWriter(tt.store, nil).Add(ctx, tt.input)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, tt.store.saves)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	entries := []model.LedgerEntry{
		entry(day(2024, 1, 5), model.TypeExpense, "Food", "10"),
		entry(day(2024, 1, 20), model.TypeIncome, "Salary", "500"),
		entry(day(2024, 2, 1), model.TypeExpense, "Rent", "300"),
		entry(time.Time{}, model.TypeExpense, "Food", "1"),
	}
	entries[2].Account = "Card"

	from := day(2024, 1, 5)
	to := day(2024, 1, 31)

	tests := []struct {
		name   string
		filter service.TransactionFilter
		want   int
	}{
		{name: "no filter", filter: service.TransactionFilter{}, want: 4},
		{name: "inclusive date range", filter: service.TransactionFilter{StartDate: &from, EndDate: &to}, want: 2},
		{name: "start only excludes unknown dates", filter: service.TransactionFilter{StartDate: &from}, want: 3},
		{name: "by account", filter: service.TransactionFilter{Accounts: []string{"Card"}}, want: 1},
		{name: "by category", filter: service.TransactionFilter{Categories: []string{"Food"}}, want: 2},
		{name: "by type", filter: service.TransactionFilter{Types: []model.EntryType{model.TypeIncome}}, want: 1},
		{name: "limit", filter: service.TransactionFilter{Limit: 2}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Filter(entries, tt.filter), tt.want)
		})
	}
}

func TestInMonthAndRecent(t *testing.T) {
	entries := []model.LedgerEntry{
		entry(day(2024, 3, 1), model.TypeExpense, "A", "1"),
		entry(day(2023, 3, 15), model.TypeExpense, "B", "1"),
		entry(day(2024, 3, 31), model.TypeExpense, "C", "1"),
		entry(time.Time{}, model.TypeExpense, "D", "1"),
	}

	march := InMonth(entries, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
	require.Len(t, march, 2)
	assert.Equal(t, "A", march[0].Category)

	recent := Recent(entries, 2)
	require.Len(t, recent, 2)
	assert.Equal(t, "C", recent[0].Category)
	assert.Equal(t, "A", recent[1].Category)
	assert.Len(t, Recent(entries, -1), 4)
}

func TestSummarize(t *testing.T) {
	entries := []model.LedgerEntry{
		entry(day(2024, 1, 2), model.TypeIncome, "Salary", "1000"),
		entry(day(2024, 1, 3), model.TypeExpense, "Food", "20.25"),
		entry(day(2024, 1, 3), model.TypeExpense, "Food", "9.75"),
		entry(day(2024, 1, 1), model.TypeExpense, "Rent", "500"),
		entry(day(2024, 1, 4), model.TypeTransfer, "", "100"),
	}
	entries[3].PaymentMethod = PaymentCreditCard

	s := Summarize(entries, 3)

	assert.True(t, s.TotalIncome.Equal(decimal.NewFromInt(1000)))
	assert.True(t, s.TotalExpenses.Equal(decimal.NewFromInt(530)))
	assert.True(t, s.NetSavings.Equal(decimal.NewFromInt(470)))
	assert.True(t, s.CreditCardSpending.Equal(decimal.NewFromInt(500)))
	assert.True(t, s.TransferTotal.Equal(decimal.NewFromInt(100)))

	food := s.ExpensesByCategory["Food"]
	assert.Equal(t, 2, food.Count)
	assert.True(t, food.Amount.Equal(decimal.NewFromInt(30)))

	require.Len(t, s.DailyExpenses, 2)
	assert.Equal(t, day(2024, 1, 1), s.DailyExpenses[0].Date)
	assert.True(t, s.DailyExpenses[1].Amount.Equal(decimal.NewFromInt(30)))

	assert.Equal(t, day(2024, 1, 1), s.DateRange.Start)
	assert.Equal(t, day(2024, 1, 4), s.DateRange.End)

	require.Len(t, s.Recent, 3)
	assert.Equal(t, model.TypeTransfer, s.Recent[0].Type)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, 10)
	assert.True(t, s.NetSavings.IsZero())
	assert.Empty(t, s.ExpensesByCategory)
	assert.Empty(t, s.Recent)
}
