package importer

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/sheets"
	"github.com/Veraticus/spice-ledger/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storedLedgers returns ledger stores whose saves go through the row
// encoding, one local only and one with a remote sheet.
func storedLedgers(t *testing.T) map[string]*storage.LedgerStore {
	t.Helper()

	local, err := storage.NewLedgerStore(
		storage.NewCSVFile(filepath.Join(t.TempDir(), "expenses.csv")),
		storage.LocalOnly(),
		fixedAccount("Checking"),
		nil,
	)
	require.NoError(t, err)

	sheet := storage.LocalOnly()
	sheet.Table, sheet.Err = sheets.NewMemoryTable(nil), nil
	remote, err := storage.NewLedgerStore(
		storage.NewCSVFile(filepath.Join(t.TempDir(), "expenses.csv")),
		sheet,
		fixedAccount("Checking"),
		nil,
	)
	require.NoError(t, err)
	require.True(t, remote.Remote())

	return map[string]*storage.LedgerStore{"local": local, "remote": remote}
}

func TestImport_IdempotentThroughStoredLedger(t *testing.T) {
	ctx := context.Background()
	csvData := "Date,Description,Amount\n05/03/2024,Fuel,10.005\n06/03/2024,Cafe,4.5\n07/03/2024,Metro,0.333\n"

	for name, store := range storedLedgers(t) {
		t.Run(name, func(t *testing.T) {
			im := New(store, nil, fixedAccount("Checking"), nil)

			res, err := im.Import(ctx, "statement.csv", strings.NewReader(csvData))
			require.NoError(t, err)
			assert.Equal(t, 3, res.Added)

			res, err = im.Import(ctx, "statement.csv", strings.NewReader(csvData))
			require.NoError(t, err)
			assert.Zero(t, res.Added)
			assert.Equal(t, 3, res.Duplicates)

			entries, err := store.Load(ctx)
			require.NoError(t, err)
			require.Len(t, entries, 3)
			assert.Equal(t, "10.01", entries[0].Amount.StringFixed(2))
			assert.Equal(t, "0.33", entries[2].Amount.StringFixed(2))
		})
	}
}

func TestImport_XLSXFloatCellsIdempotent(t *testing.T) {
	ctx := context.Background()
	tenth, fifth := 0.1, 0.2
	rows := [][]any{
		{"Date", "Description", "Amount"},
		{"05/03/2024", "Groceries", tenth + fifth},
		{"06/03/2024", "Books", 1234.5678},
	}

	for name, store := range storedLedgers(t) {
		t.Run(name, func(t *testing.T) {
			im := New(store, nil, fixedAccount("Checking"), nil)

			for i, wantAdded := range []int{2, 0} {
				res, err := im.Import(ctx, "statement.xlsx", buildXLSX(t, rows))
				require.NoError(t, err)
				assert.Equal(t, wantAdded, res.Added, "import %d", i+1)
			}

			entries, err := store.Load(ctx)
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.True(t, entries[0].Amount.Equal(amount("0.3")))
			assert.True(t, entries[1].Amount.Equal(amount("1234.57")))
		})
	}
}

// A signed single-amount statement loses its sign: a purchase and a
// refund of the same size, date and description are one Expense.
func TestImport_GenericShapeDropsSign(t *testing.T) {
	ctx := context.Background()
	store := &memoryLedger{}
	im := New(store, nil, nil, nil)

	csvData := "Date,Description,Amount\n05/03/2024,Headphones,-50\n05/03/2024,Headphones,50\n"

	res, err := im.Import(ctx, "statement.csv", strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Parsed)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Duplicates)

	require.Len(t, store.entries, 1)
	assert.Equal(t, model.TypeExpense, store.entries[0].Type)
	assert.True(t, store.entries[0].Amount.Equal(amount("50")))
}
