package cli

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/spice-ledger/internal/model"
)

func TestFormatAmount(t *testing.T) {
	income := FormatAmount(decimal.RequireFromString("1200.5"), model.TypeIncome)
	expense := FormatAmount(decimal.RequireFromString("42"), model.TypeExpense)

	assert.Contains(t, income, "+1200.50")
	assert.Contains(t, expense, "-42.00")
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]Column{{Title: "Name"}, {Title: "Type", Width: 10}},
		[][]string{
			{"Main Account", "Bank"},
			{"Cash", "Cash"},
		},
	)

	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "Main Account")
	assert.Contains(t, out, "Cash")
	assert.GreaterOrEqual(t, strings.Count(out, "\n"), 3)
}

func TestRenderTableEmpty(t *testing.T) {
	out := RenderTable([]Column{{Title: "Date"}}, nil)
	assert.Contains(t, out, "Date")
}
