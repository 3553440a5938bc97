package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/shopspring/decimal"
)

// parseEntryType accepts an entry type in any letter case.
func parseEntryType(s string) (model.EntryType, error) {
	for _, t := range []model.EntryType{model.TypeExpense, model.TypeIncome, model.TypeTransfer} {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", common.NewUserError(fmt.Sprintf("unknown type %q (want Expense, Income or Transfer)", s), nil)
}

func parseAmountArg(s string) (decimal.Decimal, error) {
	amount, ok := model.ParseAmount(s)
	if !ok {
		return decimal.Zero, common.NewUserError(fmt.Sprintf("invalid amount %q", s), nil)
	}
	return amount, nil
}

func renderEntries(entries []model.LedgerEntry) string {
	columns := []cli.Column{
		{Title: "Date"},
		{Title: "Type"},
		{Title: "Category"},
		{Title: "Amount"},
		{Title: "Account"},
		{Title: "Description"},
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			model.FormatDate(e.Date),
			string(e.Type),
			e.Category,
			e.Amount.StringFixed(2),
			e.Account,
			e.Description,
		})
	}
	return cli.RenderTable(columns, rows)
}
