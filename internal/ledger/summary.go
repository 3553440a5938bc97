package ledger

import (
	"slices"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/shopspring/decimal"
)

// PaymentCreditCard is the payment method counted as credit-card spending.
const PaymentCreditCard = "Credit Card"

// Summarize aggregates entries into totals and expense breakdowns by
// category and by day. Recent holds up to recent entries, newest first;
// a negative count keeps them all.
func Summarize(entries []model.LedgerEntry, recent int) service.CashFlowSummary {
	summary := service.CashFlowSummary{
		ExpensesByCategory: make(map[string]service.CategorySummary),
		TotalIncome:        decimal.Zero,
		TotalExpenses:      decimal.Zero,
		CreditCardSpending: decimal.Zero,
		TransferTotal:      decimal.Zero,
	}

	daily := make(map[time.Time]decimal.Decimal)
	for _, e := range entries {
		if !e.Date.IsZero() {
			if summary.DateRange.Start.IsZero() || e.Date.Before(summary.DateRange.Start) {
				summary.DateRange.Start = e.Date
			}
			if e.Date.After(summary.DateRange.End) {
				summary.DateRange.End = e.Date
			}
		}

		switch e.Type {
		case model.TypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(e.Amount)
		case model.TypeTransfer:
			summary.TransferTotal = summary.TransferTotal.Add(e.Amount)
		case model.TypeExpense:
			summary.TotalExpenses = summary.TotalExpenses.Add(e.Amount)
			if e.PaymentMethod == PaymentCreditCard {
				summary.CreditCardSpending = summary.CreditCardSpending.Add(e.Amount)
			}

			cat := summary.ExpensesByCategory[e.Category]
			cat.Count++
			cat.Amount = cat.Amount.Add(e.Amount)
			summary.ExpensesByCategory[e.Category] = cat

			if !e.Date.IsZero() {
				daily[e.Date] = daily[e.Date].Add(e.Amount)
			}
		}
	}

	summary.NetSavings = summary.TotalIncome.Sub(summary.TotalExpenses)

	for day, amount := range daily {
		summary.DailyExpenses = append(summary.DailyExpenses, service.DailyTotal{Date: day, Amount: amount})
	}
	slices.SortFunc(summary.DailyExpenses, func(a, b service.DailyTotal) int {
		return a.Date.Compare(b.Date)
	})

	summary.Recent = Recent(entries, recent)
	return summary
}
