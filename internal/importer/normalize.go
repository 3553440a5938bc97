package importer

import (
	"log/slog"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// Normalized is the outcome of mapping a sheet onto canonical entries.
type Normalized struct {
	Entries []model.LedgerEntry
	Shape   Shape
	// Dropped counts non-blank rows discarded for an unparseable date.
	Dropped int
}

// Normalize maps sheet rows onto canonical ledger entries. Columns the
// sheet does not provide get import defaults; account defaults to
// defaultAccount. Blank rows are skipped and rows whose date cannot be
// parsed are dropped. Amounts that are not numeric become zero. A sheet
// without data rows normalizes to nothing, whatever its header.
func Normalize(sheet Sheet, defaultAccount string, logger *slog.Logger) (Normalized, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cols := detectShape(sheet.Header)
	out := Normalized{Shape: cols.shape}

	hasData := false
	for _, row := range sheet.Rows {
		if !blankRow(row) {
			hasData = true
			break
		}
	}
	if !hasData {
		return out, nil
	}
	if err := cols.validate(); err != nil {
		return Normalized{}, err
	}

	if defaultAccount == "" {
		defaultAccount = model.DefaultAccountName
	}

	for n, row := range sheet.Rows {
		if blankRow(row) {
			continue
		}

		raw := cell(row, cols.date)
		date, err := parseStatementDate(raw)
		if err != nil {
			logger.Warn("dropping statement row with unparseable date", "row", n+2, "date", raw)
			out.Dropped++
			continue
		}

		entry := model.LedgerEntry{
			Date:          date,
			Type:          model.TypeExpense,
			Category:      model.DefaultCategory,
			PaymentMethod: model.DefaultPaymentMethod,
			Account:       defaultAccount,
			Description:   model.DefaultDescription,
			Source:        model.SourceUpload,
			Time:          model.DefaultTime,
		}

		switch cols.shape {
		case ShapeBank:
			withdrawal := parseStatementAmount(cell(row, cols.withdrawal))
			deposit := parseStatementAmount(cell(row, cols.deposit))
			if deposit.IsPositive() {
				entry.Type = model.TypeIncome
			}
			// Both columns filled is not expected; when it happens the
			// amounts are summed.
			entry.Amount = withdrawal.Add(deposit).Abs()
		default:
			entry.Amount = parseStatementAmount(cell(row, cols.amount)).Abs()
		}
		entry.Amount = model.RoundAmount(entry.Amount)

		if cols.description >= 0 {
			entry.Description = cell(row, cols.description)
		}
		applyPassthrough(&entry, row, cols.passthrough)

		out.Entries = append(out.Entries, entry)
	}

	return out, nil
}

func applyPassthrough(e *model.LedgerEntry, row []string, cols map[string]int) {
	for col, i := range cols {
		v := cell(row, i)
		switch col {
		case model.ColTime:
			e.Time = v
		case model.ColType:
			if t := model.EntryType(v); t == model.TypeExpense || t == model.TypeIncome || t == model.TypeTransfer {
				e.Type = t
			}
		case model.ColCategory:
			e.Category = v
		case model.ColPaymentMethod:
			e.PaymentMethod = v
		case model.ColAccount:
			if v != "" {
				e.Account = v
			}
		case model.ColSource:
			e.Source = model.EntrySource(v)
		case model.ColTags:
			e.Tags = v
		}
	}
}
