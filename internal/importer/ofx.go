package importer

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Some SGML exports drop the closing bracket of bare opening tags.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ReadOFX parses an OFX or QFX statement into ledger entries. Debits
// (negative amounts) become expenses and credits become income; the
// amount is stored unsigned.
func ReadOFX(r io.Reader, defaultAccount string, logger *slog.Logger) ([]model.LedgerEntry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultAccount == "" {
		defaultAccount = model.DefaultAccountName
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var entries []model.LedgerEntry
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			bankStmts++
			for _, tx := range stmt.BankTranList.Transactions {
				entries = append(entries, convertOFX(tx, defaultAccount))
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			ccStmts++
			for _, tx := range stmt.BankTranList.Transactions {
				entry := convertOFX(tx, defaultAccount)
				entry.PaymentMethod = "Credit Card"
				entries = append(entries, entry)
			}
		}
	}

	logger.Info("parsed OFX file",
		"entries", len(entries),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return entries, nil
}

func convertOFX(tx ofxgo.Transaction, account string) model.LedgerEntry {
	amount, err := decimal.NewFromString(tx.TrnAmt.FloatString(2))
	if err != nil {
		amount = decimal.Zero
	}

	entryType := model.TypeIncome
	if amount.IsNegative() {
		entryType = model.TypeExpense
	}

	description := ofxDescription(tx)
	if description == "" {
		description = model.DefaultDescription
	}

	return model.LedgerEntry{
		Date:          model.CalendarDate(tx.DtPosted.Time),
		Amount:        model.RoundAmount(amount.Abs()),
		Time:          model.DefaultTime,
		Type:          entryType,
		Category:      model.DefaultCategory,
		PaymentMethod: model.DefaultPaymentMethod,
		Account:       account,
		Description:   description,
		Source:        model.SourceUpload,
	}
}

var ofxPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// ofxDescription picks the cleanest merchant text: PAYEE, then NAME, then
// MEMO when NAME is generic.
func ofxDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && (name == "" || isGenericDescription(name)) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range ofxPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " posting dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}
	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
