package model

import "strings"

// RegistryKind names one of the registries sharing the RegistryItem shape.
type RegistryKind string

const (
	// KindAccount is the accounts registry.
	KindAccount RegistryKind = "accounts"
	// KindCategory is the categories registry.
	KindCategory RegistryKind = "categories"
)

// Account statuses.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Account types.
const (
	AccountBank          = "Bank Account"
	AccountCreditCard    = "Credit Card"
	AccountCash          = "Cash"
	AccountDigitalWallet = "Digital Wallet"
	AccountOther         = "Other"
)

// AccountTypes lists the supported account types in display order.
func AccountTypes() []string {
	return []string{AccountBank, AccountCreditCard, AccountCash, AccountDigitalWallet, AccountOther}
}

// Category types. They double as the category default partitions.
const (
	CategoryExpense = "Expense"
	CategoryIncome  = "Income"
)

// FallbackCategory is promoted to default when the Expense partition has none.
const FallbackCategory = "Others"

// RegistryItem is an account or a category.
type RegistryItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	IsDefault   bool   `json:"is_default"`
}

// Active reports whether the item is usable. Items without a status
// (categories) are always active.
func (r RegistryItem) Active() bool {
	return r.Status == "" || r.Status == StatusActive
}

// AccountID derives an account id: lowercase, spaces to underscores.
func AccountID(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// CategoryID derives a category id like AccountID and additionally strips
// every "and" substring, so "Bills and Utilities" becomes "bills__utilities".
func CategoryID(name string) string {
	return strings.ReplaceAll(AccountID(name), "and", "")
}
