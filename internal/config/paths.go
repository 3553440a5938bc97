// Package config resolves the application configuration held by viper.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// memoryDatabase is the SQLite name of a private in-memory database.
const memoryDatabase = ":memory:"

// Config keys for data file locations.
const (
	KeyDataDir        = "data.dir"
	KeyLedgerFile     = "data.ledger_file"
	KeyAccountsFile   = "data.accounts_file"
	KeyCategoriesFile = "data.categories_file"
	KeyRulesFile      = "data.rules_file"
	KeyRecurringFile  = "data.recurring_file"
	KeyDatabasePath   = "database.path"
)

// SetDefaults registers the default data locations with viper.
func SetDefaults() {
	viper.SetDefault(KeyDataDir, "~/.local/share/spice")
	viper.SetDefault(KeyLedgerFile, "expenses.csv")
	viper.SetDefault(KeyAccountsFile, "accounts.json")
	viper.SetDefault(KeyCategoriesFile, "categories.json")
	viper.SetDefault(KeyRulesFile, "category_rules.yaml")
	viper.SetDefault(KeyRecurringFile, "recurring_expenses.yaml")
	viper.SetDefault(KeyDatabasePath, "spice.db")
	viper.SetDefault("sheets.sheet_name", "Transactions")
}

// Paths are the resolved locations of every data file.
type Paths struct {
	Dir        string
	Ledger     string
	Accounts   string
	Categories string
	Rules      string
	Recurring  string
	Database   string
}

// LoadPaths resolves data file locations from viper. Relative file names
// are placed under the data directory.
func LoadPaths() Paths {
	dir := ExpandPath(viper.GetString(KeyDataDir))
	resolve := func(key string) string {
		p := ExpandPath(viper.GetString(key))
		if p == "" || p == memoryDatabase || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	return Paths{
		Dir:        dir,
		Ledger:     resolve(KeyLedgerFile),
		Accounts:   resolve(KeyAccountsFile),
		Categories: resolve(KeyCategoriesFile),
		Rules:      resolve(KeyRulesFile),
		Recurring:  resolve(KeyRecurringFile),
		Database:   resolve(KeyDatabasePath),
	}
}

// ExpandPath expands $VAR references and a leading ~ in path.
func ExpandPath(path string) string {
	if path == "" || path == memoryDatabase {
		return path
	}

	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}
