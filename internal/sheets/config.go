// Package sheets provides the Google Sheets backend for the ledger.
package sheets

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrNoCredentials means no authentication method is configured. Callers
// treat it as "use the local file" rather than as a failure.
var ErrNoCredentials = errors.New("no authentication method configured")

// Config holds the configuration for the Google Sheets ledger backend.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	SheetName          string
	TimeZone           string
	RetryAttempts      int
	RetryDelay         time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName: "ExpenseTracker_Data",
		SheetName:       "Transactions",
		TimeZone:        "UTC",
		RetryAttempts:   3,
		RetryDelay:      time.Second,
	}
}

// LoadFromEnv fills unset fields from GOOGLE_SHEETS_* environment variables.
func (c *Config) LoadFromEnv() {
	setIfEmpty(&c.ClientID, "GOOGLE_SHEETS_CLIENT_ID")
	setIfEmpty(&c.ClientSecret, "GOOGLE_SHEETS_CLIENT_SECRET")
	setIfEmpty(&c.RefreshToken, "GOOGLE_SHEETS_REFRESH_TOKEN")
	setIfEmpty(&c.ServiceAccountPath, "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")
	setIfEmpty(&c.SpreadsheetID, "GOOGLE_SHEETS_SPREADSHEET_ID")
	setIfEmpty(&c.SpreadsheetName, "GOOGLE_SHEETS_SPREADSHEET_NAME")
	setIfEmpty(&c.SheetName, "GOOGLE_SHEETS_SHEET_NAME")
}

func setIfEmpty(field *string, env string) {
	if *field == "" {
		*field = os.Getenv(env)
	}
}

// HasCredentials reports whether any authentication method is configured.
func (c *Config) HasCredentials() bool {
	return c.ServiceAccountPath != "" || (c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != "")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return ErrNoCredentials
	}

	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("multiple authentication methods configured; use either OAuth2 or service account")
	}

	if c.SheetName == "" {
		return fmt.Errorf("sheet name cannot be empty")
	}

	if c.SpreadsheetID == "" && c.SpreadsheetName == "" {
		return fmt.Errorf("either spreadsheet ID or spreadsheet name is required")
	}

	return nil
}
