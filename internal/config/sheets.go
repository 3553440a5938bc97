package config

import (
	"github.com/Veraticus/spice-ledger/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig loads Google Sheets configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or SPICE_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. Default values
//
// The result is not validated; a config without credentials simply means
// the ledger stays local.
func LoadSheetsConfig() sheets.Config {
	cfg := sheets.Config{
		ServiceAccountPath: ExpandPath(viper.GetString("sheets.service_account_path")),
		ClientID:           viper.GetString("sheets.client_id"),
		ClientSecret:       viper.GetString("sheets.client_secret"),
		RefreshToken:       viper.GetString("sheets.refresh_token"),
		SpreadsheetID:      viper.GetString("sheets.spreadsheet_id"),
		SpreadsheetName:    viper.GetString("sheets.spreadsheet_name"),
		SheetName:          viper.GetString("sheets.sheet_name"),
		TimeZone:           viper.GetString("sheets.time_zone"),
		RetryAttempts:      viper.GetInt("sheets.retry_attempts"),
		RetryDelay:         viper.GetDuration("sheets.retry_delay"),
	}

	cfg.LoadFromEnv()
	cfg.ServiceAccountPath = ExpandPath(cfg.ServiceAccountPath)

	defaults := sheets.DefaultConfig()
	if cfg.SpreadsheetName == "" {
		cfg.SpreadsheetName = defaults.SpreadsheetName
	}
	if cfg.SheetName == "" {
		cfg.SheetName = defaults.SheetName
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = defaults.TimeZone
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = defaults.RetryAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaults.RetryDelay
	}

	return cfg
}
