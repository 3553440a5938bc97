package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		config  Config
		wantErr bool
	}{
		{
			name: "valid oauth config",
			config: Config{
				ClientID:      "test-client",
				ClientSecret:  "test-secret",
				RefreshToken:  "test-token",
				SpreadsheetID: "sheet-id",
				SheetName:     "Transactions",
			},
		},
		{
			name: "valid service account config",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				SpreadsheetName:    "ExpenseTracker_Data",
				SheetName:          "Transactions",
			},
		},
		{
			name: "partial oauth credentials",
			config: Config{
				ClientID:      "test-client",
				RefreshToken:  "test-token",
				SpreadsheetID: "sheet-id",
				SheetName:     "Transactions",
			},
			wantErr: true,
			errMsg:  "no authentication method configured",
		},
		{
			name: "multiple auth methods",
			config: Config{
				ClientID:           "test-client",
				ClientSecret:       "test-secret",
				RefreshToken:       "test-token",
				ServiceAccountPath: "/path/to/key.json",
				SpreadsheetID:      "sheet-id",
				SheetName:          "Transactions",
			},
			wantErr: true,
			errMsg:  "multiple authentication methods configured",
		},
		{
			name: "missing sheet name",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				SpreadsheetID:      "sheet-id",
			},
			wantErr: true,
			errMsg:  "sheet name cannot be empty",
		},
		{
			name: "no spreadsheet to open",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				SheetName:          "Transactions",
			},
			wantErr: true,
			errMsg:  "spreadsheet ID or spreadsheet name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "/env/key.json")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "from-env")

	cfg := DefaultConfig()
	cfg.SpreadsheetID = "from-file"
	cfg.LoadFromEnv()

	assert.Equal(t, "/env/key.json", cfg.ServiceAccountPath)
	assert.Equal(t, "from-file", cfg.SpreadsheetID)
	assert.True(t, cfg.HasCredentials())
	assert.NoError(t, cfg.Validate())
}

func TestConfig_HasCredentials(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.HasCredentials())
	assert.ErrorIs(t, cfg.Validate(), ErrNoCredentials)
}
