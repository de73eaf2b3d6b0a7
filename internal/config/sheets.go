package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/Philos250/TransactiTrack/internal/sheets"
)

// SheetsConfig holds the Google Sheets export settings.
type SheetsConfig struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	TokenFile          string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
}

// loadSheets reads the sheets.* keys, falling back to the GOOGLE_SHEETS_*
// variables that Google tooling commonly sets.
func loadSheets(v *viper.Viper) SheetsConfig {
	get := func(key, env string) string {
		if value := v.GetString(key); value != "" {
			return value
		}
		return os.Getenv(env)
	}

	return SheetsConfig{
		ClientID:           get("sheets.client_id", "GOOGLE_SHEETS_CLIENT_ID"),
		ClientSecret:       get("sheets.client_secret", "GOOGLE_SHEETS_CLIENT_SECRET"),
		RefreshToken:       get("sheets.refresh_token", "GOOGLE_SHEETS_REFRESH_TOKEN"),
		TokenFile:          ExpandPath(get("sheets.token_file", "GOOGLE_SHEETS_TOKEN_FILE")),
		ServiceAccountPath: ExpandPath(get("sheets.service_account_path", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")),
		SpreadsheetID:      get("sheets.spreadsheet_id", "GOOGLE_SHEETS_SPREADSHEET_ID"),
		SpreadsheetName:    get("sheets.spreadsheet_name", "GOOGLE_SHEETS_SPREADSHEET_NAME"),
		TimeZone:           v.GetString("sheets.timezone"),
	}
}

// Writer returns the writer configuration, validated. Sheets settings are
// only checked when an export is requested.
func (c SheetsConfig) Writer() (sheets.Config, error) {
	cfg := sheets.DefaultConfig()
	cfg.ClientID = c.ClientID
	cfg.ClientSecret = c.ClientSecret
	cfg.RefreshToken = c.RefreshToken
	cfg.TokenFile = c.TokenFile
	cfg.ServiceAccountPath = c.ServiceAccountPath
	cfg.SpreadsheetID = c.SpreadsheetID
	if c.SpreadsheetName != "" {
		cfg.SpreadsheetName = c.SpreadsheetName
	}
	if c.TimeZone != "" {
		cfg.TimeZone = c.TimeZone
	}

	if err := cfg.Validate(); err != nil {
		return sheets.Config{}, err
	}
	return cfg, nil
}

// OAuth returns the settings for the interactive OAuth2 flow.
func (c SheetsConfig) OAuth() sheets.OAuth2Config {
	return sheets.OAuth2Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenFile:    c.TokenFile,
	}
}
