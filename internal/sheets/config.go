// Package sheets exports ledger reports to Google Sheets.
package sheets

import (
	"errors"
	"fmt"
	"time"

	"github.com/Philos250/TransactiTrack/internal/common"
)

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	TokenFile          string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
	CurrencyPattern    string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  "TransactiTrack Report",
		TimeZone:         "UTC",
		CurrencyPattern:  "#,##0.00",
		EnableFormatting: true,
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}
}

// HasOAuth reports whether OAuth2 client credentials are configured. A
// refresh token may come from the config or from TokenFile.
func (c *Config) HasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && (c.RefreshToken != "" || c.TokenFile != "")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	hasServiceAccount := c.ServiceAccountPath != ""
	switch {
	case !c.HasOAuth() && !hasServiceAccount:
		errs = append(errs, errors.New("no authentication method configured"))
	case c.HasOAuth() && hasServiceAccount:
		errs = append(errs, errors.New("multiple authentication methods configured; use either OAuth2 or service account"))
	}

	if c.BatchSize <= 0 {
		errs = append(errs, errors.New("batch size must be positive"))
	}
	if c.RetryAttempts < 0 {
		errs = append(errs, errors.New("retry attempts cannot be negative"))
	}
	if c.RetryDelay < 0 {
		errs = append(errs, errors.New("retry delay cannot be negative"))
	}
	if c.TimeZone != "" {
		if _, err := time.LoadLocation(c.TimeZone); err != nil {
			errs = append(errs, fmt.Errorf("unknown time zone %q", c.TimeZone))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: sheets: %w", common.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
