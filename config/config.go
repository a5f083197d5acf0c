// Package config loads the dashboard settings from VENTAS_* environment variables
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"

	"github.com/servicing/ventas/google"
	"github.com/servicing/ventas/ratelimit"
	"github.com/servicing/ventas/ventas"
)

// Prefix of every environment variable read by Load
const Prefix = "VENTAS"

// Source kinds
const (
	SourceSheets = "sheets"
	SourceXLSX   = "xlsx"
)

// Config holds the dashboard settings
type Config struct {
	Source          string `envconfig:"SOURCE" default:"sheets" validate:"oneof=sheets xlsx"`
	SpreadsheetID   string `envconfig:"SPREADSHEET_ID" validate:"required_if=Source sheets"`
	APIKey          string `envconfig:"API_KEY"`
	CredentialsFile string `envconfig:"CREDENTIALS_FILE"`
	WorkbookPath    string `envconfig:"WORKBOOK_PATH" validate:"required_if=Source xlsx"`

	NAPColumn      string `envconfig:"NAP_COLUMN" default:"S" validate:"required,alpha"`
	ModalityColumn string `envconfig:"MODALITY_COLUMN" default:"V" validate:"required,alpha"`
	ProductColumn  string `envconfig:"PRODUCT_COLUMN" default:"X" validate:"required,alpha"`

	MonthTimeout time.Duration `envconfig:"MONTH_TIMEOUT" default:"30s" validate:"gt=0"`
	APIDelay     time.Duration `envconfig:"API_DELAY" default:"200ms" validate:"gte=0"`
	MaxAttempts  int           `envconfig:"MAX_ATTEMPTS" default:"5" validate:"min=1"`

	ReportSchedule string `envconfig:"REPORT_SCHEDULE"`
	TopExecutives  int    `envconfig:"TOP_EXECUTIVES" default:"15" validate:"min=1"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the environment and validates the result
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the cross-field rules the tags cannot express
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Source == SourceSheets &&
		strings.TrimSpace(c.APIKey) == "" && strings.TrimSpace(c.CredentialsFile) == "" {
		return fmt.Errorf("invalid configuration: %w", google.ErrNoCredentials)
	}

	if _, err := c.Layout(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.ReportSchedule != "" {
		if _, err := cron.ParseStandard(c.ReportSchedule); err != nil {
			return fmt.Errorf("invalid configuration: report schedule %q: %w", c.ReportSchedule, err)
		}
	}
	return nil
}

// Layout returns the column positions named by the *_COLUMN settings
func (c *Config) Layout() (ventas.Layout, error) {
	layout, err := ventas.LayoutFromColumns(c.NAPColumn, c.ModalityColumn, c.ProductColumn)
	if err != nil {
		return ventas.Layout{}, err
	}
	if layout.NAP == layout.Modality || layout.NAP == layout.Product || layout.Modality == layout.Product {
		return ventas.Layout{}, errors.New("NAP, modality and product columns must differ")
	}
	return layout, nil
}

// RateLimit returns the Sheets API pacing settings
func (c *Config) RateLimit() *ratelimit.Config {
	rl := ratelimit.DefaultConfig()
	rl.APIDelay = c.APIDelay
	rl.MaxAttempts = c.MaxAttempts
	return rl
}

// Google returns the credentials for the Sheets client
func (c *Config) Google() google.ClientConfig {
	return google.ClientConfig{
		CredentialsFile: c.CredentialsFile,
		APIKey:          c.APIKey,
	}
}
