// Package google builds the read-only Google Sheets client used to fetch
// the monthly sales tabs.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ApplicationName is sent as the user agent of Sheets API calls
const ApplicationName = "Dashboard Ventas"

// ErrNoCredentials is returned when neither a key file nor an API key is set
var ErrNoCredentials = errors.New("google: no service account key file or API key configured")

// ClientConfig selects the credentials used to reach the Sheets API.
// A service account key file takes precedence over an API key.
type ClientConfig struct {
	CredentialsFile string
	APIKey          string
}

// NewSheetsService creates a Sheets API client with read-only access
func NewSheetsService(ctx context.Context, cfg ClientConfig) (*sheets.Service, error) {
	opts := []option.ClientOption{option.WithUserAgent(ApplicationName)}

	switch {
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		credJSON, err := readCredentials(cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}

		jwtConfig, err := google.JWTConfigFromJSON(credJSON, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse credentials: %w", err)
		}
		opts = append(opts, option.WithHTTPClient(jwtConfig.Client(ctx)))

	case strings.TrimSpace(cfg.APIKey) != "":
		opts = append(opts, option.WithAPIKey(strings.TrimSpace(cfg.APIKey)))

	default:
		return nil, ErrNoCredentials
	}

	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return srv, nil
}

// readCredentials loads the service account key JSON
func readCredentials(path string) ([]byte, error) {
	data, err := os.ReadFile(strings.TrimSpace(path)) //nolint:gosec // Path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}
	return data, nil
}
