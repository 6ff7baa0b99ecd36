package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fenilmodi00/meabot-backend/shared"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetStore is the narrow contract the core uses against the spreadsheet
type SheetStore interface {
	// Get returns the rows of a range; rows may be shorter than the range.
	Get(ctx context.Context, rangeName string) ([][]string, error)
	// Append adds one row after the last row of a range.
	Append(ctx context.Context, rangeName string, row []interface{}) error
	// Update writes exactly one cell.
	Update(ctx context.Context, cell string, value interface{}) error
}

const valueInputOption = "USER_ENTERED"

// SheetsClientConfig holds what is needed to open the spreadsheet
type SheetsClientConfig struct {
	SpreadsheetID   string
	CredentialsFile string
	Timeout         time.Duration
	MinInterval     time.Duration
}

// GoogleSheetsClient implements SheetStore on the Sheets v4 API
type GoogleSheetsClient struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
	rateLimiter   *shared.RequestRateLimiter
	httpClient    *http.Client
	logger        *logrus.Entry
}

// NewGoogleSheetsClient loads service-account credentials, refreshes the
// access token once so credential problems fail at startup, and builds the
// API client. Call it once per process and share the result.
func NewGoogleSheetsClient(ctx context.Context, cfg SheetsClientConfig) (*GoogleSheetsClient, error) {
	if cfg.SpreadsheetID == "" {
		return nil, shared.NewServiceError(shared.ErrorCategoryConfiguration, "MISSING_SPREADSHEET_ID",
			"spreadsheet id is not configured", "SheetsClient", "init", false, nil)
	}

	credentials, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, shared.WrapError(fmt.Errorf("reading credentials file %s: %w", cfg.CredentialsFile, err),
			shared.ErrorCategoryConfiguration, "CREDENTIALS_UNREADABLE", "SheetsClient", "init", false)
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentials, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, shared.WrapError(fmt.Errorf("parsing credentials: %w", err),
			shared.ErrorCategoryConfiguration, "CREDENTIALS_INVALID", "SheetsClient", "init", false)
	}

	base := shared.NewUpstreamHTTPClient(cfg.Timeout)
	tokenCtx := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, base)
	tokenSource := jwtConfig.TokenSource(tokenCtx)

	if _, err := tokenSource.Token(); err != nil {
		return nil, shared.WrapError(fmt.Errorf("refreshing access token: %w", err),
			shared.ErrorCategoryAuthentication, "TOKEN_REFRESH_FAILED", "SheetsClient", "init", true)
	}

	httpClient := oauth2.NewClient(tokenCtx, tokenSource)
	httpClient.Timeout = base.Timeout

	service, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, shared.WrapError(fmt.Errorf("creating sheets service: %w", err),
			shared.ErrorCategoryConfiguration, "SERVICE_INIT_FAILED", "SheetsClient", "init", false)
	}

	logrus.WithFields(logrus.Fields{
		"component":      "SheetsClient",
		"spreadsheet_id": cfg.SpreadsheetID,
		"timeout":        base.Timeout,
		"min_interval":   cfg.MinInterval,
	}).Info("Google Sheets client initialized")

	return &GoogleSheetsClient{
		values:        service.Spreadsheets.Values,
		spreadsheetID: cfg.SpreadsheetID,
		rateLimiter:   shared.NewRequestRateLimiter(cfg.MinInterval),
		httpClient:    base,
		logger:        logrus.WithField("component", "SheetsClient"),
	}, nil
}

// Get reads a range and returns its cells as strings
func (c *GoogleSheetsClient) Get(ctx context.Context, rangeName string) ([][]string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, wrapSheetsError(err, "get", rangeName)
	}

	start := time.Now()
	resp, err := c.values.Get(c.spreadsheetID, rangeName).Context(ctx).Do()
	if err != nil {
		return nil, wrapSheetsError(err, "get", rangeName)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = cellString(cell)
		}
		rows[i] = cells
	}

	c.logger.WithFields(logrus.Fields{
		"range":    rangeName,
		"rows":     len(rows),
		"duration": time.Since(start),
	}).Debug("Read sheet range")

	return rows, nil
}

// Append adds row at the end of rangeName
func (c *GoogleSheetsClient) Append(ctx context.Context, rangeName string, row []interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return wrapSheetsError(err, "append", rangeName)
	}

	body := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := c.values.Append(c.spreadsheetID, rangeName, body).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return wrapSheetsError(err, "append", rangeName)
	}

	c.logger.WithField("range", rangeName).Debug("Appended sheet row")
	return nil
}

// Update writes value into a single cell such as "Questions!F7"
func (c *GoogleSheetsClient) Update(ctx context.Context, cell string, value interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return wrapSheetsError(err, "update", cell)
	}

	body := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := c.values.Update(c.spreadsheetID, cell, body).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return wrapSheetsError(err, "update", cell)
	}

	c.logger.WithField("cell", cell).Debug("Updated sheet cell")
	return nil
}

// Close releases idle upstream connections
func (c *GoogleSheetsClient) Close() {
	shared.CloseIdleConnections(c.httpClient)
}

func cellString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func wrapSheetsError(err error, operation, target string) error {
	retryable := shared.IsRetryableError(err)
	code := "SHEETS_" + strings.ToUpper(operation) + "_FAILED"

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		retryable = apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
		if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden {
			return shared.NewServiceError(shared.ErrorCategoryAuthentication, code,
				fmt.Sprintf("sheets %s %s: %v", operation, target, err), "SheetsClient", operation, false, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return shared.NewServiceError(shared.ErrorCategoryTimeout, code,
			fmt.Sprintf("sheets %s %s: %v", operation, target, err), "SheetsClient", operation, true, err)
	}

	return shared.NewServiceError(shared.ErrorCategoryNetwork, code,
		fmt.Sprintf("sheets %s %s: %v", operation, target, err), "SheetsClient", operation, retryable, err)
}
