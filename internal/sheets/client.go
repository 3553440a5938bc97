package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Table is a single rectangular sheet of text cells. The first row is the
// header. Writes replace the whole sheet; there are no partial updates.
type Table interface {
	ReadAll(ctx context.Context) ([][]string, error)
	ReplaceAll(ctx context.Context, rows [][]string) error
}

var (
	_ Table = (*Client)(nil)
	_ Table = (*MemoryTable)(nil)
)

// Client is a Table backed by one tab of a Google spreadsheet.
type Client struct {
	service       *sheets.Service
	logger        *slog.Logger
	spreadsheetID string
	sheetName     string
	retry         service.RetryOptions
}

// Open authenticates, resolves the spreadsheet and makes sure the ledger
// tab exists. Without a spreadsheet ID a new spreadsheet is created and its
// ID logged so it can be pinned in config.
func Open(ctx context.Context, config Config, logger *slog.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	c := &Client{
		service:   srv,
		logger:    logger,
		sheetName: config.SheetName,
		retry: service.RetryOptions{
			MaxAttempts:  config.RetryAttempts,
			InitialDelay: config.RetryDelay,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}

	c.spreadsheetID, err = c.getOrCreateSpreadsheet(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := c.ensureSheet(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

func (c *Client) getOrCreateSpreadsheet(ctx context.Context, config Config) (string, error) {
	if config.SpreadsheetID != "" {
		_, err := c.service.Spreadsheets.Get(config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", config.SpreadsheetID, err)
		}
		return config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    config.SpreadsheetName,
			TimeZone: config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: config.SheetName}},
		},
	}

	created, err := c.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	c.logger.Warn("created new spreadsheet; share it with your account and set sheets.spreadsheet_id",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

func (c *Client) ensureSheet(ctx context.Context) error {
	ss, err := c.service.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to read spreadsheet %s: %w", c.spreadsheetID, err)
	}

	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == c.sheetName {
			return nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: c.sheetName}}},
		},
	}
	if _, err := c.service.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to add sheet %q: %w", c.sheetName, err)
	}

	c.logger.Info("added ledger sheet", "spreadsheet_id", c.spreadsheetID, "sheet", c.sheetName)
	return nil
}

// ReadAll returns every row of the sheet as text.
func (c *Client) ReadAll(ctx context.Context) ([][]string, error) {
	var resp *sheets.ValueRange
	err := common.WithRetry(ctx, func() error {
		var err error
		resp, err = c.service.Spreadsheets.Values.Get(c.spreadsheetID, c.sheetName).
			ValueRenderOption("UNFORMATTED_VALUE").
			Context(ctx).Do()
		return classifyAPIError(err)
	}, c.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", c.sheetName, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = cellString(cell)
		}
		rows = append(rows, row)
	}

	c.logger.Debug("read sheet", "sheet", c.sheetName, "rows", len(rows))
	return rows, nil
}

// ReplaceAll clears the sheet and writes rows starting at A1. Values are
// written RAW so dates stay plain text.
func (c *Client) ReplaceAll(ctx context.Context, rows [][]string) error {
	err := common.WithRetry(ctx, func() error {
		_, err := c.service.Spreadsheets.Values.Clear(c.spreadsheetID, c.sheetName, &sheets.ClearValuesRequest{}).Context(ctx).Do()
		return classifyAPIError(err)
	}, c.retry)
	if err != nil {
		return fmt.Errorf("failed to clear sheet %q: %w", c.sheetName, err)
	}

	if len(rows) == 0 {
		return nil
	}

	values := make([][]any, len(rows))
	for i, row := range rows {
		values[i] = make([]any, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}

	vr := &sheets.ValueRange{Values: values}
	err = common.WithRetry(ctx, func() error {
		_, err := c.service.Spreadsheets.Values.Update(c.spreadsheetID, c.sheetName+"!A1", vr).
			ValueInputOption("RAW").
			Context(ctx).Do()
		return classifyAPIError(err)
	}, c.retry)
	if err != nil {
		return fmt.Errorf("failed to write sheet %q: %w", c.sheetName, err)
	}

	c.logger.Debug("replaced sheet", "sheet", c.sheetName, "rows", len(rows))
	return nil
}

// classifyAPIError sorts API failures for WithRetry: 429 is a rate limit,
// other 4xx responses are permanent, everything else is retried.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= 400 && apiErr.Code < 500:
		return common.Permanent(err)
	default:
		return err
	}
}

// cellString renders a cell from the API. Whole numbers come back as
// float64 and are printed without a fraction.
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprint(t)
	}
}
