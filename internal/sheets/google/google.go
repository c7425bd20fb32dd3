package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	ports "saldo/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const DefaultSheetName = "Lancamentos"

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.Mirror = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = DefaultSheetName
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	credentialsJSON, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// loadCredentials prefers inline JSON, then the configured file, then the
// standard GOOGLE_APPLICATION_CREDENTIALS path.
func loadCredentials(cfg Config) ([]byte, error) {
	if j := strings.TrimSpace(cfg.CredentialsJSON); j != "" {
		return []byte(j), nil
	}
	file := strings.TrimSpace(cfg.CredentialsFile)
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

// EnsureHeader writes the column titles when the sheet's first row is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	rng := fmt.Sprintf("%s!A1:H1", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	header := make([]any, len(ports.Header))
	for i, h := range ports.Header {
		header[i] = h
	}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{header}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header to %s: %w", c.sheetName, err)
	}
	slog.InfoContext(ctx, "Sheet header written", "sheet", c.sheetName)
	return nil
}

func (c *Client) AppendRows(ctx context.Context, rows []ports.Row) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if len(rows) == 0 {
		return nil
	}

	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = r.Values()
	}

	rng := fmt.Sprintf("%s!A:H", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", c.sheetName, err)
	}

	var updated string
	if resp.Updates != nil {
		updated = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Rows appended to sheet", "sheet", c.sheetName, "count", len(rows), "range", updated)
	return nil
}

func (c *Client) DeleteByID(ctx context.Context, id string) (int, error) {
	return c.clearMatching(ctx, ports.ColID, id)
}

func (c *Client) DeleteByGroup(ctx context.Context, groupID string) (int, error) {
	return c.clearMatching(ctx, ports.ColGroup, groupID)
}

// clearMatching blanks every data row whose column col equals key. Rows are
// cleared rather than removed so the positions of other rows never shift
// under a concurrent append.
func (c *Client) clearMatching(ctx context.Context, col int, key string) (int, error) {
	if c.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(key) == "" {
		return 0, nil
	}

	rng := fmt.Sprintf("%s!A:B", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}

	rows := matchingRows(resp.Values, col, key)
	if len(rows) == 0 {
		return 0, nil
	}

	ranges := make([]string, len(rows))
	for i, n := range rows {
		ranges[i] = fmt.Sprintf("%s!A%d:H%d", c.sheetName, n, n)
	}
	_, err = c.svc.Spreadsheets.Values.BatchClear(c.spreadsheetID, &gsheet.BatchClearValuesRequest{Ranges: ranges}).
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("clear rows in %s: %w", c.sheetName, err)
	}

	slog.InfoContext(ctx, "Rows cleared from sheet", "sheet", c.sheetName, "count", len(rows))
	return len(rows), nil
}
