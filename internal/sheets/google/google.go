package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"jornada/internal/calendar"
	"jornada/internal/core"
	ports "jornada/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base name without year (e.g. "Horas"); code prefixes the year.
	ledgerBase string
}

// Ensure interface conformance
var _ ports.LedgerWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_LEDGER_SHEET_NAME (default "Horas").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	ledgerBase := strings.TrimSpace(os.Getenv("GOOGLE_LEDGER_SHEET_NAME"))
	if ledgerBase == "" {
		ledgerBase = "Horas"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		ledgerBase:    ledgerBase,
	}, nil
}

// newSheetsService initializes a Sheets Service. Service account
// credentials win; a user OAuth client plus stored token is the fallback
// for personal spreadsheets.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return newOAuthSheetsService(ctx)
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// newOAuthSheetsService builds the service from a user OAuth client and a
// token previously saved by the token bootstrap command.
func newOAuthSheetsService(ctx context.Context) (*gsheet.Service, error) {
	clientJSON := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	clientFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))

	var clientBytes []byte
	var err error
	switch {
	case clientJSON != "":
		clientBytes = []byte(clientJSON)
	case clientFile != "":
		clientBytes, err = os.ReadFile(clientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
	default:
		return nil, errors.New("missing credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS, or GOOGLE_OAUTH_CLIENT_JSON/GOOGLE_OAUTH_CLIENT_FILE)")
	}

	cfg, err := goauth.ConfigFromJSON(clientBytes, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}

	tok, err := loadOAuthToken()
	if err != nil {
		return nil, err
	}

	service, err := gsheet.NewService(ctx,
		goption.WithHTTPClient(cfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

func loadOAuthToken() (*oauth2.Token, error) {
	tokenJSON := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_JSON"))
	tokenFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_FILE"))

	var raw []byte
	var err error
	switch {
	case tokenJSON != "":
		raw = []byte(tokenJSON)
	case tokenFile != "":
		raw, err = os.ReadFile(tokenFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth token file: %w", err)
		}
	default:
		return nil, errors.New("missing oauth token (set GOOGLE_OAUTH_TOKEN_JSON or GOOGLE_OAUTH_TOKEN_FILE)")
	}

	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}
	return &tok, nil
}

// ExportMonth appends a block for the month below the current sheet content:
// a summary row followed by one row per enabled day.
func (c *Client) ExportMonth(ctx context.Context, project core.Project, history core.MonthlyHistory) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if err := core.ValidateMonth(history.Month); err != nil {
		return "", err
	}

	sheetName := c.ledgerSheetName(history.Year)

	// Find the next empty row from the sheet's first column.
	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read sheet dimensions for %s: %w", sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	values := buildMonthRows(project, history)

	dataRange := fmt.Sprintf("%s!A%d:G%d", sheetName, nextRow, nextRow+len(values)-1)
	vr := &gsheet.ValueRange{Values: values}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write ledger rows in sheet %s: %w", sheetName, err)
	}

	slog.InfoContext(ctx, "Exported month to spreadsheet",
		"project_id", project.ID,
		"year", history.Year,
		"month", history.Month,
		"rows", len(values),
		"range", dataRange)

	return dataRange, nil
}

// buildMonthRows renders the export block: one summary row, then the enabled
// days in ledger order.
func buildMonthRows(project core.Project, history core.MonthlyHistory) [][]any {
	monthName := ""
	if history.Month >= 1 && history.Month <= 12 {
		monthName = calendar.MonthNames[history.Month-1]
	}

	rows := [][]any{{
		project.Name,
		fmt.Sprintf("%s %d", monthName, history.Year),
		"",
		"",
		"",
		history.TotalDays,
		history.TotalHours,
	}}

	for _, rec := range history.Records {
		if !rec.Enabled {
			continue
		}
		start, end := "", ""
		if rec.Start != nil {
			start = *rec.Start
		}
		if rec.End != nil {
			end = *rec.End
		}
		lunch := "não"
		if rec.DiscountLunch {
			lunch = "sim"
		}
		rows = append(rows, []any{
			rec.Date,
			rec.DayOfWeek,
			start,
			end,
			lunch,
			"",
			float64(rec.Duration) / 60.0,
		})
	}
	return rows
}

// ledgerSheetName returns "<year> <base>" unless base already starts with a
// 4-digit year.
func (c *Client) ledgerSheetName(year int) string {
	base := strings.TrimSpace(c.ledgerBase)
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	if base == "" {
		base = "Horas"
	}
	return fmt.Sprintf("%d %s", year, base)
}
