// Package sheets is the Google Sheets row store behind the bot: one sheet
// holds calculation rows whose cost column is computed by spreadsheet
// formulas, one sheet is an append-only history log, and one sheet is the
// field dictionary that maps semantic keys to headers and prompt hints.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	contractx "github.com/eserovd/delivery-calc-bot/delivery/contract"
)

var (
	ErrNoSpreadsheet = errors.New("spreadsheet id is required")
	ErrNoCredentials = errors.New("credentials path is required")
)

// Config is the row-store configuration, environment-sourced.
type Config struct {
	SpreadsheetID   string        `envconfig:"SHEETS_ID" split_words:"true" required:"true"`
	CredentialsPath string        `envconfig:"CREDENTIALS_PATH" split_words:"true" default:"credentials.json"`
	CalcSheet       string        `envconfig:"CALC_SHEET" split_words:"true" default:"Расчет"`
	CalcSheetGID    int64         `envconfig:"CALC_SHEET_GID" split_words:"true" required:"true"`
	HistorySheet    string        `envconfig:"HISTORY_SHEET" split_words:"true" default:"История"`
	DictSheet       string        `envconfig:"DICT_SHEET" split_words:"true" default:"Словарь"`
	ResultColumn    string        `envconfig:"RESULT_COLUMN" split_words:"true" default:"U"`
	TemplateColumns int64         `envconfig:"TEMPLATE_COLUMNS" split_words:"true" default:"21"`
	SettleDelay     time.Duration `envconfig:"SETTLE_DELAY" split_words:"true" default:"1s"`
}

// Client talks to one spreadsheet. It implements contract.Recorder and
// contract.HintProvider.
type Client struct {
	svc *sheetsapi.Service
	cfg Config
	loc *time.Location

	mu   sync.Mutex
	dict FieldDictionary
}

var (
	_ contractx.Recorder     = (*Client)(nil)
	_ contractx.HintProvider = (*Client)(nil)
)

// New builds a client from service-account credentials on disk.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, ErrNoSpreadsheet
	}
	if strings.TrimSpace(cfg.CredentialsPath) == "" {
		return nil, ErrNoCredentials
	}

	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, cfg)
}

// NewWithService wraps an already built service, mainly for tests.
func NewWithService(svc *sheetsapi.Service, cfg Config) (*Client, error) {
	if svc == nil {
		return nil, errors.New("sheets service is required")
	}
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, ErrNoSpreadsheet
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = time.Second
	}
	if cfg.TemplateColumns <= 0 {
		cfg.TemplateColumns = 21
	}
	if strings.TrimSpace(cfg.ResultColumn) == "" {
		cfg.ResultColumn = "U"
	}

	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		loc = time.UTC
	}
	return &Client{svc: svc, cfg: cfg, loc: loc}, nil
}

// Cells of the calculation sheet that hold user input. The remaining
// columns carry per-row formulas seeded by the template row and must not
// be overwritten; the derived cost lands in cfg.ResultColumn.
var calcCells = []struct {
	column string
	value  func(sub contractx.Submission, date string) any
}{
	{"A", func(_ contractx.Submission, date string) any { return date }},
	{"B", func(sub contractx.Submission, _ string) any { return sub.UserID }},
	{"C", func(sub contractx.Submission, _ string) any { return sub.Description }},
	{"D", func(sub contractx.Submission, _ string) any { return string(sub.Type) }},
	{"E", func(sub contractx.Submission, _ string) any { return sub.Volume }},
	{"F", func(sub contractx.Submission, _ string) any { return sub.Count }},
	{"G", func(sub contractx.Submission, _ string) any { return sub.Weight }},
	{"L", func(sub contractx.Submission, _ string) any { return sub.Price }},
}

// Submit appends one calculation row: the template row is copied first so
// the new row inherits the cost formulas, then the user cells are
// overwritten one by one.
func (c *Client) Submit(ctx context.Context, sub contractx.Submission) (int, error) {
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.cfg.SpreadsheetID, c.cfg.CalcSheet+"!A:A").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("count calculation rows: %w", err)
	}
	rowCount := 1
	if len(resp.Values) > 0 {
		rowCount = len(resp.Values)
	}
	newRow := rowCount + 1

	copyReq := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			CopyPaste: &sheetsapi.CopyPasteRequest{
				Source: &sheetsapi.GridRange{
					SheetId:          c.cfg.CalcSheetGID,
					StartRowIndex:    1,
					EndRowIndex:      2,
					StartColumnIndex: 0,
					EndColumnIndex:   c.cfg.TemplateColumns,
				},
				Destination: &sheetsapi.GridRange{
					SheetId:          c.cfg.CalcSheetGID,
					StartRowIndex:    int64(newRow - 1),
					EndRowIndex:      int64(newRow),
					StartColumnIndex: 0,
					EndColumnIndex:   c.cfg.TemplateColumns,
				},
				PasteType:        "PASTE_NORMAL",
				PasteOrientation: "NORMAL",
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.cfg.SpreadsheetID, copyReq).Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("copy template row: %w", err)
	}

	date := time.Now().In(c.loc).Format("02.01.2006, 15:04:05")
	for _, cell := range calcCells {
		rng := fmt.Sprintf("%s!%s%d", c.cfg.CalcSheet, cell.column, newRow)
		vr := &sheetsapi.ValueRange{Values: [][]any{{cell.value(sub, date)}}}
		_, err := c.svc.Spreadsheets.Values.
			Update(c.cfg.SpreadsheetID, rng, vr).
			ValueInputOption("USER_ENTERED").
			Context(ctx).Do()
		if err != nil {
			return 0, fmt.Errorf("write cell %s: %w", rng, err)
		}
	}

	return newRow, nil
}

// AwaitResult waits the settle delay for the spreadsheet formulas to
// recompute, then reads the derived cell once. There is no polling: the
// baseline behavior is a single fixed wait, surfacing whatever is present.
func (c *Client) AwaitResult(ctx context.Context, row int) (string, error) {
	timer := time.NewTimer(c.cfg.SettleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
	}

	rng := fmt.Sprintf("%s!%s%d", c.cfg.CalcSheet, c.cfg.ResultColumn, row)
	resp, err := c.svc.Spreadsheets.Values.Get(c.cfg.SpreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read result cell: %w", err)
	}
	return firstCell(resp.Values), nil
}

// AppendHistory logs a completed calculation to the history sheet. The
// result column carries whatever AwaitResult produced, possibly empty.
func (c *Client) AppendHistory(ctx context.Context, sub contractx.Submission, result string) error {
	row := []any{
		time.Now().In(c.loc).Format("02.01.2006, 15:04:05"),
		sub.UserID,
		string(sub.Type),
		sub.Weight,
		sub.Volume,
		sub.Price,
		sub.Description,
		result,
	}
	vr := &sheetsapi.ValueRange{Values: [][]any{row}}
	_, err := c.svc.Spreadsheets.Values.
		Append(c.cfg.SpreadsheetID, c.cfg.HistorySheet+"!A1", vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append history row: %w", err)
	}
	return nil
}

// History returns the user's rows from the history sheet in storage order.
func (c *Client) History(ctx context.Context, userID string) ([]contractx.HistoryRow, error) {
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.cfg.SpreadsheetID, c.cfg.HistorySheet+"!A:H").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return filterHistory(resp.Values, userID), nil
}

func firstCell(values [][]any) string {
	if len(values) == 0 || len(values[0]) == 0 {
		return ""
	}
	return cellString(values[0][0])
}
