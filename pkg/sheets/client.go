package sheets

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/goliatone/go-tablesync/components/tablesync"
)

const (
	scope    = "https://www.googleapis.com/auth/spreadsheets"
	idColumn = "id"
	// clearRange covers every data row below the header.
	clearRange = "A2:ZZ"
)

// Config selects the spreadsheet and the service account used to reach it.
// Credentials may be given inline as base64 JSON or as a file path.
type Config struct {
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	Credentials     string `mapstructure:"credentials"`
}

// Client stores each table as a tab of one spreadsheet. The first row holds
// column names and every data row carries an id column.
type Client struct {
	srv           *gsheets.Service
	spreadsheetID string
	logger        *slog.Logger
	newID         func() string
}

var _ tablesync.TableClient = (*Client)(nil)

// NewService builds an authenticated Sheets service from a service account.
func NewService(ctx context.Context, cfg Config) (*gsheets.Service, error) {
	var creds []byte
	switch {
	case cfg.Credentials != "":
		decoded, err := base64.StdEncoding.DecodeString(cfg.Credentials)
		if err != nil {
			return nil, fmt.Errorf("sheets: decode credentials: %w", err)
		}
		creds = decoded
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("sheets: read credentials: %w", err)
		}
		creds = data
	default:
		return nil, &tablesync.ValidationError{Fields: []string{"sheets.credentials"}}
	}
	jwt, err := google.JWTConfigFromJSON(creds, scope)
	if err != nil {
		return nil, fmt.Errorf("sheets: parse credentials: %w", err)
	}
	srv, err := gsheets.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("sheets: new service: %w", err)
	}
	return srv, nil
}

// New wraps srv for spreadsheetID.
func New(srv *gsheets.Service, spreadsheetID string, logger *slog.Logger) (*Client, error) {
	if spreadsheetID == "" {
		return nil, &tablesync.ValidationError{Fields: []string{"sheets.spreadsheet_id"}}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{srv: srv, spreadsheetID: spreadsheetID, logger: logger, newID: uuid.NewString}, nil
}

// CreateRows appends rows to the table tab, creating the tab and extending
// the header as needed. Rows without an id get a generated one.
func (c *Client) CreateRows(ctx context.Context, table string, rows []tablesync.TableRow) (tablesync.SyncResult, error) {
	if _, err := c.ensureSheet(ctx, table); err != nil {
		return tablesync.SyncResult{}, err
	}
	header, _, err := c.readTable(ctx, table)
	if err != nil {
		return tablesync.SyncResult{}, err
	}

	inserted := make([]tablesync.TableRow, len(rows))
	for i, row := range rows {
		copied := make(tablesync.TableRow, len(row)+1)
		for k, v := range row {
			copied[k] = v
		}
		if _, ok := copied.ID(); !ok {
			copied[idColumn] = c.newID()
		}
		inserted[i] = copied
	}

	columns, changed := mergeColumns(header, inserted)
	if changed {
		call := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, a1(table, "A1"), &gsheets.ValueRange{
			Values: [][]interface{}{toInterfaces(columns)},
		})
		if _, err := call.ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return tablesync.SyncResult{}, wrapError("update header", err)
		}
	}
	if len(inserted) > 0 {
		values := make([][]interface{}, len(inserted))
		for i, row := range inserted {
			values[i] = rowValues(columns, row)
		}
		call := c.srv.Spreadsheets.Values.Append(c.spreadsheetID, a1(table, "A1"), &gsheets.ValueRange{Values: values})
		if _, err := call.ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do(); err != nil {
			return tablesync.SyncResult{}, wrapError("append rows", err)
		}
	}
	return tablesync.SyncResult{
		Success:      true,
		InsertedRows: inserted,
		Message:      "Rows created successfully",
	}, nil
}

// ListRows returns the data rows of the table tab.
func (c *Client) ListRows(ctx context.Context, table string) ([]tablesync.TableRow, error) {
	if _, ok, err := c.sheetID(ctx, table); err != nil {
		return nil, err
	} else if !ok {
		return nil, &tablesync.APIError{Status: 404, Body: "sheet " + table + " not found"}
	}
	header, values, err := c.readTable(ctx, table)
	if err != nil {
		return nil, err
	}
	rows := make([]tablesync.TableRow, 0, len(values))
	for _, raw := range values {
		if row := toRow(header, raw); len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// DeleteRow removes the row whose id column equals rowID.
func (c *Client) DeleteRow(ctx context.Context, table, rowID string) error {
	sheetID, ok, err := c.sheetID(ctx, table)
	if err != nil {
		return err
	}
	if !ok {
		return &tablesync.APIError{Status: 404, Body: "sheet " + table + " not found"}
	}
	header, values, err := c.readTable(ctx, table)
	if err != nil {
		return err
	}
	idx := -1
	for i, raw := range values {
		if id, ok := toRow(header, raw).ID(); ok && id == rowID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &tablesync.APIError{Status: 404, Body: "row " + rowID + " not found"}
	}
	req := &gsheets.BatchUpdateSpreadsheetRequest{Requests: []*gsheets.Request{{
		DeleteDimension: &gsheets.DeleteDimensionRequest{Range: &gsheets.DimensionRange{
			SheetId:    sheetID,
			Dimension:  "ROWS",
			StartIndex: int64(idx + 1),
			EndIndex:   int64(idx + 2),
		}},
	}}}
	if _, err := c.srv.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return wrapError("delete row", err)
	}
	return nil
}

// ClearTable blanks every data row in one request. Errors are logged.
func (c *Client) ClearTable(ctx context.Context, table string) {
	logger := tablesync.LoggerFromContext(ctx, c.logger).With("table", table)
	if _, ok, err := c.sheetID(ctx, table); err != nil || !ok {
		logger.Warn("clear skipped", "error", err)
		return
	}
	call := c.srv.Spreadsheets.Values.Clear(c.spreadsheetID, a1(table, clearRange), &gsheets.ClearValuesRequest{})
	if _, err := call.Context(ctx).Do(); err != nil {
		logger.Warn("clear failed", "error", wrapError("clear", err))
	}
}

// SyncTable clears the tab and inserts rows. Only insert errors propagate.
func (c *Client) SyncTable(ctx context.Context, table string, rows []tablesync.TableRow) (tablesync.SyncResult, error) {
	c.ClearTable(ctx, table)
	return c.CreateRows(ctx, table, rows)
}

func (c *Client) sheetID(ctx context.Context, title string) (int64, bool, error) {
	doc, err := c.srv.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, false, wrapError("get spreadsheet", err)
	}
	for _, sheet := range doc.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return sheet.Properties.SheetId, true, nil
		}
	}
	return 0, false, nil
}

func (c *Client) ensureSheet(ctx context.Context, title string) (int64, error) {
	id, ok, err := c.sheetID(ctx, title)
	if err != nil || ok {
		return id, err
	}
	req := &gsheets.BatchUpdateSpreadsheetRequest{Requests: []*gsheets.Request{{
		AddSheet: &gsheets.AddSheetRequest{Properties: &gsheets.SheetProperties{Title: title}},
	}}}
	resp, err := c.srv.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return 0, wrapError("add sheet", err)
	}
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		id = resp.Replies[0].AddSheet.Properties.SheetId
	}
	c.logger.Info("sheet created", "table", title, "sheet_id", id)
	return id, nil
}

func (c *Client) readTable(ctx context.Context, table string) ([]string, [][]interface{}, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, a1(table, "")).Context(ctx).Do()
	if err != nil {
		return nil, nil, wrapError("read values", err)
	}
	if len(resp.Values) == 0 {
		return nil, nil, nil
	}
	header := make([]string, len(resp.Values[0]))
	for i, cell := range resp.Values[0] {
		header[i] = fmt.Sprint(cell)
	}
	return header, resp.Values[1:], nil
}

// a1 quotes the sheet title for A1 notation.
func a1(title, cells string) string {
	quoted := "'" + strings.ReplaceAll(title, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}

// mergeColumns keeps the existing header order and appends unseen keys,
// id first, the rest sorted.
func mergeColumns(header []string, rows []tablesync.TableRow) ([]string, bool) {
	seen := make(map[string]struct{}, len(header))
	columns := append([]string(nil), header...)
	for _, col := range header {
		seen[col] = struct{}{}
	}
	var extra []string
	for _, row := range rows {
		for key := range row {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			extra = append(extra, key)
		}
	}
	sort.Slice(extra, func(i, j int) bool {
		if extra[i] == idColumn || extra[j] == idColumn {
			return extra[i] == idColumn
		}
		return extra[i] < extra[j]
	})
	return append(columns, extra...), len(extra) > 0
}

func rowValues(columns []string, row tablesync.TableRow) []interface{} {
	out := make([]interface{}, len(columns))
	for i, col := range columns {
		if v, ok := row[col]; ok && v != nil {
			out[i] = v
		} else {
			out[i] = ""
		}
	}
	return out
}

func toRow(header []string, raw []interface{}) tablesync.TableRow {
	row := tablesync.TableRow{}
	for i, cell := range raw {
		if i >= len(header) || cell == nil || cell == "" {
			continue
		}
		row[header[i]] = cell
	}
	return row
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func wrapError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &tablesync.APIError{Status: gerr.Code, Body: gerr.Message}
	}
	return &tablesync.TransportError{Op: "sheets " + op, Err: err}
}
