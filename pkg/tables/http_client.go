package tables

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/goliatone/go-tablesync/components/tablesync"
)

// DefaultTimeout bounds each request when no HTTP client is supplied.
const DefaultTimeout = 10 * time.Second

// HTTPConfig configures the remote table client.
type HTTPConfig struct {
	tablesync.TableSyncConfig
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// HTTPClient talks to the remote table service over its REST API.
type HTTPClient struct {
	cfg    tablesync.TableSyncConfig
	client *http.Client
	logger *slog.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient validates the configuration and builds a client. A missing
// token or workspace id fails with *tablesync.ValidationError before any
// request is made.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		cfg:    cfg.WithDefaults(),
		client: client,
		logger: logger,
	}, nil
}

// CreateRows inserts rows with a single request.
func (c *HTTPClient) CreateRows(ctx context.Context, table string, rows []tablesync.TableRow) (tablesync.SyncResult, error) {
	if rows == nil {
		rows = []tablesync.TableRow{}
	}
	var resp createRowsResponse
	if err := c.do(ctx, http.MethodPost, rowsPath(table), createRowsRequest{Rows: rows}, &resp); err != nil {
		return tablesync.SyncResult{}, err
	}
	return resp.toResult(), nil
}

// ListRows fetches the rows currently stored in table.
func (c *HTTPClient) ListRows(ctx context.Context, table string) ([]tablesync.TableRow, error) {
	var resp listRowsResponse
	if err := c.do(ctx, http.MethodGet, rowsPath(table), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

// DeleteRow removes a single row by id.
func (c *HTTPClient) DeleteRow(ctx context.Context, table, rowID string) error {
	return c.do(ctx, http.MethodDelete, rowsPath(table)+"/"+url.PathEscape(rowID), nil, nil)
}

// ClearTable deletes every row one by one; the API has no bulk delete.
// Errors are logged and never returned.
func (c *HTTPClient) ClearTable(ctx context.Context, table string) {
	tablesync.ClearTable(ctx, c, table, tablesync.LoggerFromContext(ctx, c.logger))
}

// SyncTable clears table and inserts rows. Only insert errors propagate.
func (c *HTTPClient) SyncTable(ctx context.Context, table string, rows []tablesync.TableRow) (tablesync.SyncResult, error) {
	return tablesync.SyncTable(ctx, c, table, rows, tablesync.LoggerFromContext(ctx, c.logger))
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, target any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("tables: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("tables: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("x-bot-id", c.cfg.BotID)
	req.Header.Set("x-workspace-id", c.cfg.WorkspaceID)

	resp, err := c.client.Do(req)
	if err != nil {
		return &tablesync.TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return &tablesync.APIError{Status: resp.StatusCode, Body: buf.String()}
	}
	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("tables: decode response: %w", err)
	}
	return nil
}

func rowsPath(table string) string {
	return "/v1/tables/" + url.PathEscape(table) + "/rows"
}

type createRowsRequest struct {
	Rows []tablesync.TableRow `json:"rows"`
}

type createRowsResponse struct {
	Rows         []tablesync.TableRow `json:"rows"`
	InsertedRows []tablesync.TableRow `json:"insertedRows"`
	Message      string               `json:"message"`
	Errors       []string             `json:"errors"`
}

func (r createRowsResponse) toResult() tablesync.SyncResult {
	inserted := r.Rows
	if inserted == nil {
		inserted = r.InsertedRows
	}
	message := r.Message
	if message == "" {
		message = "Rows created successfully"
	}
	return tablesync.SyncResult{
		Success:      true,
		InsertedRows: inserted,
		Message:      message,
		Errors:       r.Errors,
	}
}

// listRowsResponse accepts both {"rows": [...]} and a bare array.
type listRowsResponse struct {
	Rows []tablesync.TableRow
}

func (r *listRowsResponse) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &r.Rows)
	}
	var envelope struct {
		Rows []tablesync.TableRow `json:"rows"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return err
	}
	r.Rows = envelope.Rows
	return nil
}
