package tables

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/goliatone/go-tablesync/components/tablesync"
)

// Failures injects errors per operation into a MockClient. A nil entry
// means the operation succeeds.
type Failures struct {
	Create error
	List   error
	Delete error
}

// Call records one operation made against a MockClient.
type Call struct {
	Op    string
	Table string
	RowID string
	Rows  int
}

// MockClient implements Client with in-memory tables. Inserted rows get
// sequential ids so clear and sync behave like the remote service.
type MockClient struct {
	mu       sync.RWMutex
	tables   map[string][]tablesync.TableRow
	nextID   int
	failures map[string]Failures
	calls    []Call
	logger   *slog.Logger
}

var _ Client = (*MockClient)(nil)

// NewMockClient builds an empty mock backend.
func NewMockClient() *MockClient {
	return &MockClient{
		tables:   map[string][]tablesync.TableRow{},
		failures: map[string]Failures{},
		logger:   slog.Default(),
	}
}

// Fail configures the failures returned for table.
func (c *MockClient) Fail(table string, failures Failures) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[table] = failures
}

// Seed replaces the contents of table, assigning ids to rows without one.
func (c *MockClient) Seed(table string, rows ...tablesync.TableRow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[table] = c.assignIDs(rows)
}

// Rows returns a copy of the stored rows of table.
func (c *MockClient) Rows(table string) []tablesync.TableRow {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneRows(c.tables[table])
}

// Calls returns the recorded operations in order.
func (c *MockClient) Calls() []Call {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Call(nil), c.calls...)
}

// CreateRows appends rows to table.
func (c *MockClient) CreateRows(ctx context.Context, table string, rows []tablesync.TableRow) (tablesync.SyncResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Op: "create", Table: table, Rows: len(rows)})
	if err := ctx.Err(); err != nil {
		return tablesync.SyncResult{}, &tablesync.TransportError{Op: "create", Err: err}
	}
	if err := c.failures[table].Create; err != nil {
		return tablesync.SyncResult{}, err
	}
	inserted := c.assignIDs(rows)
	c.tables[table] = append(c.tables[table], inserted...)
	return tablesync.SyncResult{
		Success:      true,
		InsertedRows: cloneRows(inserted),
		Message:      "Rows created successfully",
	}, nil
}

// ListRows returns the rows of table.
func (c *MockClient) ListRows(ctx context.Context, table string) ([]tablesync.TableRow, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Op: "list", Table: table})
	if err := ctx.Err(); err != nil {
		return nil, &tablesync.TransportError{Op: "list", Err: err}
	}
	if err := c.failures[table].List; err != nil {
		return nil, err
	}
	return cloneRows(c.tables[table]), nil
}

// DeleteRow removes the row whose id matches rowID.
func (c *MockClient) DeleteRow(ctx context.Context, table, rowID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Op: "delete", Table: table, RowID: rowID})
	if err := ctx.Err(); err != nil {
		return &tablesync.TransportError{Op: "delete", Err: err}
	}
	if err := c.failures[table].Delete; err != nil {
		return err
	}
	rows := c.tables[table]
	for i, row := range rows {
		if id, ok := row.ID(); ok && id == rowID {
			c.tables[table] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return &tablesync.APIError{Status: 404, Body: "row not found"}
}

// ClearTable removes every row of table, logging failures.
func (c *MockClient) ClearTable(ctx context.Context, table string) {
	tablesync.ClearTable(ctx, c, table, tablesync.LoggerFromContext(ctx, c.logger))
}

// SyncTable clears table and inserts rows.
func (c *MockClient) SyncTable(ctx context.Context, table string, rows []tablesync.TableRow) (tablesync.SyncResult, error) {
	return tablesync.SyncTable(ctx, c, table, rows, tablesync.LoggerFromContext(ctx, c.logger))
}

func (c *MockClient) assignIDs(rows []tablesync.TableRow) []tablesync.TableRow {
	out := cloneRows(rows)
	for _, row := range out {
		if _, ok := row.ID(); ok {
			continue
		}
		c.nextID++
		row["id"] = strconv.Itoa(c.nextID)
	}
	return out
}

func cloneRows(rows []tablesync.TableRow) []tablesync.TableRow {
	out := make([]tablesync.TableRow, len(rows))
	for i, row := range rows {
		copied := make(tablesync.TableRow, len(row))
		for k, v := range row {
			copied[k] = v
		}
		out[i] = copied
	}
	return out
}
