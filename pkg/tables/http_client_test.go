package tables

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-tablesync/components/tablesync"
)

type fakeTableServer struct {
	mu       sync.Mutex
	rows     []tablesync.TableRow
	requests []string
	headers  []http.Header
	bodies   []map[string]any
	bareList bool
	failList int
	failDel  map[string]int
}

func (f *fakeTableServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.headers = append(f.headers, r.Header.Clone())

	const prefix = "/v1/tables/dashboard_statsTable/rows"
	switch {
	case r.Method == http.MethodGet && r.URL.Path == prefix:
		if f.failList != 0 {
			http.Error(w, "table not found", f.failList)
			return
		}
		if f.bareList {
			_ = json.NewEncoder(w).Encode(f.rows)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"rows": f.rows})
	case r.Method == http.MethodPost && r.URL.Path == prefix:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.bodies = append(f.bodies, body)
		rows, _ := body["rows"].([]any)
		inserted := make([]map[string]any, 0, len(rows))
		for i, raw := range rows {
			row, _ := raw.(map[string]any)
			row["id"] = float64(100 + i)
			inserted = append(inserted, row)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"rows": inserted})
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, prefix+"/"):
		id := strings.TrimPrefix(r.URL.Path, prefix+"/")
		if status := f.failDel[id]; status != 0 {
			http.Error(w, "cannot delete", status)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewHTTPClient(HTTPConfig{
		TableSyncConfig: tablesync.TableSyncConfig{
			BotID:       "bot-1",
			Token:       "secret",
			WorkspaceID: "ws-1",
			BaseURL:     server.URL + "/",
		},
	})
	require.NoError(t, err)
	return client
}

func TestNewHTTPClientValidatesConfig(t *testing.T) {
	_, err := NewHTTPClient(HTTPConfig{TableSyncConfig: tablesync.TableSyncConfig{BotID: "bot"}})
	if !tablesync.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	assert.Contains(t, err.Error(), "token, workspace_id")
}

func TestHTTPClientCreateRows(t *testing.T) {
	server := &fakeTableServer{}
	client := newTestClient(t, server)

	result, err := client.CreateRows(context.Background(), "dashboard_statsTable", []tablesync.TableRow{{"title": "a"}})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Rows created successfully", result.Message)
	require.Len(t, result.InsertedRows, 1)
	assert.Equal(t, float64(100), result.InsertedRows[0]["id"])

	require.Len(t, server.requests, 1)
	assert.Equal(t, "POST /v1/tables/dashboard_statsTable/rows", server.requests[0])
	headers := server.headers[0]
	assert.Equal(t, "Bearer secret", headers.Get("Authorization"))
	assert.Equal(t, "bot-1", headers.Get("x-bot-id"))
	assert.Equal(t, "ws-1", headers.Get("x-workspace-id"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	rows := server.bodies[0]["rows"].([]any)
	assert.Equal(t, "a", rows[0].(map[string]any)["title"])
}

func TestHTTPClientListRowsAcceptsBareArray(t *testing.T) {
	for _, bare := range []bool{false, true} {
		server := &fakeTableServer{bareList: bare, rows: []tablesync.TableRow{{"id": "r1"}, {"id": "r2"}}}
		client := newTestClient(t, server)
		rows, err := client.ListRows(context.Background(), "dashboard_statsTable")
		require.NoError(t, err)
		assert.Len(t, rows, 2)
		assert.Empty(t, server.headers[0].Get("Content-Type"))
	}
}

func TestHTTPClientAPIError(t *testing.T) {
	server := &fakeTableServer{failList: http.StatusUnauthorized}
	client := newTestClient(t, server)
	_, err := client.ListRows(context.Background(), "dashboard_statsTable")
	apiErr, ok := tablesync.IsAPI(err)
	require.True(t, ok, "expected api error, got %v", err)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, apiErr.Body, "table not found")
}

func TestHTTPClientTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client, err := NewHTTPClient(HTTPConfig{TableSyncConfig: tablesync.TableSyncConfig{Token: "t", WorkspaceID: "w", BaseURL: baseURL}})
	require.NoError(t, err)
	_, err = client.CreateRows(context.Background(), "dashboard_statsTable", nil)
	if !tablesync.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestHTTPClientSyncTableClearsThenInserts(t *testing.T) {
	server := &fakeTableServer{
		rows:    []tablesync.TableRow{{"id": float64(1)}, {"id": float64(2)}, {"title": "no id"}},
		failDel: map[string]int{"1": http.StatusNotFound},
	}
	client := newTestClient(t, server)

	result, err := client.SyncTable(context.Background(), "dashboard_statsTable", []tablesync.TableRow{{"title": "new"}})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{
		"GET /v1/tables/dashboard_statsTable/rows",
		"DELETE /v1/tables/dashboard_statsTable/rows/1",
		"DELETE /v1/tables/dashboard_statsTable/rows/2",
		"POST /v1/tables/dashboard_statsTable/rows",
	}, server.requests)
}

func TestHTTPClientSyncTableInsertsWhenListFails(t *testing.T) {
	server := &fakeTableServer{failList: http.StatusNotFound}
	client := newTestClient(t, server)
	_, err := client.SyncTable(context.Background(), "dashboard_statsTable", []tablesync.TableRow{{"title": "x"}})
	require.NoError(t, err)
	assert.Equal(t, "POST /v1/tables/dashboard_statsTable/rows", server.requests[len(server.requests)-1])
}

func TestCreateRowsResponseFallbacks(t *testing.T) {
	var resp createRowsResponse
	require.NoError(t, json.Unmarshal([]byte(`{"insertedRows":[{"id":"a"}],"message":"ok","errors":["warn"]}`), &resp))
	result := resp.toResult()
	assert.Len(t, result.InsertedRows, 1)
	assert.Equal(t, "ok", result.Message)
	assert.Equal(t, []string{"warn"}, result.Errors)
}

func TestMockClientFailuresAndIDs(t *testing.T) {
	client := NewMockClient()
	client.Seed("t", tablesync.TableRow{"v": 1})
	rows := client.Rows("t")
	require.Len(t, rows, 1)
	id, ok := rows[0].ID()
	require.True(t, ok)

	boom := errors.New("boom")
	client.Fail("t", Failures{Delete: boom})
	assert.ErrorIs(t, client.DeleteRow(context.Background(), "t", id), boom)

	client.Fail("t", Failures{})
	require.NoError(t, client.DeleteRow(context.Background(), "t", id))
	err := client.DeleteRow(context.Background(), "t", id)
	apiErr, ok := tablesync.IsAPI(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	ops := make([]string, 0)
	for _, call := range client.Calls() {
		ops = append(ops, call.Op)
	}
	assert.Equal(t, []string{"delete", "delete", "delete"}, ops)
}
