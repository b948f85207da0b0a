package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/goliatone/go-tablesync/components/tablesync"
)

// fakeSheets keeps tabs as plain value grids and answers the handful of
// Sheets v4 endpoints the client uses.
type fakeSheets struct {
	mu       sync.Mutex
	ids      map[string]int64
	values   map[string][][]any
	requests []string
	deny     int
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{ids: map[string]int64{}, values: map[string][][]any{}}
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/sheet-1")
	f.requests = append(f.requests, r.Method+" "+path)
	if f.deny != 0 {
		w.WriteHeader(f.deny)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": f.deny, "message": "denied"}})
		return
	}

	switch {
	case path == "" && r.Method == http.MethodGet:
		sheets := []any{}
		for title, id := range f.ids {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"sheetId": id, "title": title}})
		}
		writeJSON(w, map[string]any{"spreadsheetId": "sheet-1", "sheets": sheets})
	case path == ":batchUpdate":
		var req struct {
			Requests []struct {
				AddSheet *struct {
					Properties struct{ Title string } `json:"properties"`
				} `json:"addSheet"`
				DeleteDimension *struct {
					Range struct {
						SheetID    int64 `json:"sheetId"`
						StartIndex int   `json:"startIndex"`
						EndIndex   int   `json:"endIndex"`
					} `json:"range"`
				} `json:"deleteDimension"`
			} `json:"requests"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		replies := []any{}
		for _, item := range req.Requests {
			if item.AddSheet != nil {
				title := item.AddSheet.Properties.Title
				f.ids[title] = int64(len(f.ids) + 10)
				replies = append(replies, map[string]any{"addSheet": map[string]any{
					"properties": map[string]any{"sheetId": f.ids[title], "title": title},
				}})
			}
			if del := item.DeleteDimension; del != nil {
				for title, id := range f.ids {
					if id != del.Range.SheetID {
						continue
					}
					grid := f.values[title]
					f.values[title] = append(grid[:del.Range.StartIndex:del.Range.StartIndex], grid[del.Range.EndIndex:]...)
				}
				replies = append(replies, map[string]any{})
			}
		}
		writeJSON(w, map[string]any{"spreadsheetId": "sheet-1", "replies": replies})
	case strings.HasPrefix(path, "/values/"):
		rng := strings.TrimPrefix(path, "/values/")
		title := rangeTitle(rng)
		switch {
		case strings.HasSuffix(rng, ":append"):
			var body struct{ Values [][]any }
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.values[title] = append(f.values[title], body.Values...)
			writeJSON(w, map[string]any{})
		case strings.HasSuffix(rng, ":clear"):
			if grid := f.values[title]; len(grid) > 0 {
				f.values[title] = grid[:1]
			}
			writeJSON(w, map[string]any{})
		case r.Method == http.MethodPut:
			var body struct{ Values [][]any }
			_ = json.NewDecoder(r.Body).Decode(&body)
			grid := f.values[title]
			if len(grid) == 0 {
				grid = [][]any{nil}
			}
			grid[0] = body.Values[0]
			f.values[title] = grid
			writeJSON(w, map[string]any{})
		default:
			writeJSON(w, map[string]any{"range": rng, "values": f.values[title]})
		}
	default:
		http.NotFound(w, r)
	}
}

func rangeTitle(rng string) string {
	rng = strings.TrimPrefix(rng, "'")
	if i := strings.Index(rng, "'"); i >= 0 {
		return rng[:i]
	}
	return rng
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	srv, err := gsheets.NewService(context.Background(),
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	client, err := New(srv, "sheet-1", nil)
	require.NoError(t, err)
	next := 0
	client.newID = func() string {
		next++
		return "gen-" + strconv.Itoa(next)
	}
	return client
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(nil, "", nil); !tablesync.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewServiceRequiresCredentials(t *testing.T) {
	_, err := NewService(context.Background(), Config{SpreadsheetID: "sheet-1"})
	if !tablesync.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = NewService(context.Background(), Config{Credentials: "not base64!"})
	require.Error(t, err)
}

func TestCreateRowsCreatesSheetAndHeader(t *testing.T) {
	fake := newFakeSheets()
	client := newTestClient(t, fake)

	result, err := client.CreateRows(context.Background(), "dashboard_statsTable", []tablesync.TableRow{
		{"stat_id": 1, "title": "Visits"},
		{"id": "keep", "title": "Orders", "stat_id": 2},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.InsertedRows, 2)
	assert.Equal(t, "gen-1", result.InsertedRows[0]["id"])
	assert.Equal(t, "keep", result.InsertedRows[1]["id"])

	grid := fake.values["dashboard_statsTable"]
	require.Len(t, grid, 3)
	assert.Equal(t, []any{"id", "stat_id", "title"}, grid[0])
	assert.Equal(t, []any{"gen-1", float64(1), "Visits"}, grid[1])
	assert.Contains(t, fake.requests, "POST :batchUpdate")
}

func TestCreateRowsExtendsExistingHeader(t *testing.T) {
	fake := newFakeSheets()
	fake.ids["t"] = 3
	fake.values["t"] = [][]any{{"id", "name"}, {"a", "Ada"}}
	client := newTestClient(t, fake)

	_, err := client.CreateRows(context.Background(), "t", []tablesync.TableRow{{"id": "b", "name": "Lin", "age": 30}})
	require.NoError(t, err)
	grid := fake.values["t"]
	assert.Equal(t, []any{"id", "name", "age"}, grid[0])
	assert.Equal(t, []any{"b", "Lin", float64(30)}, grid[2])
	assert.NotContains(t, fake.requests, "POST :batchUpdate")
}

func TestListRowsMapsHeader(t *testing.T) {
	fake := newFakeSheets()
	fake.ids["t"] = 3
	fake.values["t"] = [][]any{{"id", "name", "role"}, {"a", "Ada"}, {}, {"b", "Lin", "Ops"}}
	client := newTestClient(t, fake)

	rows, err := client.ListRows(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, []tablesync.TableRow{
		{"id": "a", "name": "Ada"},
		{"id": "b", "name": "Lin", "role": "Ops"},
	}, rows)
}

func TestListRowsMissingSheetIsNotFound(t *testing.T) {
	client := newTestClient(t, newFakeSheets())
	_, err := client.ListRows(context.Background(), "missing")
	apiErr, ok := tablesync.IsAPI(err)
	require.True(t, ok, "expected api error, got %v", err)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestDeleteRowRemovesMatchingRow(t *testing.T) {
	fake := newFakeSheets()
	fake.ids["t"] = 7
	fake.values["t"] = [][]any{{"id"}, {"a"}, {"b"}, {"c"}}
	client := newTestClient(t, fake)

	require.NoError(t, client.DeleteRow(context.Background(), "t", "b"))
	assert.Equal(t, [][]any{{"id"}, {"a"}, {"c"}}, fake.values["t"])

	err := client.DeleteRow(context.Background(), "t", "zzz")
	apiErr, ok := tablesync.IsAPI(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestSyncTableReplacesRows(t *testing.T) {
	fake := newFakeSheets()
	fake.ids["t"] = 1
	fake.values["t"] = [][]any{{"id", "v"}, {"old", "1"}}
	client := newTestClient(t, fake)

	result, err := client.SyncTable(context.Background(), "t", []tablesync.TableRow{{"id": "new", "v": "2"}})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, [][]any{{"id", "v"}, {"new", "2"}}, fake.values["t"])
}

func TestClearTableOnMissingSheetIsSilent(t *testing.T) {
	fake := newFakeSheets()
	client := newTestClient(t, fake)
	client.ClearTable(context.Background(), "missing")
	for _, req := range fake.requests {
		if strings.HasSuffix(req, ":clear") {
			t.Fatalf("unexpected clear request %s", req)
		}
	}
}

func TestRemoteErrorsBecomeAPIErrors(t *testing.T) {
	fake := newFakeSheets()
	fake.deny = http.StatusForbidden
	client := newTestClient(t, fake)

	_, err := client.CreateRows(context.Background(), "t", nil)
	apiErr, ok := tablesync.IsAPI(err)
	require.True(t, ok, "expected api error, got %v", err)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "denied", apiErr.Body)
}

func TestA1QuotesTitles(t *testing.T) {
	assert.Equal(t, "'it''s'!A1", a1("it's", "A1"))
	assert.Equal(t, "'plain'", a1("plain", ""))
}
