package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-tablesync/components/tablesync"
	"github.com/goliatone/go-tablesync/components/tablesync/commands"
	"github.com/goliatone/go-tablesync/components/tablesync/queries"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
	run   func(T)
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	if s.run != nil {
		s.run(msg)
	}
	return s.err
}

type stubQuerier[T any, R any] struct {
	last   T
	result R
	err    error
}

func (s *stubQuerier[T, R]) Query(ctx context.Context, msg T) (R, error) {
	s.last = msg
	return s.result, s.err
}

func TestHandleSyncSources(t *testing.T) {
	bulk := &stubCommander[commands.SyncSourcesInput]{run: func(in commands.SyncSourcesInput) {
		*in.Report = tablesync.BulkReport{RunID: "run-1", Message: "2/2 uploads successful"}
	}}
	api := &Handlers{API: &CommandExecutor{SyncSourcesCommander: bulk}}
	buf, _ := json.Marshal(SyncRequest{Sources: []string{"stats", "sessions"}, Mode: tablesync.ModeSync})
	req := httptest.NewRequest(http.MethodPost, "/sync", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleSyncSources(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(bulk.last.SourceIDs) != 2 || bulk.last.Mode != tablesync.ModeSync {
		t.Fatalf("unexpected input %#v", bulk.last)
	}
	var report tablesync.BulkReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Message != "2/2 uploads successful" {
		t.Fatalf("unexpected report %#v", report)
	}
}

func TestHandleSyncSourcesRejectsBadJSON(t *testing.T) {
	bulk := &stubCommander[commands.SyncSourcesInput]{}
	api := &Handlers{API: &CommandExecutor{SyncSourcesCommander: bulk}}
	req := httptest.NewRequest(http.MethodPost, "/sync", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	api.HandleSyncSources(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if bulk.calls != 0 {
		t.Fatalf("command should not run")
	}
}

func TestHandleSyncSourceErrorStatus(t *testing.T) {
	cases := map[int]error{
		http.StatusBadRequest:          &tablesync.ValidationError{Fields: []string{"token"}},
		http.StatusNotFound:            tablesync.ErrSourceNotFound,
		http.StatusBadGateway:          &tablesync.APIError{Status: 401, Body: "nope"},
		http.StatusConflict:            tablesync.ErrSyncInProgress,
		http.StatusInternalServerError: errors.New("boom"),
	}
	for want, err := range cases {
		single := &stubCommander[commands.SyncSourceInput]{err: err}
		api := &Handlers{API: &CommandExecutor{SyncSourceCommander: single}}
		req := httptest.NewRequest(http.MethodPost, "/sources/stats/sync?mode=append", nil)
		rec := httptest.NewRecorder()
		api.HandleSyncSource(rec, req, "stats")
		if rec.Code != want {
			t.Fatalf("%v: expected %d, got %d", err, want, rec.Code)
		}
		if single.last.SourceID != "stats" || single.last.Mode != tablesync.ModeAppend {
			t.Fatalf("unexpected input %#v", single.last)
		}
	}
}

func TestHandleRowsAndHistory(t *testing.T) {
	rows := &stubQuerier[queries.ListRowsInput, []tablesync.TableRow]{result: []tablesync.TableRow{{"id": "1"}}}
	history := &stubQuerier[queries.HistoryInput, []tablesync.SyncRecord]{result: []tablesync.SyncRecord{{ID: "h"}}}
	api := &Handlers{API: &CommandExecutor{RowsQuerier: rows, HistoryQuerier: history}}

	rec := httptest.NewRecorder()
	api.HandleRows(rec, httptest.NewRequest(http.MethodGet, "/tables/t/rows", nil), "t")
	if rec.Code != http.StatusOK || rows.last.Table != "t" {
		t.Fatalf("unexpected rows response %d %#v", rec.Code, rows.last)
	}

	rec = httptest.NewRecorder()
	api.HandleHistory(rec, httptest.NewRequest(http.MethodGet, "/history?limit=3", nil))
	if rec.Code != http.StatusOK || history.last.Limit != 3 {
		t.Fatalf("unexpected history response %d %#v", rec.Code, history.last)
	}
}

func TestHandleSourcesNotConfigured(t *testing.T) {
	api := &Handlers{API: &CommandExecutor{}}
	rec := httptest.NewRecorder()
	api.HandleSources(rec, httptest.NewRequest(http.MethodGet, "/sources", nil))
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", rec.Code)
	}
}

func TestParseLimit(t *testing.T) {
	for raw, want := range map[string]int{"": 0, "5": 5, "-1": 0, "x": 0} {
		if got := ParseLimit(raw); got != want {
			t.Fatalf("ParseLimit(%q) = %d, want %d", raw, got, want)
		}
	}
}

func TestServeMuxRoutes(t *testing.T) {
	single := &stubCommander[commands.SyncSourceInput]{}
	rows := &stubQuerier[queries.ListRowsInput, []tablesync.TableRow]{result: []tablesync.TableRow{}}
	mux := NewServeMux(&CommandExecutor{SyncSourceCommander: single, RowsQuerier: rows}, nil, "/api/tablesync/")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tablesync/sources/sessions/sync", nil))
	if rec.Code != http.StatusOK || single.last.SourceID != "sessions" {
		t.Fatalf("unexpected sync response %d %#v", rec.Code, single.last)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tablesync/tables/dashboard_statsTable/rows", nil))
	if rec.Code != http.StatusOK || rows.last.Table != "dashboard_statsTable" {
		t.Fatalf("unexpected rows response %d %#v", rec.Code, rows.last)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tablesync/ws", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without broadcast hook, got %d", rec.Code)
	}
}
