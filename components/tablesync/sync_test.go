package tablesync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type fakeStore struct {
	rows      []TableRow
	listErr   error
	deleteErr map[string]error
	createErr error
	ops       []string
	created   []TableRow
}

func (f *fakeStore) CreateRows(_ context.Context, table string, rows []TableRow) (SyncResult, error) {
	f.ops = append(f.ops, "create:"+table)
	if f.createErr != nil {
		return SyncResult{}, f.createErr
	}
	f.created = append(f.created, rows...)
	return SyncResult{Success: true, InsertedRows: rows, Message: "Rows created successfully"}, nil
}

func (f *fakeStore) ListRows(_ context.Context, table string) ([]TableRow, error) {
	f.ops = append(f.ops, "list:"+table)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows, nil
}

func (f *fakeStore) DeleteRow(_ context.Context, table, rowID string) error {
	f.ops = append(f.ops, "delete:"+rowID)
	return f.deleteErr[rowID]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClearTableDeletesRowsWithIDs(t *testing.T) {
	store := &fakeStore{rows: []TableRow{{"id": 1}, {"name": "no id"}, {"id": "b"}}}
	deleted := ClearTable(context.Background(), store, "t", discardLogger())
	if deleted != 2 {
		t.Fatalf("expected 2 deletions, got %d", deleted)
	}
	want := []string{"list:t", "delete:1", "delete:b"}
	if len(store.ops) != len(want) {
		t.Fatalf("unexpected ops %v", store.ops)
	}
	for i := range want {
		if store.ops[i] != want[i] {
			t.Fatalf("op %d: expected %s, got %s", i, want[i], store.ops[i])
		}
	}
}

func TestClearTableContinuesPastDeleteFailure(t *testing.T) {
	store := &fakeStore{
		rows:      []TableRow{{"id": "a"}, {"id": "b"}},
		deleteErr: map[string]error{"a": &APIError{Status: 500, Body: "boom"}},
	}
	if deleted := ClearTable(context.Background(), store, "t", discardLogger()); deleted != 1 {
		t.Fatalf("expected 1 deletion, got %d", deleted)
	}
}

func TestSyncTableInsertsAfterClearFailure(t *testing.T) {
	store := &fakeStore{listErr: &APIError{Status: 404, Body: "table not found"}}
	rows := []TableRow{{"a": 1}}
	result, err := SyncTable(context.Background(), store, "missing", rows, discardLogger())
	if err != nil {
		t.Fatalf("expected insert to succeed, got %v", err)
	}
	if !result.Success || len(result.InsertedRows) != 1 {
		t.Fatalf("unexpected result %#v", result)
	}
	if len(store.ops) != 2 || store.ops[0] != "list:missing" || store.ops[1] != "create:missing" {
		t.Fatalf("expected list then create, got %v", store.ops)
	}
}

func TestSyncTableClearsBeforeInsert(t *testing.T) {
	store := &fakeStore{rows: []TableRow{{"id": "old"}}}
	if _, err := SyncTable(context.Background(), store, "t", []TableRow{{"v": 1}}, discardLogger()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	want := []string{"list:t", "delete:old", "create:t"}
	for i := range want {
		if store.ops[i] != want[i] {
			t.Fatalf("op %d: expected %s, got %v", i, want[i], store.ops)
		}
	}
}

func TestSyncTablePropagatesInsertError(t *testing.T) {
	insertErr := &APIError{Status: 400, Body: "bad rows"}
	store := &fakeStore{createErr: insertErr}
	_, err := SyncTable(context.Background(), store, "t", nil, discardLogger())
	if !errors.Is(err, insertErr) {
		t.Fatalf("expected insert error, got %v", err)
	}
	apiErr, ok := IsAPI(err)
	if !ok || apiErr.Status != 400 {
		t.Fatalf("expected api error with status 400, got %v", err)
	}
}

func TestClearTableStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := &fakeStore{rows: []TableRow{{"id": "a"}}}
	if deleted := ClearTable(ctx, store, "t", discardLogger()); deleted != 0 {
		t.Fatalf("expected no deletions, got %d", deleted)
	}
}
