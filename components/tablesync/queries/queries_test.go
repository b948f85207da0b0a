package queries

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-tablesync/components/tablesync"
)

type stubLister struct {
	calls int
	table string
}

func (s *stubLister) ListRows(_ context.Context, table string) ([]tablesync.TableRow, error) {
	s.calls++
	s.table = table
	return []tablesync.TableRow{{"id": "1"}}, nil
}

type stubHistory struct {
	limit int
}

func (s *stubHistory) Recent(_ context.Context, limit int) ([]tablesync.SyncRecord, error) {
	s.limit = limit
	return []tablesync.SyncRecord{{ID: "h1"}}, nil
}

func TestListRowsQuery(t *testing.T) {
	lister := &stubLister{}
	query := NewListRowsQuery(lister)
	if _, err := query.Query(context.Background(), ListRowsInput{}); !errors.Is(err, tablesync.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty table, got %v", err)
	}
	rows, err := query.Query(context.Background(), ListRowsInput{Table: "dashboard_statsTable"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if lister.calls != 1 || lister.table != "dashboard_statsTable" || len(rows) != 1 {
		t.Fatalf("unexpected call state %#v", lister)
	}
}

func TestSourcesQuery(t *testing.T) {
	reg := tablesync.NewRegistry()
	if err := tablesync.RegisterDefaultSources(reg, tablesync.NewInMemoryEmployeeStore()); err != nil {
		t.Fatalf("register defaults: %v", err)
	}
	disabled := tablesync.SourceDescriptor{ID: "off", Type: "regions", Source: tablesync.StaticSource{Type: "regions"}}
	if err := reg.Register(disabled); err != nil {
		t.Fatalf("register: %v", err)
	}

	query := NewSourcesQuery(reg)
	all, err := query.Query(context.Background(), SourcesInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 sources, got %d", len(all))
	}
	if all[0].ID != "employees" || all[0].Table != "dashboard_employeesTable" {
		t.Fatalf("unexpected first source %#v", all[0])
	}
	if all[4].Table != "dashboard_regionsTable" {
		t.Fatalf("unexpected generic table %s", all[4].Table)
	}
	enabled, _ := query.Query(context.Background(), SourcesInput{EnabledOnly: true})
	if len(enabled) != 4 {
		t.Fatalf("expected 4 enabled sources, got %d", len(enabled))
	}
}

func TestHistoryQueryClampsLimit(t *testing.T) {
	history := &stubHistory{}
	query := NewHistoryQuery(history)
	for input, want := range map[int]int{0: 10, 3: 3, 50: 10} {
		if _, err := query.Query(context.Background(), HistoryInput{Limit: input}); err != nil {
			t.Fatalf("Query returned error: %v", err)
		}
		if history.limit != want {
			t.Fatalf("limit %d: expected %d, got %d", input, want, history.limit)
		}
	}
}
