package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-tablesync/components/tablesync"
)

// HistoryInput limits the number of records returned.
type HistoryInput struct {
	Limit int `json:"limit"`
}

type historyReader interface {
	Recent(ctx context.Context, limit int) ([]tablesync.SyncRecord, error)
}

// HistoryQuery returns the most recent sync records.
type HistoryQuery struct {
	history historyReader
}

// NewHistoryQuery builds the query.
func NewHistoryQuery(history historyReader) *HistoryQuery {
	return &HistoryQuery{history: history}
}

var _ gocommand.Querier[HistoryInput, []tablesync.SyncRecord] = (*HistoryQuery)(nil)

// Query returns up to input.Limit records, newest first.
func (q *HistoryQuery) Query(ctx context.Context, input HistoryInput) ([]tablesync.SyncRecord, error) {
	limit := input.Limit
	if limit <= 0 || limit > tablesync.DefaultHistoryLimit {
		limit = tablesync.DefaultHistoryLimit
	}
	return q.history.Recent(ctx, limit)
}
