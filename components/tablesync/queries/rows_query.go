package queries

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-tablesync/components/tablesync"
)

// ListRowsInput names a remote table.
type ListRowsInput struct {
	Table string `json:"table"`
}

// ListRowsQuery reads the rows currently stored in a table.
type ListRowsQuery struct {
	lister tablesync.RowLister
}

// NewListRowsQuery builds the query.
func NewListRowsQuery(lister tablesync.RowLister) *ListRowsQuery {
	return &ListRowsQuery{lister: lister}
}

var _ gocommand.Querier[ListRowsInput, []tablesync.TableRow] = (*ListRowsQuery)(nil)

// Query lists the table rows.
func (q *ListRowsQuery) Query(ctx context.Context, input ListRowsInput) ([]tablesync.TableRow, error) {
	if q.lister == nil {
		return nil, errors.New("list rows query requires a table backend")
	}
	if input.Table == "" {
		return nil, fmt.Errorf("list rows query: %w: table name is required", tablesync.ErrInvalidInput)
	}
	return q.lister.ListRows(ctx, input.Table)
}
