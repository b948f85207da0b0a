package tablesync

import (
	"context"
	"time"
)

// DataType identifies the dashboard dataset carried by an export.
type DataType string

const (
	DataTypeEmployees DataType = "employees"
	DataTypeAnalytics DataType = "analytics"
	DataTypeStats     DataType = "stats"
	DataTypeSessions  DataType = "sessions"
)

// KnownDataTypes lists the dataset types with a dedicated row mapping.
func KnownDataTypes() []DataType {
	return []DataType{DataTypeEmployees, DataTypeAnalytics, DataTypeStats, DataTypeSessions}
}

// Record is a single opaque source record.
type Record map[string]any

// ExportMetadata describes where and when an export was produced.
type ExportMetadata struct {
	ExportDate   time.Time `json:"exportDate" yaml:"export_date"`
	TotalRecords int       `json:"totalRecords" yaml:"total_records"`
	Source       string    `json:"source" yaml:"source"`
}

// DashboardDataExport is an immutable snapshot of one dataset.
type DashboardDataExport struct {
	Type     DataType       `json:"type"`
	Data     []Record       `json:"data"`
	Metadata ExportMetadata `json:"metadata"`
}

// NewExport builds an export stamping the metadata from the record slice.
func NewExport(dataType DataType, source string, records []Record, exportedAt time.Time) DashboardDataExport {
	if records == nil {
		records = []Record{}
	}
	return DashboardDataExport{
		Type: dataType,
		Data: records,
		Metadata: ExportMetadata{
			ExportDate:   exportedAt.UTC(),
			TotalRecords: len(records),
			Source:       source,
		},
	}
}

// TableRow is a flat row accepted by the remote table service. Values are
// strings, numbers, booleans or nil.
type TableRow map[string]any

// ID returns the remote identifier of the row and whether it is usable for
// deletion. Empty strings, zero numbers, false and nil are not usable ids.
func (r TableRow) ID() (string, bool) {
	return rowID(r["id"])
}

// SyncResult is the outcome of one table write.
type SyncResult struct {
	Success      bool       `json:"success"`
	InsertedRows []TableRow `json:"insertedRows"`
	Message      string     `json:"message"`
	Errors       []string   `json:"errors,omitempty"`
	// RowCount is the number of formatted rows sent to the table.
	RowCount int `json:"rowCount"`
}

// Mode selects how a source is written to its table.
type Mode string

const (
	// ModeAppend inserts rows without touching existing ones.
	ModeAppend Mode = "append"
	// ModeSync clears the table before inserting rows.
	ModeSync Mode = "sync"
)

// Valid reports whether the mode is one of the supported values.
func (m Mode) Valid() bool {
	return m == ModeAppend || m == ModeSync
}

// RowCreator inserts rows in a single bulk request.
type RowCreator interface {
	CreateRows(ctx context.Context, table string, rows []TableRow) (SyncResult, error)
}

// RowLister fetches the current rows of a table.
type RowLister interface {
	ListRows(ctx context.Context, table string) ([]TableRow, error)
}

// RowDeleter removes one row by its remote id.
type RowDeleter interface {
	DeleteRow(ctx context.Context, table, rowID string) error
}

// TableClearer empties a table. Implementations never fail.
type TableClearer interface {
	ClearTable(ctx context.Context, table string)
}

// TableSyncer replaces the contents of a table with rows.
type TableSyncer interface {
	SyncTable(ctx context.Context, table string, rows []TableRow) (SyncResult, error)
}

// RowStore is the row-level surface needed to compose clear and sync.
type RowStore interface {
	RowCreator
	RowLister
	RowDeleter
}

// TableWriter is what the sync service needs from a backend.
type TableWriter interface {
	RowCreator
	TableSyncer
}

// TableClient is the full row-level and composite surface of a backend.
type TableClient interface {
	RowStore
	TableClearer
	TableSyncer
}
