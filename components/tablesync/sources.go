package tablesync

import (
	"context"
	"time"
)

// DataSource produces an export on demand.
type DataSource interface {
	GetData(ctx context.Context) (DashboardDataExport, error)
}

// SourceFunc adapts a function into a DataSource.
type SourceFunc func(ctx context.Context) (DashboardDataExport, error)

// GetData calls f.
func (f SourceFunc) GetData(ctx context.Context) (DashboardDataExport, error) {
	return f(ctx)
}

// SourceDescriptor describes a registered data source.
type SourceDescriptor struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Type        DataType   `json:"type" yaml:"type"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Enabled     bool       `json:"enabled" yaml:"enabled"`
	Source      DataSource `json:"-" yaml:"-"`
}

// GetData delegates to the underlying source.
func (d SourceDescriptor) GetData(ctx context.Context) (DashboardDataExport, error) {
	if d.Source == nil {
		return DashboardDataExport{}, ErrSourceNotFound
	}
	return d.Source.GetData(ctx)
}

// StaticSource serves a fixed record set, stamping a fresh export date on
// every call.
type StaticSource struct {
	Type    DataType
	Origin  string
	Records []Record
	Clock   func() time.Time
}

// GetData returns a copy of the configured records.
func (s StaticSource) GetData(ctx context.Context) (DashboardDataExport, error) {
	if err := ctx.Err(); err != nil {
		return DashboardDataExport{}, err
	}
	clock := s.Clock
	if clock == nil {
		clock = time.Now
	}
	records := make([]Record, len(s.Records))
	for i, rec := range s.Records {
		records[i] = cloneRecord(rec)
	}
	return NewExport(s.Type, s.Origin, records, clock()), nil
}

func cloneRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

// Employee is a row of the employee store.
type Employee struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Age        int    `json:"age"`
	JoinDate   string `json:"joinDate"`
	Role       string `json:"role"`
	IsFullTime bool   `json:"isFullTime"`
}

// EmployeeStore lists employees.
type EmployeeStore interface {
	ListEmployees(ctx context.Context) ([]Employee, error)
}

// EmployeeSourceName is the metadata source of employee exports.
const EmployeeSourceName = "employee-management-system"

// EmployeeSource derives employee exports from an EmployeeStore.
type EmployeeSource struct {
	Store EmployeeStore
	Clock func() time.Time
}

// GetData lists the store and maps each employee into a record.
func (s EmployeeSource) GetData(ctx context.Context) (DashboardDataExport, error) {
	if s.Store == nil {
		return DashboardDataExport{}, ErrSourceNotFound
	}
	employees, err := s.Store.ListEmployees(ctx)
	if err != nil {
		return DashboardDataExport{}, err
	}
	records := make([]Record, 0, len(employees))
	for _, emp := range employees {
		records = append(records, Record{
			"id":         emp.ID,
			"name":       emp.Name,
			"age":        emp.Age,
			"joinDate":   emp.JoinDate,
			"role":       emp.Role,
			"isFullTime": emp.IsFullTime,
		})
	}
	clock := s.Clock
	if clock == nil {
		clock = time.Now
	}
	return NewExport(DataTypeEmployees, EmployeeSourceName, records, clock()), nil
}
