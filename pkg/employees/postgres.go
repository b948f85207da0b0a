package employees

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goliatone/go-tablesync/components/tablesync"
)

const listEmployeesSQL = `SELECT id, name, age, join_date, role, is_full_time FROM employees ORDER BY id`

// Querier is the part of *pgxpool.Pool used by the store.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore reads employees from a Postgres table.
type PostgresStore struct {
	db Querier
}

var _ tablesync.EmployeeStore = (*PostgresStore)(nil)

// NewPostgresStore wraps a pool or connection.
func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

// Connect opens a pool for url and verifies it with a ping.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("employees: parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("employees: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("employees: ping: %w", err)
	}
	return pool, nil
}

// ListEmployees returns every employee ordered by id.
func (s *PostgresStore) ListEmployees(ctx context.Context) ([]tablesync.Employee, error) {
	rows, err := s.db.Query(ctx, listEmployeesSQL)
	if err != nil {
		return nil, fmt.Errorf("employees: query: %w", err)
	}
	defer rows.Close()

	var out []tablesync.Employee
	for rows.Next() {
		var row employeeRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Age, &row.JoinDate, &row.Role, &row.IsFullTime); err != nil {
			return nil, fmt.Errorf("employees: scan: %w", err)
		}
		out = append(out, row.toEmployee())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("employees: rows: %w", err)
	}
	return out, nil
}

// employeeRow mirrors the table with nullable columns.
type employeeRow struct {
	ID         int32
	Name       pgtype.Text
	Age        pgtype.Int4
	JoinDate   pgtype.Date
	Role       pgtype.Text
	IsFullTime pgtype.Bool
}

func (r employeeRow) toEmployee() tablesync.Employee {
	emp := tablesync.Employee{ID: int(r.ID)}
	if r.Name.Valid {
		emp.Name = r.Name.String
	}
	if r.Age.Valid {
		emp.Age = int(r.Age.Int32)
	}
	if r.JoinDate.Valid {
		emp.JoinDate = r.JoinDate.Time.Format(time.DateOnly)
	}
	if r.Role.Valid {
		emp.Role = r.Role.String
	}
	if r.IsFullTime.Valid {
		emp.IsFullTime = r.IsFullTime.Bool
	}
	return emp
}
