package tablesync

import (
	"context"
	"sync"
)

var defaultAnalyticsRecords = []Record{
	{
		"id":           1,
		"pageTitle":    "Dashboard Home",
		"status":       "Online",
		"users":        1234,
		"eventCount":   5678,
		"viewsPerUser": 4.2,
		"averageTime":  "2m 34s",
		"dailyUsers":   []int{100, 120, 80, 150, 200},
	},
	{
		"id":           2,
		"pageTitle":    "Employee Management",
		"status":       "Online",
		"users":        856,
		"eventCount":   2341,
		"viewsPerUser": 3.1,
		"averageTime":  "1m 45s",
		"dailyUsers":   []int{80, 90, 95, 110, 120},
	},
}

var defaultStatRecords = []Record{
	{
		"title":    "Total Users",
		"value":    "2,341",
		"interval": "Last 30 days",
		"trend":    "up",
		"data":     []int{100, 120, 150, 180, 200, 220, 250},
	},
	{
		"title":    "Revenue",
		"value":    "$12,345",
		"interval": "Last 30 days",
		"trend":    "up",
		"data":     []int{1000, 1100, 1050, 1200, 1300, 1250, 1345},
	},
	{
		"title":    "Conversion Rate",
		"value":    "3.2%",
		"interval": "Last 30 days",
		"trend":    "down",
		"data":     []float64{3.5, 3.4, 3.3, 3.2, 3.1, 3.2, 3.2},
	},
}

var defaultSessionRecords = []Record{
	{"date": "2024-01-01", "desktop": 1200, "mobile": 800, "tablet": 200},
	{"date": "2024-01-02", "desktop": 1150, "mobile": 850, "tablet": 180},
	{"date": "2024-01-03", "desktop": 1300, "mobile": 900, "tablet": 220},
}

// DefaultSources returns the stock dashboard sources. Employees are read
// from the given store.
func DefaultSources(employees EmployeeStore) []SourceDescriptor {
	return []SourceDescriptor{
		{
			ID:          "employees",
			Name:        "Employee Data",
			Type:        DataTypeEmployees,
			Description: "Company employee information including roles, ages, and employment details",
			Enabled:     true,
			Source:      EmployeeSource{Store: employees},
		},
		{
			ID:          "analytics",
			Name:        "Page Analytics",
			Type:        DataTypeAnalytics,
			Description: "Website page analytics, user engagement, and performance metrics",
			Enabled:     true,
			Source:      StaticSource{Type: DataTypeAnalytics, Origin: "analytics-dashboard", Records: defaultAnalyticsRecords},
		},
		{
			ID:          "stats",
			Name:        "Key Statistics",
			Type:        DataTypeStats,
			Description: "Key performance indicators and statistical data",
			Enabled:     true,
			Source:      StaticSource{Type: DataTypeStats, Origin: "statistics-dashboard", Records: defaultStatRecords},
		},
		{
			ID:          "sessions",
			Name:        "Session Data",
			Type:        DataTypeSessions,
			Description: "User session data across different devices",
			Enabled:     true,
			Source:      StaticSource{Type: DataTypeSessions, Origin: "session-analytics", Records: defaultSessionRecords},
		},
	}
}

// RegisterDefaultSources adds DefaultSources to the registry.
func RegisterDefaultSources(reg *Registry, employees EmployeeStore) error {
	for _, desc := range DefaultSources(employees) {
		if err := reg.Register(desc); err != nil {
			return err
		}
	}
	return nil
}

// InMemoryEmployeeStore is a concurrency-safe employee store.
type InMemoryEmployeeStore struct {
	mu        sync.RWMutex
	employees []Employee
}

// NewInMemoryEmployeeStore seeds a store with the given employees.
func NewInMemoryEmployeeStore(employees ...Employee) *InMemoryEmployeeStore {
	return &InMemoryEmployeeStore{employees: append([]Employee(nil), employees...)}
}

// ListEmployees returns a copy of the stored employees.
func (s *InMemoryEmployeeStore) ListEmployees(context.Context) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Employee(nil), s.employees...), nil
}

// Upsert replaces the employee with the same id or appends it.
func (s *InMemoryEmployeeStore) Upsert(emp Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.employees {
		if s.employees[i].ID == emp.ID {
			s.employees[i] = emp
			return
		}
	}
	s.employees = append(s.employees, emp)
}
