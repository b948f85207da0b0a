package tablesync

import (
	"fmt"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for created_at.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatAsTableRows converts an export into one flat row per record,
// preserving order. Every row carries data_type and created_at.
func FormatAsTableRows(export DashboardDataExport) []TableRow {
	return FormatAsTableRowsAt(export, time.Now())
}

// FormatAsTableRowsAt is FormatAsTableRows with an explicit creation time.
func FormatAsTableRowsAt(export DashboardDataExport, now time.Time) []TableRow {
	createdAt := now.UTC().Format(TimestampLayout)
	rows := make([]TableRow, 0, len(export.Data))
	for idx, record := range export.Data {
		var row TableRow
		switch export.Type {
		case DataTypeEmployees:
			row = employeeRow(record)
		case DataTypeAnalytics:
			row = analyticsRow(record)
		case DataTypeStats:
			row = statRow(idx, record)
		case DataTypeSessions:
			row = sessionRow(idx, record)
		default:
			row = genericRow(idx, record)
		}
		row["data_type"] = string(export.Type)
		row["created_at"] = createdAt
		rows = append(rows, row)
	}
	return rows
}

func employeeRow(r Record) TableRow {
	return TableRow{
		"employee_id":  r["id"],
		"name":         r["name"],
		"age":          r["age"],
		"join_date":    r["joinDate"],
		"role":         r["role"],
		"is_full_time": r["isFullTime"],
	}
}

func analyticsRow(r Record) TableRow {
	return TableRow{
		"analytics_id":   r["id"],
		"page_title":     r["pageTitle"],
		"status":         r["status"],
		"users":          r["users"],
		"event_count":    r["eventCount"],
		"views_per_user": r["viewsPerUser"],
		"average_time":   r["averageTime"],
		"daily_users":    joinNumbers(r["dailyUsers"]),
	}
}

func statRow(idx int, r Record) TableRow {
	return TableRow{
		"stat_id":     idx + 1,
		"title":       r["title"],
		"value":       r["value"],
		"interval":    r["interval"],
		"trend":       r["trend"],
		"data_points": joinNumbers(r["data"]),
	}
}

func sessionRow(idx int, r Record) TableRow {
	return TableRow{
		"session_id":     idx + 1,
		"date":           r["date"],
		"desktop":        r["desktop"],
		"mobile":         r["mobile"],
		"tablet":         r["tablet"],
		"total_sessions": sumCounts(r["desktop"], r["mobile"], r["tablet"]),
	}
}

func genericRow(idx int, r Record) TableRow {
	row := make(TableRow, len(r)+3)
	row["id"] = fmt.Sprintf("generic_%d", idx)
	for k, v := range r {
		row[k] = v
	}
	return row
}
