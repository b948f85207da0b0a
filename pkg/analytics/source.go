package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-tablesync/components/tablesync"
)

// SourceOrigin is stamped on exports produced by a remote analytics source.
const SourceOrigin = "analytics-dashboard"

// NewSource adapts a PageClient into the analytics data source.
func NewSource(client PageClient, query PageQuery, clock func() time.Time) tablesync.DataSource {
	if clock == nil {
		clock = time.Now
	}
	return tablesync.SourceFunc(func(ctx context.Context) (tablesync.DashboardDataExport, error) {
		pages, err := client.FetchPages(ctx, query)
		if err != nil {
			return tablesync.DashboardDataExport{}, fmt.Errorf("analytics: fetch pages: %w", err)
		}
		records := make([]tablesync.Record, len(pages))
		for i, page := range pages {
			records[i] = tablesync.Record{
				"id":           page.ID,
				"pageTitle":    page.PageTitle,
				"status":       page.Status,
				"users":        page.Users,
				"eventCount":   page.EventCount,
				"viewsPerUser": page.ViewsPerUser,
				"averageTime":  page.AverageTime,
				"dailyUsers":   page.DailyUsers,
			}
		}
		return tablesync.NewExport(tablesync.DataTypeAnalytics, SourceOrigin, records, clock()), nil
	})
}

// Register replaces the analytics source of reg with one backed by client.
func Register(reg *tablesync.Registry, client PageClient, query PageQuery) error {
	return reg.Register(tablesync.SourceDescriptor{
		ID:          "analytics",
		Name:        "Page Analytics",
		Type:        tablesync.DataTypeAnalytics,
		Description: "Website page analytics, user engagement, and performance metrics",
		Enabled:     true,
		Source:      NewSource(client, query, nil),
	})
}
