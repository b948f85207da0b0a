package analytics

import (
	"context"
)

// PageQuery narrows the page analytics report.
type PageQuery struct {
	Range  string
	Status string
}

// Page is one row of the page analytics report.
type Page struct {
	ID           int       `json:"id"`
	PageTitle    string    `json:"pageTitle"`
	Status       string    `json:"status"`
	Users        int       `json:"users"`
	EventCount   int       `json:"eventCount"`
	ViewsPerUser float64   `json:"viewsPerUser"`
	AverageTime  string    `json:"averageTime"`
	DailyUsers   []float64 `json:"dailyUsers"`
}

// PageClient fetches page analytics from an upstream analytics service.
type PageClient interface {
	FetchPages(ctx context.Context, query PageQuery) ([]Page, error)
}
