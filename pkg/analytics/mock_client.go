package analytics

import (
	"context"
	"sync"
)

// MockClient implements PageClient using in-memory fixtures.
type MockClient struct {
	mu    sync.RWMutex
	pages []Page
	err   error
}

// NewMockClient builds a mock analytics client from the provided fixtures.
func NewMockClient(pages ...Page) *MockClient {
	return &MockClient{pages: pages}
}

// Fail makes every subsequent fetch return err.
func (c *MockClient) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// FetchPages returns the configured pages filtered by status.
func (c *MockClient) FetchPages(_ context.Context, query PageQuery) ([]Page, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.err != nil {
		return nil, c.err
	}
	out := make([]Page, 0, len(c.pages))
	for _, page := range c.pages {
		if query.Status != "" && page.Status != query.Status {
			continue
		}
		page.DailyUsers = append([]float64(nil), page.DailyUsers...)
		out = append(out, page)
	}
	return out, nil
}
