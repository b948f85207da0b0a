package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-tablesync/components/tablesync"
)

// SourcesInput filters the source listing.
type SourcesInput struct {
	EnabledOnly bool `json:"enabled_only"`
}

// SourceInfo describes a registered source and the table it writes to.
type SourceInfo struct {
	tablesync.SourceDescriptor
	Table string `json:"table"`
}

type sourceLister interface {
	GetDataSources() []tablesync.SourceDescriptor
	EnabledSources() []tablesync.SourceDescriptor
}

// SourcesQuery lists registered data sources.
type SourcesQuery struct {
	registry sourceLister
}

// NewSourcesQuery builds the query.
func NewSourcesQuery(registry sourceLister) *SourcesQuery {
	return &SourcesQuery{registry: registry}
}

var _ gocommand.Querier[SourcesInput, []SourceInfo] = (*SourcesQuery)(nil)

// Query returns the sources in registration order.
func (q *SourcesQuery) Query(_ context.Context, input SourcesInput) ([]SourceInfo, error) {
	var sources []tablesync.SourceDescriptor
	if input.EnabledOnly {
		sources = q.registry.EnabledSources()
	} else {
		sources = q.registry.GetDataSources()
	}
	out := make([]SourceInfo, 0, len(sources))
	for _, desc := range sources {
		out = append(out, SourceInfo{SourceDescriptor: desc, Table: tablesync.TableName(desc.Type)})
	}
	return out, nil
}
