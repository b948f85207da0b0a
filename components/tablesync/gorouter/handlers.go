package gorouter

import (
	"context"

	"github.com/goliatone/go-tablesync/components/tablesync"
	"github.com/goliatone/go-tablesync/components/tablesync/commands"
	"github.com/goliatone/go-tablesync/components/tablesync/httpapi"
)

// runBulk executes a bulk sync. A non-empty modeOverride (query string) wins
// over the body.
func runBulk(ctx context.Context, api httpapi.Executor, req httpapi.SyncRequest, modeOverride string) (tablesync.BulkReport, error) {
	if modeOverride != "" {
		req.Mode = tablesync.Mode(modeOverride)
	}
	var report tablesync.BulkReport
	err := api.SyncSources(ctx, commands.SyncSourcesInput{SourceIDs: req.Sources, Mode: req.Mode, Report: &report})
	return report, err
}

func runSource(ctx context.Context, api httpapi.Executor, sourceID string, req httpapi.SyncRequest, modeOverride string) (tablesync.SyncResult, error) {
	if modeOverride != "" {
		req.Mode = tablesync.Mode(modeOverride)
	}
	var result tablesync.SyncResult
	err := api.SyncSource(ctx, commands.SyncSourceInput{SourceID: sourceID, Mode: req.Mode, Result: &result})
	return result, err
}
