package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-tablesync/components/tablesync"
)

// SyncSourcesInput selects the sources of a bulk run. An empty list means
// every enabled source.
type SyncSourcesInput struct {
	SourceIDs []string              `json:"sources,omitempty"`
	Mode      tablesync.Mode        `json:"mode,omitempty"`
	Report    *tablesync.BulkReport `json:"-"`
}

type bulkSyncer interface {
	SyncSources(ctx context.Context, req tablesync.BulkRequest) tablesync.BulkReport
}

// SyncSourcesCommand runs a multi-source upload. Per-source failures live in
// the report; Execute only fails on invalid input.
type SyncSourcesCommand struct {
	service   bulkSyncer
	telemetry Telemetry
}

// NewSyncSourcesCommand creates the command.
func NewSyncSourcesCommand(service bulkSyncer, telemetry Telemetry) *SyncSourcesCommand {
	return &SyncSourcesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SyncSourcesInput] = (*SyncSourcesCommand)(nil)

// Execute runs the bulk upload.
func (c *SyncSourcesCommand) Execute(ctx context.Context, msg SyncSourcesInput) error {
	if c.service == nil {
		return errors.New("sync sources command requires service")
	}
	if msg.Mode != "" && !msg.Mode.Valid() {
		return fmt.Errorf("sync sources command: %w: mode must be append or sync", tablesync.ErrInvalidInput)
	}
	report := c.service.SyncSources(ctx, tablesync.BulkRequest{SourceIDs: msg.SourceIDs, Mode: msg.Mode})
	if msg.Report != nil {
		*msg.Report = report
	}
	c.telemetry.Record(ctx, "tablesync.command.sync_sources", map[string]any{
		"run_id":    report.RunID,
		"total":     report.Total,
		"succeeded": report.SuccessCount,
	})
	return nil
}
