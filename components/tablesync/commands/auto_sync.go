package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-tablesync/components/tablesync"
)

// AutoSyncInput triggers one auto-sync run on demand.
type AutoSyncInput struct {
	Report *tablesync.BulkReport `json:"-"`
}

type autoSyncTrigger interface {
	Trigger(ctx context.Context) (tablesync.BulkReport, error)
}

// AutoSyncCommand runs the auto-sync job once. It fails with
// tablesync.ErrSyncInProgress while a run is active.
type AutoSyncCommand struct {
	syncer    autoSyncTrigger
	telemetry Telemetry
}

// NewAutoSyncCommand creates the command.
func NewAutoSyncCommand(syncer autoSyncTrigger, telemetry Telemetry) *AutoSyncCommand {
	return &AutoSyncCommand{syncer: syncer, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AutoSyncInput] = (*AutoSyncCommand)(nil)

// Execute triggers the auto-syncer.
func (c *AutoSyncCommand) Execute(ctx context.Context, msg AutoSyncInput) error {
	if c.syncer == nil {
		return errors.New("auto sync command requires syncer")
	}
	report, err := c.syncer.Trigger(ctx)
	if err != nil {
		return err
	}
	if msg.Report != nil {
		*msg.Report = report
	}
	c.telemetry.Record(ctx, "tablesync.command.auto_sync", map[string]any{
		"run_id":    report.RunID,
		"succeeded": report.SuccessCount,
	})
	return nil
}
