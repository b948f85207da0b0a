package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-tablesync/components/tablesync"
)

// TableExportInput carries an export to write. Result, when set, receives
// the outcome of the write.
type TableExportInput struct {
	Export tablesync.DashboardDataExport `json:"export"`
	Result *tablesync.SyncResult         `json:"-"`
}

type exportSyncer interface {
	SyncExport(ctx context.Context, export tablesync.DashboardDataExport) (tablesync.SyncResult, error)
}

type exportUploader interface {
	UploadExport(ctx context.Context, export tablesync.DashboardDataExport) (tablesync.SyncResult, error)
}

// SyncTableCommand replaces a table's contents with the export's rows.
type SyncTableCommand struct {
	service   exportSyncer
	telemetry Telemetry
}

// NewSyncTableCommand creates the command.
func NewSyncTableCommand(service exportSyncer, telemetry Telemetry) *SyncTableCommand {
	return &SyncTableCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[TableExportInput] = (*SyncTableCommand)(nil)

// Execute clears the export's table and inserts its rows.
func (c *SyncTableCommand) Execute(ctx context.Context, msg TableExportInput) error {
	if c.service == nil {
		return errors.New("sync table command requires service")
	}
	result, err := c.service.SyncExport(ctx, msg.Export)
	if msg.Result != nil {
		*msg.Result = result
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "tablesync.command.sync_table", map[string]any{
		"type": string(msg.Export.Type),
		"rows": result.RowCount,
	})
	return nil
}

// UploadTableCommand appends the export's rows without clearing.
type UploadTableCommand struct {
	service   exportUploader
	telemetry Telemetry
}

// NewUploadTableCommand creates the command.
func NewUploadTableCommand(service exportUploader, telemetry Telemetry) *UploadTableCommand {
	return &UploadTableCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[TableExportInput] = (*UploadTableCommand)(nil)

// Execute appends the export's rows to its table.
func (c *UploadTableCommand) Execute(ctx context.Context, msg TableExportInput) error {
	if c.service == nil {
		return errors.New("upload table command requires service")
	}
	result, err := c.service.UploadExport(ctx, msg.Export)
	if msg.Result != nil {
		*msg.Result = result
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "tablesync.command.upload_table", map[string]any{
		"type": string(msg.Export.Type),
		"rows": result.RowCount,
	})
	return nil
}
