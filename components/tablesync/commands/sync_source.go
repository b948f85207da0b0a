package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-tablesync/components/tablesync"
)

// SyncSourceInput writes one registered source.
type SyncSourceInput struct {
	SourceID string                `json:"source_id"`
	Mode     tablesync.Mode        `json:"mode,omitempty"`
	Result   *tablesync.SyncResult `json:"-"`
}

type sourceSyncer interface {
	SyncSource(ctx context.Context, sourceID string, mode tablesync.Mode) (tablesync.SyncResult, error)
}

// SyncSourceCommand loads a source and writes it to its table.
type SyncSourceCommand struct {
	service   sourceSyncer
	telemetry Telemetry
}

// NewSyncSourceCommand creates the command.
func NewSyncSourceCommand(service sourceSyncer, telemetry Telemetry) *SyncSourceCommand {
	return &SyncSourceCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SyncSourceInput] = (*SyncSourceCommand)(nil)

// Execute syncs the source named by msg.SourceID.
func (c *SyncSourceCommand) Execute(ctx context.Context, msg SyncSourceInput) error {
	if c.service == nil {
		return errors.New("sync source command requires service")
	}
	sourceID := strings.TrimSpace(msg.SourceID)
	if sourceID == "" {
		return fmt.Errorf("sync source command: %w: source id is required", tablesync.ErrInvalidInput)
	}
	result, err := c.service.SyncSource(ctx, sourceID, msg.Mode)
	if msg.Result != nil {
		*msg.Result = result
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "tablesync.command.sync_source", map[string]any{
		"source": sourceID,
		"mode":   string(msg.Mode),
		"rows":   result.RowCount,
	})
	return nil
}
