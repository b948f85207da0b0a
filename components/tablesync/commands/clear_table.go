package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-tablesync/components/tablesync"
)

// ClearTableInput names the table to empty.
type ClearTableInput struct {
	Table string `json:"table"`
}

// ClearTableCommand deletes every row of a table. Delete failures are
// logged by the backend and never returned.
type ClearTableCommand struct {
	clearer   tablesync.TableClearer
	telemetry Telemetry
}

// NewClearTableCommand creates the command.
func NewClearTableCommand(clearer tablesync.TableClearer, telemetry Telemetry) *ClearTableCommand {
	return &ClearTableCommand{clearer: clearer, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ClearTableInput] = (*ClearTableCommand)(nil)

// Execute clears the table.
func (c *ClearTableCommand) Execute(ctx context.Context, msg ClearTableInput) error {
	if c.clearer == nil {
		return errors.New("clear table command requires a table backend")
	}
	table := strings.TrimSpace(msg.Table)
	if table == "" {
		return fmt.Errorf("clear table command: %w: table name is required", tablesync.ErrInvalidInput)
	}
	c.clearer.ClearTable(ctx, table)
	c.telemetry.Record(ctx, "tablesync.command.clear_table", map[string]any{"table": table})
	return nil
}
