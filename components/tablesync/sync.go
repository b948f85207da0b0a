package tablesync

import (
	"context"
	"log/slog"
)

// ClearTable lists the table and deletes every row that has an id. Failures
// are logged and swallowed so that a table that does not exist yet never
// blocks the insert that follows. It returns the number of deleted rows.
func ClearTable(ctx context.Context, store RowStore, table string, logger *slog.Logger) int {
	logger = normalizeLogger(logger)
	rows, err := store.ListRows(ctx, table)
	if err != nil {
		logger.Warn("clear table: list rows failed", "table", table, "error", err)
		return 0
	}
	deleted := 0
	for _, row := range rows {
		id, ok := row.ID()
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			logger.Warn("clear table: interrupted", "table", table, "deleted", deleted, "error", err)
			return deleted
		}
		if err := store.DeleteRow(ctx, table, id); err != nil {
			logger.Warn("clear table: delete row failed", "table", table, "row_id", id, "error", err)
			continue
		}
		deleted++
	}
	logger.Debug("table cleared", "table", table, "listed", len(rows), "deleted", deleted)
	return deleted
}

// SyncTable clears the table and inserts rows. Only the insert error is
// returned.
func SyncTable(ctx context.Context, store RowStore, table string, rows []TableRow, logger *slog.Logger) (SyncResult, error) {
	ClearTable(ctx, store, table, logger)
	return store.CreateRows(ctx, table, rows)
}

func normalizeLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
