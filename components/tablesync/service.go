package tablesync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Options configures the sync Service. Collaborators are interfaces so
// backends, stores and hooks can be swapped per deployment.
type Options struct {
	Writer    TableWriter
	Sources   *Registry
	Locker    Locker
	History   HistoryStore
	Hook      SyncHook
	Validator RecordValidator
	Telemetry Telemetry
	Logger    *slog.Logger
	Clock     func() time.Time
	NewID     func() string
}

// Service formats exports and writes them to remote tables.
type Service struct {
	opts Options
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Sources == nil {
		opts.Sources = NewRegistry()
	}
	if opts.Locker == nil {
		opts.Locker = NewKeyedLocker()
	}
	if opts.History == nil {
		opts.History = NewInMemoryHistoryStore(DefaultHistoryLimit)
	}
	if opts.Hook == nil {
		opts.Hook = noopSyncHook{}
	}
	if opts.Validator == nil {
		opts.Validator = noopRecordValidator{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	opts.Logger = normalizeLogger(opts.Logger)
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Service{opts: opts}
}

// Registry exposes the source registry.
func (s *Service) Registry() *Registry {
	return s.opts.Sources
}

// Writer exposes the configured table backend.
func (s *Service) Writer() TableWriter {
	return s.opts.Writer
}

// SyncExport replaces the contents of the export's table with its rows.
func (s *Service) SyncExport(ctx context.Context, export DashboardDataExport) (SyncResult, error) {
	result, _, err := s.write(ctx, writeRequest{export: export, mode: ModeSync})
	return result, err
}

// UploadExport appends the export's rows to its table.
func (s *Service) UploadExport(ctx context.Context, export DashboardDataExport) (SyncResult, error) {
	result, _, err := s.write(ctx, writeRequest{export: export, mode: ModeAppend})
	return result, err
}

// SyncSource loads a registered source and writes it with the given mode.
// An empty mode means ModeSync.
func (s *Service) SyncSource(ctx context.Context, sourceID string, mode Mode) (SyncResult, error) {
	if mode == "" {
		mode = ModeSync
	}
	if !mode.Valid() {
		return SyncResult{}, fmt.Errorf("%w: unsupported mode %q", ErrInvalidInput, mode)
	}
	desc, ok := s.opts.Sources.GetDataSource(sourceID)
	if !ok {
		return SyncResult{}, fmt.Errorf("%w: %s", ErrSourceNotFound, sourceID)
	}
	started := s.opts.Clock()
	export, err := desc.GetData(ctx)
	if err != nil {
		err = fmt.Errorf("tablesync: get data for %s: %w", sourceID, err)
		req := writeRequest{sourceID: sourceID, export: DashboardDataExport{Type: desc.Type}, mode: mode}
		s.recordHistory(ctx, req, tableFor(desc.Type), SyncResult{}, err, started)
		return SyncResult{}, err
	}
	result, _, err := s.write(ctx, writeRequest{sourceID: sourceID, export: export, mode: mode})
	return result, err
}

// Recent returns the latest sync records.
func (s *Service) Recent(ctx context.Context, limit int) ([]SyncRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.opts.History.Recent(ctx, limit)
}

type writeRequest struct {
	runID    string
	sourceID string
	export   DashboardDataExport
	mode     Mode
}

func (s *Service) write(ctx context.Context, req writeRequest) (SyncResult, string, error) {
	table := TableName(req.export.Type)
	if s.opts.Writer == nil {
		return SyncResult{}, table, ErrWriterNotConfigured
	}
	started := s.opts.Clock()
	logger := LoggerFromContext(ctx, s.opts.Logger).With("table", table, "mode", req.mode)

	if req.sourceID != "" {
		if err := s.opts.Validator.ValidateRecords(req.sourceID, req.export.Data); err != nil {
			s.recordHistory(ctx, req, table, SyncResult{}, err, started)
			return SyncResult{}, table, err
		}
	}
	rows := FormatAsTableRowsAt(req.export, started)

	unlock, err := s.opts.Locker.Lock(ctx, table)
	if err != nil {
		err = fmt.Errorf("tablesync: lock table %s: %w", table, err)
		s.recordHistory(ctx, req, table, SyncResult{}, err, started)
		return SyncResult{}, table, err
	}
	defer unlock()

	var result SyncResult
	switch req.mode {
	case ModeAppend:
		result, err = s.opts.Writer.CreateRows(ctx, table, rows)
	default:
		result, err = s.opts.Writer.SyncTable(ctx, table, rows)
	}
	result.RowCount = len(rows)
	if err != nil {
		logger.Error("table write failed", "rows", len(rows), "error", err)
		s.recordHistory(ctx, req, table, result, err, started)
		return result, table, err
	}
	if req.mode != ModeAppend {
		result.Message = fmt.Sprintf("Successfully synced %d rows to table %q (existing rows cleared)", len(rows), table)
	}
	logger.Info("table written", "rows", len(rows), "inserted", len(result.InsertedRows))
	s.recordHistory(ctx, req, table, result, nil, started)

	event := "tablesync.table.synced"
	if req.mode == ModeAppend {
		event = "tablesync.table.uploaded"
	}
	s.opts.Telemetry.Record(ctx, event, map[string]any{
		"table":    table,
		"source":   req.sourceID,
		"rows":     len(rows),
		"inserted": len(result.InsertedRows),
	})
	return result, table, nil
}

// tableFor names the table of a source type, or "" when the type is unknown
// until the source is loaded.
func tableFor(dataType DataType) string {
	if dataType == "" {
		return ""
	}
	return TableName(dataType)
}

func (s *Service) recordHistory(ctx context.Context, req writeRequest, table string, result SyncResult, writeErr error, started time.Time) {
	record := SyncRecord{
		ID:         s.opts.NewID(),
		RunID:      req.runID,
		SourceID:   req.sourceID,
		Table:      table,
		Type:       req.export.Type,
		Mode:       req.mode,
		Status:     SyncStatusSucceeded,
		RowCount:   result.RowCount,
		Inserted:   len(result.InsertedRows),
		Message:    result.Message,
		StartedAt:  started.UTC(),
		FinishedAt: s.opts.Clock().UTC(),
	}
	if writeErr != nil {
		record.Status = SyncStatusFailed
		record.Error = writeErr.Error()
	}
	if err := s.opts.History.Append(ctx, record); err != nil {
		LoggerFromContext(ctx, s.opts.Logger).Warn("history append failed", "table", table, "error", err)
	}
}

func (s *Service) emit(ctx context.Context, event SyncEvent) {
	event.Timestamp = s.opts.Clock().UTC()
	if err := s.opts.Hook.SyncProgress(ctx, event); err != nil {
		LoggerFromContext(ctx, s.opts.Logger).Warn("sync hook failed", "kind", event.Kind, "error", err)
	}
}
