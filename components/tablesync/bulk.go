package tablesync

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// BulkRequest selects the sources of a multi-source run. Explicit Sources
// win over SourceIDs; with neither, every enabled source is used.
type BulkRequest struct {
	SourceIDs []string           `json:"sources,omitempty"`
	Sources   []SourceDescriptor `json:"-"`
	Mode      Mode               `json:"mode,omitempty"`
}

// SourceResult is the outcome of one source in a bulk run.
type SourceResult struct {
	Source   string      `json:"source"`
	SourceID string      `json:"source_id"`
	Table    string      `json:"table,omitempty"`
	Success  bool        `json:"success"`
	Response *SyncResult `json:"response,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// BulkReport aggregates a multi-source run.
type BulkReport struct {
	RunID        string         `json:"run_id"`
	Mode         Mode           `json:"mode"`
	Results      []SourceResult `json:"results"`
	SuccessCount int            `json:"success_count"`
	Total        int            `json:"total"`
	Message      string         `json:"message"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
}

// Failed returns the results that did not succeed.
func (r BulkReport) Failed() []SourceResult {
	var out []SourceResult
	for _, res := range r.Results {
		if !res.Success {
			out = append(out, res)
		}
	}
	return out
}

// Log writes the run summary and one line per failed source.
func (r BulkReport) Log(logger *slog.Logger) {
	logger = normalizeLogger(logger)
	logger.Info("bulk sync summary",
		"run_id", r.RunID,
		"mode", r.Mode,
		"total", r.Total,
		"succeeded", r.SuccessCount,
		"failed", r.Total-r.SuccessCount,
		"duration_ms", r.FinishedAt.Sub(r.StartedAt).Milliseconds(),
	)
	for _, res := range r.Failed() {
		logger.Warn("source failed", "run_id", r.RunID, "source", res.SourceID, "error", res.Error)
	}
}

// SummaryMessage renders the "N/M uploads successful" line.
func SummaryMessage(succeeded, total int) string {
	return fmt.Sprintf("%d/%d uploads successful", succeeded, total)
}

// SyncSources writes each source in turn. A failing source is recorded in
// its result entry and never stops the sources after it, so the report
// always holds one result per requested source, in request order.
func (s *Service) SyncSources(ctx context.Context, req BulkRequest) BulkReport {
	mode := req.Mode
	if mode == "" {
		mode = ModeAppend
	}
	sources := req.Sources
	if len(sources) == 0 {
		if len(req.SourceIDs) > 0 {
			sources = s.opts.Sources.Resolve(req.SourceIDs)
		} else {
			sources = s.opts.Sources.EnabledSources()
		}
	}

	report := BulkReport{
		RunID:     s.opts.NewID(),
		Mode:      mode,
		Results:   make([]SourceResult, 0, len(sources)),
		Total:     len(sources),
		StartedAt: s.opts.Clock().UTC(),
	}
	logger := LoggerFromContext(ctx, s.opts.Logger).With("run_id", report.RunID)
	ctx = WithLogger(ctx, logger)

	s.emit(ctx, SyncEvent{Kind: EventRunStarted, RunID: report.RunID, Mode: mode, Message: "Starting bulk upload..."})

	for i, desc := range sources {
		progress := float64(i+1) / float64(len(sources)) * 100
		s.emit(ctx, SyncEvent{
			Kind:     EventSourceStarted,
			RunID:    report.RunID,
			SourceID: desc.ID,
			Mode:     mode,
			Progress: progress,
			Message:  fmt.Sprintf("Uploading %s...", desc.Name),
		})

		res := s.syncOne(ctx, report.RunID, desc, mode)
		report.Results = append(report.Results, res)

		event := SyncEvent{
			Kind:     EventSourceCompleted,
			RunID:    report.RunID,
			SourceID: desc.ID,
			Table:    res.Table,
			Mode:     mode,
			Progress: progress,
		}
		if res.Success {
			report.SuccessCount++
			event.Message = res.Response.Message
			event.Rows = res.Response.RowCount
		} else {
			event.Kind = EventSourceFailed
			event.Error = res.Error
		}
		s.emit(ctx, event)
	}

	report.FinishedAt = s.opts.Clock().UTC()
	report.Message = SummaryMessage(report.SuccessCount, report.Total)
	s.emit(ctx, SyncEvent{Kind: EventRunCompleted, RunID: report.RunID, Mode: mode, Progress: 100, Message: report.Message})
	s.opts.Telemetry.Record(ctx, "tablesync.bulk.completed", map[string]any{
		"run_id":    report.RunID,
		"mode":      string(mode),
		"total":     report.Total,
		"succeeded": report.SuccessCount,
	})
	report.Log(logger)
	return report
}

func (s *Service) syncOne(ctx context.Context, runID string, desc SourceDescriptor, mode Mode) SourceResult {
	res := SourceResult{Source: desc.Name, SourceID: desc.ID, Table: tableFor(desc.Type)}
	req := writeRequest{runID: runID, sourceID: desc.ID, export: DashboardDataExport{Type: desc.Type}, mode: mode}
	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		s.recordHistory(context.WithoutCancel(ctx), req, res.Table, SyncResult{}, err, s.opts.Clock())
		return res
	}
	started := s.opts.Clock()
	export, err := desc.GetData(ctx)
	if err != nil {
		res.Error = err.Error()
		s.recordHistory(ctx, req, res.Table, SyncResult{}, err, started)
		return res
	}
	req.export = export
	result, table, err := s.write(ctx, req)
	res.Table = table
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Success = true
	res.Response = &result
	return res
}
