package tablesync

import (
	"context"
	"log/slog"
	"time"
)

// DefaultAutoSyncInterval is used when an AutoSyncer has no interval.
const DefaultAutoSyncInterval = 15 * time.Minute

type bulkRunner interface {
	SyncSources(ctx context.Context, req BulkRequest) BulkReport
}

// AutoSyncOptions configures an AutoSyncer.
type AutoSyncOptions struct {
	Interval  time.Duration
	SourceIDs []string
	Telemetry Telemetry
	Logger    *slog.Logger
}

// AutoSyncer runs clear-then-insert syncs on a schedule or on demand. It is
// an explicit job; nothing triggers it implicitly.
type AutoSyncer struct {
	runner    bulkRunner
	interval  time.Duration
	sourceIDs []string
	guard     RunGuard
	telemetry Telemetry
	logger    *slog.Logger
}

// NewAutoSyncer builds an AutoSyncer around a bulk runner (usually *Service).
func NewAutoSyncer(runner bulkRunner, opts AutoSyncOptions) *AutoSyncer {
	if opts.Interval <= 0 {
		opts.Interval = DefaultAutoSyncInterval
	}
	return &AutoSyncer{
		runner:    runner,
		interval:  opts.Interval,
		sourceIDs: append([]string(nil), opts.SourceIDs...),
		telemetry: normalizeTelemetry(opts.Telemetry),
		logger:    normalizeLogger(opts.Logger),
	}
}

// Trigger runs one sync of the configured sources. It returns
// ErrSyncInProgress without doing anything while a run is active.
func (a *AutoSyncer) Trigger(ctx context.Context) (BulkReport, error) {
	if !a.guard.TryStart() {
		a.telemetry.Record(ctx, "tablesync.autosync.skipped", map[string]any{"reason": "in_progress"})
		return BulkReport{}, ErrSyncInProgress
	}
	defer a.guard.Done()
	return a.runner.SyncSources(ctx, BulkRequest{SourceIDs: a.sourceIDs, Mode: ModeSync}), nil
}

// Running reports whether a sync is active.
func (a *AutoSyncer) Running() bool {
	return a.guard.Running()
}

// Run syncs immediately and then every interval until ctx is done.
func (a *AutoSyncer) Run(ctx context.Context) {
	a.logger.Info("auto-sync started", "interval", a.interval, "sources", a.sourceIDs)
	a.tick(ctx)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("auto-sync stopped")
			return
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

func (a *AutoSyncer) tick(ctx context.Context) {
	report, err := a.Trigger(ctx)
	if err != nil {
		a.logger.Warn("auto-sync skipped", "error", err)
		return
	}
	a.logger.Info("auto-sync completed", "run_id", report.RunID, "message", report.Message)
}
