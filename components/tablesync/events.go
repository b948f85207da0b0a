package tablesync

import (
	"context"
	"errors"
	"time"
)

// EventKind names a step of a sync run.
type EventKind string

const (
	EventRunStarted      EventKind = "started"
	EventSourceStarted   EventKind = "source.started"
	EventSourceCompleted EventKind = "source.completed"
	EventSourceFailed    EventKind = "source.failed"
	EventRunCompleted    EventKind = "completed"
)

// SyncEvent reports progress of a sync run.
type SyncEvent struct {
	Kind      EventKind `json:"kind"`
	RunID     string    `json:"run_id,omitempty"`
	SourceID  string    `json:"source_id,omitempty"`
	Table     string    `json:"table,omitempty"`
	Mode      Mode      `json:"mode,omitempty"`
	Progress  float64   `json:"progress"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	Rows      int       `json:"rows,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SyncHook receives sync events.
type SyncHook interface {
	SyncProgress(ctx context.Context, event SyncEvent) error
}

type noopSyncHook struct{}

func (noopSyncHook) SyncProgress(context.Context, SyncEvent) error { return nil }

// MultiHook fans an event out to several hooks and joins their errors.
type MultiHook []SyncHook

// SyncProgress forwards event to every hook.
func (m MultiHook) SyncProgress(ctx context.Context, event SyncEvent) error {
	var errs []error
	for _, hook := range m {
		if hook == nil {
			continue
		}
		if err := hook.SyncProgress(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
