package tablesync

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultHistoryLimit is the number of sync records kept by default.
const DefaultHistoryLimit = 10

// SyncStatus is the outcome recorded for a source sync attempt.
type SyncStatus string

const (
	SyncStatusSucceeded SyncStatus = "succeeded"
	SyncStatusFailed    SyncStatus = "failed"
)

// SyncRecord is one entry of the upload history.
type SyncRecord struct {
	ID         string     `json:"id" bson:"_id"`
	RunID      string     `json:"run_id,omitempty" bson:"run_id,omitempty"`
	SourceID   string     `json:"source_id" bson:"source_id"`
	Table      string     `json:"table" bson:"table"`
	Type       DataType   `json:"type" bson:"type"`
	Mode       Mode       `json:"mode" bson:"mode"`
	Status     SyncStatus `json:"status" bson:"status"`
	RowCount   int        `json:"row_count" bson:"row_count"`
	Inserted   int        `json:"inserted" bson:"inserted"`
	Message    string     `json:"message,omitempty" bson:"message,omitempty"`
	Error      string     `json:"error,omitempty" bson:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at" bson:"started_at"`
	FinishedAt time.Time  `json:"finished_at" bson:"finished_at"`
}

// HistoryStore persists sync records.
type HistoryStore interface {
	Append(ctx context.Context, record SyncRecord) error
	Recent(ctx context.Context, limit int) ([]SyncRecord, error)
}

// InMemoryHistoryStore keeps the most recent records, newest first.
type InMemoryHistoryStore struct {
	mu      sync.RWMutex
	limit   int
	records []SyncRecord
}

// NewInMemoryHistoryStore creates a store capped at limit entries.
func NewInMemoryHistoryStore(limit int) *InMemoryHistoryStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &InMemoryHistoryStore{limit: limit}
}

// Append stores record at the head of the history.
func (s *InMemoryHistoryStore) Append(_ context.Context, record SyncRecord) error {
	if record.ID == "" {
		return fmt.Errorf("tablesync: history record id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]SyncRecord{record}, s.records...)
	if len(s.records) > s.limit {
		s.records = s.records[:s.limit]
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *InMemoryHistoryStore) Recent(_ context.Context, limit int) ([]SyncRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}
	return append([]SyncRecord(nil), s.records[:limit]...), nil
}
