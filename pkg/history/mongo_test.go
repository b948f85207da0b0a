package history_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goliatone/go-tablesync/components/tablesync"
	"github.com/goliatone/go-tablesync/pkg/history"
)

type mockCollection struct {
	insertOneFunc func(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	findFunc      func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

func (m *mockCollection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if m.insertOneFunc != nil {
		return m.insertOneFunc(ctx, document, opts...)
	}
	return &mongo.InsertOneResult{}, nil
}

func (m *mockCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, filter, opts...)
	}
	return mongo.NewCursorFromDocuments(nil, nil, nil)
}

func TestMongoStoreAppend(t *testing.T) {
	var inserted interface{}
	coll := &mockCollection{
		insertOneFunc: func(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
			inserted = document
			return &mongo.InsertOneResult{InsertedID: "r1"}, nil
		},
	}
	store := history.NewMongoStore(coll, 0)
	record := tablesync.SyncRecord{ID: "r1", SourceID: "stats", Status: tablesync.SyncStatusSucceeded}
	if err := store.Append(context.Background(), record); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	got, ok := inserted.(tablesync.SyncRecord)
	if !ok || got.ID != "r1" {
		t.Fatalf("expected SyncRecord document, got %T", inserted)
	}
	if err := store.Append(context.Background(), tablesync.SyncRecord{}); err == nil {
		t.Fatalf("expected error for record without id")
	}
}

func TestMongoStoreAppendError(t *testing.T) {
	coll := &mockCollection{
		insertOneFunc: func(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
			return nil, errors.New("write concern")
		},
	}
	err := history.NewMongoStore(coll, 0).Append(context.Background(), tablesync.SyncRecord{ID: "x"})
	if err == nil || !strings.Contains(err.Error(), "write concern") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestMongoStoreRecent(t *testing.T) {
	finished := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	var gotLimit int64
	coll := &mockCollection{
		findFunc: func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
			if len(opts) == 1 && opts[0].Limit != nil {
				gotLimit = *opts[0].Limit
			}
			docs := []interface{}{
				bson.D{{Key: "_id", Value: "b"}, {Key: "source_id", Value: "stats"}, {Key: "status", Value: "failed"}, {Key: "finished_at", Value: finished}},
				bson.D{{Key: "_id", Value: "a"}, {Key: "source_id", Value: "sessions"}, {Key: "row_count", Value: 3}},
			}
			return mongo.NewCursorFromDocuments(docs, nil, nil)
		},
	}
	store := history.NewMongoStore(coll, 5)

	records, err := store.Recent(context.Background(), 50)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if gotLimit != 5 {
		t.Fatalf("expected limit capped to 5, got %d", gotLimit)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "b" || records[0].Status != tablesync.SyncStatusFailed || !records[0].FinishedAt.Equal(finished) {
		t.Fatalf("unexpected first record %#v", records[0])
	}
	if records[1].RowCount != 3 {
		t.Fatalf("expected row count to decode, got %d", records[1].RowCount)
	}
}

func TestConnectRequiresURI(t *testing.T) {
	if _, _, err := history.Connect(context.Background(), history.Config{}); err == nil {
		t.Fatalf("expected error without uri")
	}
}
