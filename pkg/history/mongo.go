package history

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goliatone/go-tablesync/components/tablesync"
)

const (
	// DefaultDatabase is used when Config.Database is empty.
	DefaultDatabase = "tablesync"
	// DefaultCollection stores one document per table write.
	DefaultCollection = "sync_history"
)

// Collection is the subset of *mongo.Collection used by the store.
type Collection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// Config describes the Mongo connection of the history store.
type Config struct {
	URI        string        `mapstructure:"uri"`
	Database   string        `mapstructure:"database"`
	Collection string        `mapstructure:"collection"`
	Limit      int           `mapstructure:"limit"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// MongoStore persists sync records in a Mongo collection.
type MongoStore struct {
	collection Collection
	limit      int
}

var _ tablesync.HistoryStore = (*MongoStore)(nil)

// NewMongoStore wraps an existing collection.
func NewMongoStore(collection Collection, limit int) *MongoStore {
	if limit <= 0 {
		limit = tablesync.DefaultHistoryLimit
	}
	return &MongoStore{collection: collection, limit: limit}
}

// Connect dials Mongo and returns a store plus the disconnect func.
func Connect(ctx context.Context, cfg Config) (*MongoStore, func(context.Context) error, error) {
	if cfg.URI == "" {
		return nil, nil, fmt.Errorf("history: mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("history: connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("history: ping: %w", err)
	}
	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	return NewMongoStore(coll, cfg.Limit), client.Disconnect, nil
}

// Append inserts record.
func (s *MongoStore) Append(ctx context.Context, record tablesync.SyncRecord) error {
	if record.ID == "" {
		return fmt.Errorf("history: record id is required")
	}
	if _, err := s.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("history: insert record %s: %w", record.ID, err)
	}
	return nil
}

// Recent returns up to limit records ordered by finish time, newest first.
// The limit is capped at the store limit.
func (s *MongoStore) Recent(ctx context.Context, limit int) ([]tablesync.SyncRecord, error) {
	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "finished_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("history: find: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]tablesync.SyncRecord, 0, limit)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("history: decode: %w", err)
	}
	return records, nil
}
