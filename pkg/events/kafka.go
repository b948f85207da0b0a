package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/goliatone/go-tablesync/components/tablesync"
)

// DefaultTopic receives sync events when no topic is configured.
const DefaultTopic = "tablesync.events"

// KafkaHook publishes sync events to a Kafka topic, keyed by run id so a
// run's events land on one partition in order.
type KafkaHook struct {
	producer sarama.SyncProducer
	topic    string
	kinds    map[tablesync.EventKind]struct{}
}

var _ tablesync.SyncHook = (*KafkaHook)(nil)

// NewKafkaHook wraps an existing producer. With no kinds every event is
// published.
func NewKafkaHook(producer sarama.SyncProducer, topic string, kinds ...tablesync.EventKind) *KafkaHook {
	if topic == "" {
		topic = DefaultTopic
	}
	hook := &KafkaHook{producer: producer, topic: topic}
	if len(kinds) > 0 {
		hook.kinds = make(map[tablesync.EventKind]struct{}, len(kinds))
		for _, kind := range kinds {
			hook.kinds[kind] = struct{}{}
		}
	}
	return hook
}

// NewProducer dials brokers with acks from all in-sync replicas.
func NewProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("events: start producer: %w", err)
	}
	return producer, nil
}

// SyncProgress publishes event.
func (h *KafkaHook) SyncProgress(_ context.Context, event tablesync.SyncEvent) error {
	if h.kinds != nil {
		if _, ok := h.kinds[event.Kind]; !ok {
			return nil
		}
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal event: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: h.topic,
		Key:   sarama.StringEncoder(event.RunID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("kind"), Value: []byte(event.Kind)},
		},
	}
	if _, _, err := h.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("events: publish %s: %w", event.Kind, err)
	}
	return nil
}

// Close shuts the producer down.
func (h *KafkaHook) Close() error {
	return h.producer.Close()
}
