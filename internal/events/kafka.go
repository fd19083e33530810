package events

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaBridge forwards every domain event to a Kafka topic so external
// consumers (data warehouse, alerting) see the same stream the in-process
// subscribers do. Production is fire-and-forget: a broker outage never
// affects the publishing service call.
type KafkaBridge struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
	unsub  func()
}

// NewKafkaBridge connects to the brokers and subscribes to all bus events.
// brokers is a comma-separated list.
func NewKafkaBridge(bus *Bus, brokers, topic string, logger *slog.Logger) (*KafkaBridge, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(strings.Split(brokers, ",")...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(50*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}

	bridge := &KafkaBridge{client: client, topic: topic, logger: logger}
	bridge.unsub = bus.SubscribeAll(bridge.forward)
	return bridge, nil
}

type wireEvent struct {
	Event       string          `json:"event"`
	Payload     json.RawMessage `json:"payload"`
	PublishedAt time.Time       `json:"publishedAt"`
}

func (b *KafkaBridge) forward(record Record) {
	payload, err := json.Marshal(record.Payload)
	if err != nil {
		b.logger.Error("kafka bridge: marshal payload", "event", record.Event, "error", err)
		return
	}
	value, err := json.Marshal(wireEvent{
		Event:       record.Event,
		Payload:     payload,
		PublishedAt: record.PublishedAt,
	})
	if err != nil {
		b.logger.Error("kafka bridge: marshal envelope", "event", record.Event, "error", err)
		return
	}

	rec := &kgo.Record{Topic: b.topic, Key: []byte(record.Event), Value: value}
	b.client.Produce(nil, rec, func(_ *kgo.Record, err error) {
		if err != nil {
			b.logger.Warn("kafka bridge: produce failed", "event", record.Event, "error", err)
		}
	})
}

// Close unsubscribes from the bus and flushes outstanding produce requests.
func (b *KafkaBridge) Close() {
	b.unsub()
	b.client.Close()
}
