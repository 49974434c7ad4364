package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/eventbus"
)

func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.ClientID = "labelguild"
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Partitioner = sarama.NewHashPartitioner

	p, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return p, nil
}

// Exporter copies lifecycle events from the bus to a Kafka topic, keyed by
// task so that one task's events stay on one partition.
type Exporter struct {
	eventBus *eventbus.Bus
	producer sarama.SyncProducer
	topic    string
}

func NewExporter(eventBus *eventbus.Bus, producer sarama.SyncProducer, topic string) *Exporter {
	return &Exporter{
		eventBus: eventBus,
		producer: producer,
		topic:    topic,
	}
}

func (e *Exporter) Start(ctx context.Context) {
	subID, ch := e.eventBus.Subscribe(1024, eventbus.Lossless())
	defer e.eventBus.Unsubscribe(subID)

	slog.Info("kafka exporter started", "topic", e.topic)
	for {
		select {
		case <-ctx.Done():
			slog.Info("kafka exporter stopped")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := e.Export(event); err != nil {
				slog.Error("kafka exporter: failed to export event", "event_id", event.ID, "type", event.Type, "error", err)
			}
		}
	}
}

func (e *Exporter) Export(event *apiv1.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: e.topic,
		Key:   sarama.StringEncoder(event.ResourceID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
			{Key: []byte("event_id"), Value: []byte(event.ID)},
		},
		Timestamp: event.CreatedAt,
	}

	_, _, err = e.producer.SendMessage(msg)
	return err
}

func (e *Exporter) Close() error {
	return e.producer.Close()
}
