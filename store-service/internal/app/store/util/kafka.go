package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storerating/pkg/metrics"
	"storerating/store-service/internal/app/store/entity"

	"github.com/segmentio/kafka-go"
)

// messageWriter - часть kafka.Writer, которую использует producer
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer публикует события оценок и магазинов
type KafkaProducer struct {
	writer messageWriter
	topic  string
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaProducer{writer: writer, topic: topic}
}

// Publish сериализует событие в JSON. Ключ - store_id, Hash балансировщик
// отправляет события одного магазина в одну партицию.
func (p *KafkaProducer) Publish(ctx context.Context, event entity.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	timer := metrics.NewKafkaProduceTimer(serviceName, p.topic)
	message := kafka.Message{
		Key:   []byte(event.StoreID),
		Value: value,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		timer.Error()
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	timer.Success()
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
