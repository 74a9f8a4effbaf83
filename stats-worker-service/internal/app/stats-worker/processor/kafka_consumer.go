package processor

import (
	"context"
	"encoding/json"
	"time"

	"storerating/pkg/logger"
	"storerating/pkg/metrics"
	"storerating/stats-worker-service/internal/app/stats-worker/entity"
	"storerating/stats-worker-service/internal/app/stats-worker/service"

	"github.com/segmentio/kafka-go"
)

const serviceName = "stats-worker-service"

// messageReader - часть kafka.Reader, которую использует consumer
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Stats() kafka.ReaderStats
	Close() error
}

// KafkaConsumer читает топик rating_events. Offset коммитится только после
// успешной обработки события.
type KafkaConsumer struct {
	reader     messageReader
	projection service.ProjectionServiceInterface
	topic      string
	groupID    string
	retryDelay time.Duration
	stopChan   chan struct{}
	doneChan   chan struct{}
}

func NewKafkaConsumer(
	brokers []string,
	topic string,
	groupID string,
	minBytes int,
	maxBytes int,
	projection service.ProjectionServiceInterface,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       minBytes,
		MaxBytes:       maxBytes,
		StartOffset:    kafka.FirstOffset, // новая группа строит проекцию с начала топика
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return newKafkaConsumer(reader, topic, groupID, projection)
}

func newKafkaConsumer(reader messageReader, topic, groupID string, projection service.ProjectionServiceInterface) *KafkaConsumer {
	return &KafkaConsumer{
		reader:     reader,
		projection: projection,
		topic:      topic,
		groupID:    groupID,
		retryDelay: time.Second,
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
	}
}

// Start запускает чтение в отдельной горутине
func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Str("group", c.groupID).Msg("Starting Kafka consumer")
	go c.consume(ctx)
}

// Stop дожидается окончания обработки текущего сообщения и закрывает reader
func (c *KafkaConsumer) Stop() {
	logger.Info().Msg("Stopping Kafka consumer")
	close(c.stopChan)
	<-c.doneChan
	if err := c.reader.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close Kafka reader")
	}
	logger.Info().Msg("Kafka consumer stopped")
}

func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		case <-ctx.Done():
			return
		default:
		}

		readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		message, err := c.reader.FetchMessage(readCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if readCtx.Err() == nil {
				metrics.RecordKafkaError(serviceName, c.topic, "fetch")
				logger.Error().Err(err).Msg("Error fetching message")
				if !c.wait(ctx) {
					return
				}
			}
			continue
		}

		if !c.processWithRetry(ctx, message) {
			return
		}

		if err := c.reader.CommitMessages(ctx, message); err != nil {
			metrics.RecordKafkaError(serviceName, c.topic, "commit")
			logger.Error().Err(err).Int64("offset", message.Offset).Msg("Error committing message")
		}
	}
}

// processMessage разбирает событие. Нераспознаваемое сообщение пропускается,
// иначе оно блокировало бы партицию.
func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.Event
	if err := json.Unmarshal(message.Value, &event); err != nil {
		metrics.WorkerRatingEventsProcessed.WithLabelValues("skipped").Inc()
		logger.Warn().
			Err(err).
			Int64("offset", message.Offset).
			Int("partition", message.Partition).
			Msg("Skipping malformed rating event")
		return nil
	}

	logger.Debug().
		Str("event_type", event.EventType).
		Str("store_id", event.StoreID).
		Int64("offset", message.Offset).
		Int("partition", message.Partition).
		Msg("Received rating event")

	return c.projection.Handle(ctx, &event)
}

// processWithRetry повторяет обработку сообщения, пока она не удастся.
// Следующее сообщение партиции не читается, иначе его commit сдвинул бы offset
// за необработанное событие. false означает остановку consumer.
func (c *KafkaConsumer) processWithRetry(ctx context.Context, message kafka.Message) bool {
	for attempt := 1; ; attempt++ {
		start := time.Now()
		err := c.processMessage(ctx, message)
		if err == nil {
			metrics.RecordKafkaMessageConsumed(serviceName, c.topic, c.groupID, time.Since(start))
			return true
		}

		metrics.RecordKafkaError(serviceName, c.topic, "process")
		logger.Error().
			Err(err).
			Int("attempt", attempt).
			Int64("offset", message.Offset).
			Int("partition", message.Partition).
			Msg("Error processing message, retrying")

		if !c.wait(ctx) {
			return false
		}
	}
}

// wait ждет retryDelay. false, если consumer остановлен.
func (c *KafkaConsumer) wait(ctx context.Context) bool {
	select {
	case <-time.After(c.retryDelay):
		return true
	case <-c.stopChan:
		return false
	case <-ctx.Done():
		return false
	}
}

// GetStats возвращает статистику reader
func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
