package consumer

import (
	"RelationshipManager/backend/go/internal/models"
	"RelationshipManager/backend/go/pkg/logger"
	"context"
	"errors"
	"io"

	"github.com/segmentio/kafka-go"
)

// MessageReader 是 *kafka.Reader 中用到的部分，测试中可替换。
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventConsumer 从事件主题读取领域事件并交给处理函数。
type EventConsumer struct {
	reader MessageReader
	logger *logger.Logger
	done   chan struct{}
}

// NewEventConsumer creates a new EventConsumer reading topic with its own consumer group.
// 每个实例使用独立的 groupID，这样所有实例都能收到全部事件；只读取启动之后的新消息。
func NewEventConsumer(brokers []string, topic, groupID string, logger *logger.Logger) *EventConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
		StartOffset: kafka.LastOffset,
	})
	return NewEventConsumerWithReader(reader, logger)
}

// NewEventConsumerWithReader creates an EventConsumer over an existing reader.
func NewEventConsumerWithReader(reader MessageReader, logger *logger.Logger) *EventConsumer {
	return &EventConsumer{
		reader: reader,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start begins consuming messages until ctx is cancelled or the reader is closed.
func (c *EventConsumer) Start(ctx context.Context, handler func(kafka.Message) error) {
	go func() {
		defer close(c.done)
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, io.EOF) {
					c.logger.Info("Stopping Kafka event consumer...")
					return
				}
				c.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Error fetching message from Kafka")
				continue
			}

			if err := handler(msg); err != nil {
				c.logger.WithError(models.ErrorInfo{Message: err.Error()}).WithPayload(map[string]interface{}{
					"topic":     msg.Topic,
					"partition": msg.Partition,
					"offset":    msg.Offset,
				}).Error("Error handling Kafka message")
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
				c.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Failed to commit Kafka message")
			}
		}
	}()
}

// Done is closed once the consume loop has exited.
func (c *EventConsumer) Done() <-chan struct{} {
	return c.done
}

// Close closes the underlying Kafka reader.
func (c *EventConsumer) Close() error {
	return c.reader.Close()
}
