package publisher

import (
	"RelationshipManager/backend/go/internal/models"
	"RelationshipManager/backend/go/pkg/logger"
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// MessageWriter 是 *kafka.Writer 中用到的部分，测试中可替换。
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventPublisher 负责把领域事件发布到 Kafka。
type EventPublisher struct {
	writer MessageWriter
	logger *logger.Logger
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(writer MessageWriter, logger *logger.Logger) *EventPublisher {
	return &EventPublisher{
		writer: writer,
		logger: logger,
	}
}

// Publish 将事件序列化为 JSON 并以事件 ID 作为 key 写入主题。
func (p *EventPublisher) Publish(ctx context.Context, evento *models.Evento) error {
	msgBytes, err := json.Marshal(evento)
	if err != nil {
		return fmt.Errorf("failed to marshal evento: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evento.ID),
		Value: msgBytes,
		Headers: []kafka.Header{
			{Key: "tipo", Value: []byte(evento.Tipo)},
		},
	})
	if err != nil {
		p.logger.WithError(models.ErrorInfo{Message: err.Error()}).WithPayload(map[string]interface{}{"evento_id": evento.ID, "tipo": evento.Tipo}).Error("Failed to write evento to Kafka")
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

// Close closes the underlying Kafka writer.
func (p *EventPublisher) Close() error {
	return p.writer.Close()
}
