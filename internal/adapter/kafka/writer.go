package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/incident-map-service/internal/config"
	"github.com/couchcryptid/incident-map-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces decoded map points to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and writes all points of one snapshot in a single
// WriteMessages call. Keys are the deterministic point IDs so consumers can
// compact the topic.
func (w *Writer) Publish(ctx context.Context, points []domain.MapPoint, refreshedAt time.Time) error {
	if len(points) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(points))
	for i := range points {
		msg, err := serializeToMessage(points[i], refreshedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d points: %w", len(msgs), err)
	}
	w.logger.Debug("points published", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a MapPoint into a Kafka message.
func serializeToMessage(point domain.MapPoint, refreshedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(point)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize map point: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(point.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "category", Value: []byte(point.Category)},
			{Key: "color", Value: []byte(point.Color)},
			{Key: "refreshed_at", Value: []byte(refreshedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
