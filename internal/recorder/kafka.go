package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/BohdanVlas/Microclimate-Sys/internal/config"
	"github.com/BohdanVlas/Microclimate-Sys/internal/domain"
)

// Kafka publishes samples to a telemetry topic.
type Kafka struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewKafka creates a Kafka producer for the configured telemetry topic.
func NewKafka(cfg *config.Config, logger *slog.Logger) *Kafka {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
	return &Kafka{writer: w, logger: logger}
}

// RecordBatch serializes and publishes the samples in a single
// WriteMessages call for efficiency.
func (k *Kafka) RecordBatch(ctx context.Context, samples []domain.Sample) error {
	if len(samples) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(samples))
	for i := range samples {
		msg, err := serializeToMessage(samples[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return k.writer.WriteMessages(ctx, msgs...)
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}

// serializeToMessage marshals a sample into a Kafka message. The key is
// the run ID so one run's samples land on one partition in order.
func serializeToMessage(s domain.Sample) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize sample: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(s.RunID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "comfort", Value: []byte(s.Comfort)},
			{Key: "recorded_at", Value: []byte(s.Readings.Timestamp.UTC().Format(time.RFC3339))},
		},
	}, nil
}
