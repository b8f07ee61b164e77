package recorder

import (
	"context"
	"log/slog"

	"github.com/BohdanVlas/Microclimate-Sys/internal/domain"
	"github.com/BohdanVlas/Microclimate-Sys/internal/observability"
)

// Sink is one destination for recorded samples.
type Sink interface {
	RecordBatch(ctx context.Context, samples []domain.Sample) error
	Close() error
}

// Fanout writes every batch to a primary sink and best-effort to any
// number of secondary telemetry sinks. Only the primary's error is
// returned: losing a telemetry write must not stall the control log.
type Fanout struct {
	primary   Sink
	secondary []Sink
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewFanout composes the primary sink with optional secondaries.
func NewFanout(primary Sink, logger *slog.Logger, metrics *observability.Metrics, secondary ...Sink) *Fanout {
	return &Fanout{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
		metrics:   metrics,
	}
}

// RecordBatch writes to the primary first, then to each secondary.
// Secondary failures are logged and counted but not propagated.
func (f *Fanout) RecordBatch(ctx context.Context, samples []domain.Sample) error {
	if err := f.primary.RecordBatch(ctx, samples); err != nil {
		return err
	}
	for _, s := range f.secondary {
		if err := s.RecordBatch(ctx, samples); err != nil {
			f.logger.Warn("telemetry sink write failed", "error", err, "batch_size", len(samples))
			f.metrics.RecordErrors.Inc()
		}
	}
	return nil
}

// Close closes every sink, returning the first error encountered.
func (f *Fanout) Close() error {
	err := f.primary.Close()
	for _, s := range f.secondary {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
