// Package loop runs the sample-control-record cycle that ties the
// plant model, controller, and recorders together.
package loop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/BohdanVlas/Microclimate-Sys/internal/domain"
	"github.com/BohdanVlas/Microclimate-Sys/internal/observability"
)

// Sampler advances the simulated room and produces sensor readings.
type Sampler interface {
	Step(actuators domain.ActuatorState, dt float64)
	Read() domain.Readings
}

// Controller turns readings into actuator decisions.
type Controller interface {
	Update(r domain.Readings) domain.ActuatorState
	Actuators() domain.ActuatorState
	Setpoints() domain.Setpoints
	Classify(r domain.Readings) string
}

// Recorder persists a batch of samples.
type Recorder interface {
	RecordBatch(ctx context.Context, samples []domain.Sample) error
}

// Loop drives the control cycle: every sensor period it steps the plant,
// reads the sensors, updates the controller, and buffers the sample.
// Buffered samples are flushed to the recorder on an interval, when the
// buffer fills, and once more on shutdown.
type Loop struct {
	sampler  Sampler
	ctrl     Controller
	recorder Recorder
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock

	runID         string
	sensorPeriod  time.Duration
	flushInterval time.Duration
	statusPeriod  time.Duration
	bufferSize    int

	ready atomic.Bool
	cycle uint64

	mu     sync.Mutex
	latest domain.Sample
	hasRun bool

	buffer  []domain.Sample
	retryAt time.Time
	backoff time.Duration
}

// Options configures a Loop.
type Options struct {
	RunID         string
	SensorPeriod  time.Duration
	FlushInterval time.Duration
	StatusPeriod  time.Duration
	BufferSize    int
	Clock         clockwork.Clock // nil means the real clock
}

// Flush retry backoff bounds: short enough to recover quickly, long
// enough to avoid hammering a failed sink every tick.
const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// New creates a Loop from its stages and options.
func New(sampler Sampler, ctrl Controller, recorder Recorder, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Loop {
	clk := opts.Clock
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &Loop{
		sampler:       sampler,
		ctrl:          ctrl,
		recorder:      recorder,
		logger:        logger,
		metrics:       metrics,
		clock:         clk,
		runID:         opts.RunID,
		sensorPeriod:  opts.SensorPeriod,
		flushInterval: opts.FlushInterval,
		statusPeriod:  opts.StatusPeriod,
		bufferSize:    opts.BufferSize,
		backoff:       initialBackoff,
	}
}

// RunID returns the identifier attached to every sample of this run.
func (l *Loop) RunID() string { return l.runID }

// CheckReadiness returns nil once the first sample batch has been
// recorded, or an error describing why the service is not yet ready.
func (l *Loop) CheckReadiness(_ context.Context) error {
	if !l.ready.Load() {
		return errors.New("no samples recorded yet")
	}
	return nil
}

// Latest returns the most recent sample, and false before the first cycle.
func (l *Loop) Latest() (domain.Sample, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latest, l.hasRun
}

// Run executes the control cycle until the context is cancelled, then
// flushes whatever is still buffered.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("control loop started",
		"run_id", l.runID,
		"sensor_period", l.sensorPeriod,
		"flush_interval", l.flushInterval,
	)
	l.metrics.LoopRunning.Set(1)
	defer l.metrics.LoopRunning.Set(0)

	sensorTick := l.clock.NewTicker(l.sensorPeriod)
	defer sensorTick.Stop()
	flushTick := l.clock.NewTicker(l.flushInterval)
	defer flushTick.Stop()
	statusTick := l.clock.NewTicker(l.statusPeriod)
	defer statusTick.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("control loop stopping", "reason", ctx.Err())
			l.finalFlush()
			return nil

		case <-sensorTick.Chan():
			l.runCycle()
			if l.pending() >= l.bufferSize {
				l.flush(ctx)
			}

		case <-flushTick.Chan():
			l.flush(ctx)

		case <-statusTick.Chan():
			l.logStatus()
		}
	}
}

// runCycle performs one sample-update cycle and buffers the result.
func (l *Loop) runCycle() {
	// The plant evolves under the actuator state chosen last cycle.
	l.sampler.Step(l.ctrl.Actuators(), l.sensorPeriod.Seconds())

	readings := l.sampler.Read()
	actuators := l.ctrl.Update(readings)
	sample := domain.Sample{
		Readings:  readings,
		Actuators: actuators,
		Comfort:   l.ctrl.Classify(readings),
		RunID:     l.runID,
		Cycle:     l.cycle,
	}
	l.cycle++

	l.metrics.ControlCycles.Inc()
	l.metrics.ObserveSample(readings, actuators, l.ctrl.Setpoints())

	l.mu.Lock()
	l.latest = sample
	l.hasRun = true
	l.buffer = append(l.buffer, sample)
	l.trimBufferLocked()
	l.mu.Unlock()
}

// flush writes the buffered samples to the recorder, honoring the retry
// backoff after a failure. The buffer is kept on error so no samples are
// lost across transient sink outages.
func (l *Loop) flush(ctx context.Context) {
	l.mu.Lock()
	if len(l.buffer) == 0 || l.clock.Now().Before(l.retryAt) {
		l.mu.Unlock()
		return
	}
	batch := make([]domain.Sample, len(l.buffer))
	copy(batch, l.buffer)
	l.mu.Unlock()

	start := l.clock.Now()
	if err := l.recorder.RecordBatch(ctx, batch); err != nil {
		l.logger.Error("record batch failed", "error", err, "batch_size", len(batch))
		l.metrics.RecordErrors.Inc()
		l.mu.Lock()
		// The retry window opens relative to the attempt start, so a
		// slow failing sink does not stretch the schedule.
		l.retryAt = start.Add(l.backoff)
		l.backoff = nextBackoff(l.backoff)
		l.mu.Unlock()
		return
	}

	l.metrics.SamplesFlushed.Add(float64(len(batch)))
	l.metrics.FlushBatchSize.Observe(float64(len(batch)))
	l.metrics.FlushDuration.Observe(l.clock.Since(start).Seconds())
	l.ready.Store(true)

	l.mu.Lock()
	l.buffer = l.buffer[len(batch):]
	l.retryAt = time.Time{}
	l.backoff = initialBackoff
	l.mu.Unlock()
}

// finalFlush drains the buffer on shutdown with a fresh context, since
// the run context is already cancelled.
func (l *Loop) finalFlush() {
	l.mu.Lock()
	l.retryAt = time.Time{}
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	l.flush(ctx)
}

// trimBufferLocked bounds the buffer during recorder outages. Oldest
// samples go first; the drop is counted so it is visible in metrics.
func (l *Loop) trimBufferLocked() {
	limit := l.bufferSize * 10
	if limit <= 0 || len(l.buffer) <= limit {
		return
	}
	dropped := len(l.buffer) - limit
	l.buffer = l.buffer[dropped:]
	l.metrics.SamplesDropped.Add(float64(dropped))
	l.logger.Warn("sample buffer overflow, dropping oldest", "dropped", dropped)
}

func (l *Loop) pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buffer)
}

// logStatus emits the heartbeat line with the latest reading.
func (l *Loop) logStatus() {
	sample, ok := l.Latest()
	if !ok {
		return
	}
	l.logger.Info("microclimate status",
		"temperature", sample.Readings.Temperature,
		"humidity", sample.Readings.Humidity,
		"co2", sample.Readings.CO2,
		"comfort", sample.Comfort,
		"heater", sample.Actuators.Heater,
		"cooler", sample.Actuators.Cooler,
		"humidifier", sample.Actuators.Humidifier,
		"fan", sample.Actuators.Fan,
	)
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
