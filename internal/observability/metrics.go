package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/BohdanVlas/Microclimate-Sys/internal/domain"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// control loop and its recorders.
type Metrics struct {
	ControlCycles  prometheus.Counter
	SamplesFlushed prometheus.Counter
	SamplesDropped prometheus.Counter
	RecordErrors   prometheus.Counter
	LoopRunning    prometheus.Gauge

	FlushDuration  prometheus.Histogram
	FlushBatchSize prometheus.Histogram

	// Live room state, exported so dashboards do not need a sink.
	Reading       *prometheus.GaugeVec // label: parameter={temperature,humidity,co2}
	Setpoint      *prometheus.GaugeVec // label: parameter={temperature,humidity,co2}
	ActuatorState *prometheus.GaugeVec // label: actuator={heater,cooler,humidifier,fan}
}

func newMetrics() *Metrics {
	return &Metrics{
		ControlCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "microclimate",
			Name:      "control_cycles_total",
			Help:      "Total completed sample-update control cycles.",
		}),
		SamplesFlushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "microclimate",
			Name:      "samples_flushed_total",
			Help:      "Total samples written to the recorders.",
		}),
		SamplesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "microclimate",
			Name:      "samples_dropped_total",
			Help:      "Samples discarded because the flush buffer overflowed during recorder outages.",
		}),
		RecordErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "microclimate",
			Name:      "record_errors_total",
			Help:      "Total failed recorder flushes.",
		}),
		LoopRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "microclimate",
			Name:      "loop_running",
			Help:      "1 when the control loop is active, 0 when shut down.",
		}),
		FlushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "microclimate",
			Name:      "flush_duration_seconds",
			Help:      "Duration of one recorder flush.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
		FlushBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "microclimate",
			Name:      "flush_batch_size",
			Help:      "Number of samples per recorder flush.",
			Buckets:   []float64{1, 5, 10, 20, 50, 100, 200, 500},
		}),
		Reading: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "microclimate",
			Name:      "reading",
			Help:      "Latest sensor reading by parameter.",
		}, []string{"parameter"}),
		Setpoint: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "microclimate",
			Name:      "setpoint",
			Help:      "Current controller setpoint by parameter.",
		}, []string{"parameter"}),
		ActuatorState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "microclimate",
			Name:      "actuator_state",
			Help:      "1 when the actuator is on, 0 when off.",
		}, []string{"actuator"}),
	}
}

// NewMetrics creates and registers all metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ControlCycles,
		m.SamplesFlushed,
		m.SamplesDropped,
		m.RecordErrors,
		m.LoopRunning,
		m.FlushDuration,
		m.FlushBatchSize,
		m.Reading,
		m.Setpoint,
		m.ActuatorState,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so
// tests can construct as many instances as they need without
// "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// ObserveSample updates the live-state gauges from one control cycle.
func (m *Metrics) ObserveSample(r domain.Readings, act domain.ActuatorState, sp domain.Setpoints) {
	m.Reading.WithLabelValues(domain.ParamTemperature).Set(r.Temperature)
	m.Reading.WithLabelValues(domain.ParamHumidity).Set(r.Humidity)
	m.Reading.WithLabelValues(domain.ParamCO2).Set(r.CO2)

	m.Setpoint.WithLabelValues(domain.ParamTemperature).Set(sp.Temperature)
	m.Setpoint.WithLabelValues(domain.ParamHumidity).Set(sp.Humidity)
	m.Setpoint.WithLabelValues(domain.ParamCO2).Set(sp.CO2)

	m.ActuatorState.WithLabelValues("heater").Set(boolGauge(act.Heater))
	m.ActuatorState.WithLabelValues("cooler").Set(boolGauge(act.Cooler))
	m.ActuatorState.WithLabelValues("humidifier").Set(boolGauge(act.Humidifier))
	m.ActuatorState.WithLabelValues("fan").Set(boolGauge(act.Fan))
}

func boolGauge(on bool) float64 {
	if on {
		return 1
	}
	return 0
}
