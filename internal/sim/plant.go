// Package sim provides the discrete-time plant model that stands in for
// the physical room: it evolves temperature, humidity, and CO2 under
// the influence of the actuators and produces noisy sensor readings.
package sim

import (
	"math"
	"math/rand"

	"github.com/BohdanVlas/Microclimate-Sys/internal/domain"
)

// Physical constants of the simulated room. Tuned for a small insulated
// room with a cold exterior.
const (
	outsideTemp     = 5.0   // degC ambient outside the room
	heatLossCoeff   = 0.01  // fraction of the indoor/outdoor delta lost per second
	heaterPower     = 0.8   // degC/s added while the heater runs
	coolerPower     = 1.0   // degC/s removed while the cooler runs
	humidityAmbient = 40.0  // %RH the room relaxes toward
	humidityRelax   = 0.005 // relaxation rate toward ambient per second
	humidifierPower = 2.0   // %RH/s added while the humidifier runs
	co2Drift        = 2.0   // ppm/s produced by occupancy
	co2Fresh        = 400.0 // ppm of outside air pulled in by the fan
	fanExchange     = 0.3   // fraction of the CO2 delta exchanged per second
)

// Sensor read-noise standard deviations.
const (
	tempNoiseSigma = 0.05
	humNoiseSigma  = 0.2
	co2NoiseSigma  = 2.0
)

// Plant is the simulated room. It is not safe for concurrent use; the
// control loop is its only caller.
type Plant struct {
	temp     float64
	humidity float64
	co2      float64
	rng      *rand.Rand
}

// Option configures a Plant.
type Option func(*Plant)

// WithInitialState overrides the starting room state.
func WithInitialState(temp, humidity, co2 float64) Option {
	return func(p *Plant) {
		p.temp = temp
		p.humidity = humidity
		p.co2 = co2
	}
}

// WithRand injects a random source so tests are deterministic.
func WithRand(rng *rand.Rand) Option {
	return func(p *Plant) { p.rng = rng }
}

// NewPlant creates a Plant starting from a cool, under-humidified,
// slightly stale room so the controller has work to do immediately.
func NewPlant(opts ...Option) *Plant {
	p := &Plant{
		temp:     19.5,
		humidity: 45.0,
		co2:      650.0,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return p
}

// Step advances the room state by dt seconds under the given actuator state.
func (p *Plant) Step(actuators domain.ActuatorState, dt float64) {
	// Heat exchange with the exterior plus actuator contributions.
	p.temp += (outsideTemp - p.temp) * heatLossCoeff * dt
	if actuators.Heater {
		p.temp += heaterPower * dt
	}
	if actuators.Cooler {
		p.temp -= coolerPower * dt
	}

	// Humidity relaxes toward ambient; the humidifier pushes it back up.
	p.humidity += (humidityAmbient - p.humidity) * humidityRelax * dt
	if actuators.Humidifier {
		p.humidity += humidifierPower * dt
	}
	p.humidity = clamp(p.humidity, 0, 100)

	// Occupancy raises CO2; the fan exchanges room air for outside air.
	p.co2 += co2Drift * dt
	if actuators.Fan {
		p.co2 += (co2Fresh - p.co2) * fanExchange * dt
	}

	// Process noise.
	p.temp += p.uniform(-0.05, 0.05) * dt
	p.humidity += p.uniform(-0.1, 0.1) * dt
	p.co2 += p.uniform(-1.0, 1.0) * dt
}

// Read samples the sensors, applying gaussian read noise and the
// rounding the simulated hardware reports.
func (p *Plant) Read() domain.Readings {
	return domain.Readings{
		Temperature: round(p.temp+p.rng.NormFloat64()*tempNoiseSigma, 2),
		Humidity:    round(p.humidity+p.rng.NormFloat64()*humNoiseSigma, 2),
		CO2:         round(p.co2+p.rng.NormFloat64()*co2NoiseSigma, 1),
		Timestamp:   domain.Now(),
	}
}

func (p *Plant) uniform(lo, hi float64) float64 {
	return lo + p.rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func round(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
