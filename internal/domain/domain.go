package domain

import (
	"fmt"
	"math"
	"time"
)

// Parameter names accepted by setpoint operations.
const (
	ParamTemperature = "temperature"
	ParamHumidity    = "humidity"
	ParamCO2         = "co2"
)

// Readings is one sensor sample of the room state.
type Readings struct {
	Temperature float64   `json:"temperature"` // degrees Celsius
	Humidity    float64   `json:"humidity"`    // percent relative humidity
	CO2         float64   `json:"co2"`         // parts per million
	Timestamp   time.Time `json:"timestamp"`   // UTC sample time
}

// ActuatorState is the on/off state of the four actuators.
type ActuatorState struct {
	Heater     bool `json:"heater"`
	Cooler     bool `json:"cooler"`
	Humidifier bool `json:"humidifier"`
	Fan        bool `json:"fan"`
}

// Setpoints holds the controller targets per parameter.
type Setpoints struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	CO2         float64 `json:"co2"`
}

// Hysteresis holds the symmetric dead-band half-widths per parameter.
type Hysteresis struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	CO2         float64 `json:"co2"`
}

// DefaultSetpoints returns the out-of-the-box controller targets.
func DefaultSetpoints() Setpoints {
	return Setpoints{Temperature: 22.0, Humidity: 50.0, CO2: 800.0}
}

// DefaultHysteresis returns the out-of-the-box dead-band widths.
func DefaultHysteresis() Hysteresis {
	return Hysteresis{Temperature: 0.7, Humidity: 3.0, CO2: 50.0}
}

// Get returns the setpoint for a named parameter.
func (s Setpoints) Get(name string) (float64, error) {
	switch name {
	case ParamTemperature:
		return s.Temperature, nil
	case ParamHumidity:
		return s.Humidity, nil
	case ParamCO2:
		return s.CO2, nil
	default:
		return 0, fmt.Errorf("no such setpoint: %q", name)
	}
}

// With returns a copy of s with the named parameter replaced. The value
// must be finite; humidity must stay within [0,100] and CO2 positive.
func (s Setpoints) With(name string, value float64) (Setpoints, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return s, fmt.Errorf("setpoint %s: value must be finite", name)
	}
	switch name {
	case ParamTemperature:
		s.Temperature = value
	case ParamHumidity:
		if value < 0 || value > 100 {
			return s, fmt.Errorf("setpoint humidity: %g outside [0,100]", value)
		}
		s.Humidity = value
	case ParamCO2:
		if value <= 0 {
			return s, fmt.Errorf("setpoint co2: %g must be positive", value)
		}
		s.CO2 = value
	default:
		return s, fmt.Errorf("no such setpoint: %q", name)
	}
	return s, nil
}

// Sample is one completed control cycle: what was measured, what the
// controller decided, and run metadata for telemetry.
type Sample struct {
	Readings  Readings      `json:"readings"`
	Actuators ActuatorState `json:"actuators"`
	Comfort   string        `json:"comfort"`
	RunID     string        `json:"run_id"`
	Cycle     uint64        `json:"cycle"`
}
