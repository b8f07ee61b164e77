// Package control implements the bang-bang microclimate controller.
package control

import (
	"sync"

	"github.com/BohdanVlas/Microclimate-Sys/internal/domain"
)

// Controller drives the four actuators from sensor readings using
// per-parameter hysteresis bands. It is safe for concurrent use: the
// control loop calls Update while the HTTP API and operator console
// read status and change setpoints.
type Controller struct {
	mu        sync.RWMutex
	setpoints domain.Setpoints
	bands     domain.Hysteresis
	actuators domain.ActuatorState
}

// Status is a point-in-time snapshot of the controller.
type Status struct {
	Setpoints  domain.Setpoints     `json:"setpoints"`
	Hysteresis domain.Hysteresis    `json:"hysteresis"`
	Actuators  domain.ActuatorState `json:"actuators"`
}

// New creates a Controller with all actuators off.
func New(setpoints domain.Setpoints, bands domain.Hysteresis) *Controller {
	return &Controller{setpoints: setpoints, bands: bands}
}

// Update applies the hysteresis rules to one reading and returns the
// resulting actuator state.
//
// Temperature is double-sided: the heater engages below sp-h, the
// cooler above sp+h, and both switch off inside the band. Humidity and
// CO2 are single-sided and latch their last state inside the band,
// which is what keeps the relays from chattering.
func (c *Controller) Update(r domain.Readings) domain.ActuatorState {
	c.mu.Lock()
	defer c.mu.Unlock()

	sp, h := c.setpoints, c.bands

	switch {
	case r.Temperature < sp.Temperature-h.Temperature:
		c.actuators.Heater = true
		c.actuators.Cooler = false
	case r.Temperature > sp.Temperature+h.Temperature:
		c.actuators.Cooler = true
		c.actuators.Heater = false
	default:
		c.actuators.Heater = false
		c.actuators.Cooler = false
	}

	if r.Humidity < sp.Humidity-h.Humidity {
		c.actuators.Humidifier = true
	} else if r.Humidity > sp.Humidity+h.Humidity {
		c.actuators.Humidifier = false
	}

	if r.CO2 > sp.CO2+h.CO2 {
		c.actuators.Fan = true
	} else if r.CO2 < sp.CO2-h.CO2 {
		c.actuators.Fan = false
	}

	return c.actuators
}

// SetSetpoint changes one controller target. Unknown parameter names
// and out-of-range values are rejected.
func (c *Controller) SetSetpoint(name string, value float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	updated, err := c.setpoints.With(name, value)
	if err != nil {
		return err
	}
	c.setpoints = updated
	return nil
}

// Setpoints returns the current controller targets.
func (c *Controller) Setpoints() domain.Setpoints {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.setpoints
}

// Actuators returns the current actuator state.
func (c *Controller) Actuators() domain.ActuatorState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.actuators
}

// Status returns a consistent snapshot of setpoints, bands, and actuators.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{
		Setpoints:  c.setpoints,
		Hysteresis: c.bands,
		Actuators:  c.actuators,
	}
}

// Classify labels a reading against the current setpoints and bands.
func (c *Controller) Classify(r domain.Readings) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.ClassifyComfort(r, c.setpoints, c.bands)
}
