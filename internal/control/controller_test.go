package control_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BohdanVlas/Microclimate-Sys/internal/control"
	"github.com/BohdanVlas/Microclimate-Sys/internal/domain"
)

func newController() *control.Controller {
	return control.New(domain.DefaultSetpoints(), domain.DefaultHysteresis())
}

func reading(temp, hum, co2 float64) domain.Readings {
	return domain.Readings{Temperature: temp, Humidity: hum, CO2: co2}
}

func TestUpdate_TemperatureBands(t *testing.T) {
	cases := []struct {
		name       string
		temp       float64
		wantHeater bool
		wantCooler bool
	}{
		{"cold room engages heater", 21.0, true, false},
		{"hot room engages cooler", 23.0, false, true},
		{"in band both off", 22.0, false, false},
		{"lower band edge off", 21.3, false, false},
		{"upper band edge off", 22.7, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newController()
			act := c.Update(reading(tc.temp, 50, 800))
			assert.Equal(t, tc.wantHeater, act.Heater)
			assert.Equal(t, tc.wantCooler, act.Cooler)
		})
	}
}

func TestUpdate_HeaterAndCoolerMutuallyExclusive(t *testing.T) {
	c := newController()

	act := c.Update(reading(15, 50, 800))
	assert.True(t, act.Heater)
	assert.False(t, act.Cooler)

	act = c.Update(reading(30, 50, 800))
	assert.True(t, act.Cooler)
	assert.False(t, act.Heater)
}

func TestUpdate_HumidifierLatchesInsideBand(t *testing.T) {
	c := newController()

	// Dry room turns the humidifier on.
	act := c.Update(reading(22, 45, 800))
	assert.True(t, act.Humidifier)

	// Back inside the band: stays on.
	act = c.Update(reading(22, 50, 800))
	assert.True(t, act.Humidifier)

	// Above the band: turns off.
	act = c.Update(reading(22, 54, 800))
	assert.False(t, act.Humidifier)

	// Inside the band again: stays off.
	act = c.Update(reading(22, 50, 800))
	assert.False(t, act.Humidifier)
}

func TestUpdate_FanLatchesInsideBand(t *testing.T) {
	c := newController()

	act := c.Update(reading(22, 50, 900))
	assert.True(t, act.Fan)

	act = c.Update(reading(22, 50, 800))
	assert.True(t, act.Fan, "fan latches until co2 drops below the band")

	act = c.Update(reading(22, 50, 700))
	assert.False(t, act.Fan)
}

func TestSetSetpoint(t *testing.T) {
	c := newController()

	require.NoError(t, c.SetSetpoint(domain.ParamTemperature, 25))
	assert.InEpsilon(t, 25.0, c.Setpoints().Temperature, 1e-9)

	// New setpoint shifts the band: 23 degC is now cold.
	act := c.Update(reading(23, 50, 800))
	assert.True(t, act.Heater)
}

func TestSetSetpoint_Rejected(t *testing.T) {
	c := newController()

	assert.Error(t, c.SetSetpoint("pressure", 1013))
	assert.Error(t, c.SetSetpoint(domain.ParamHumidity, 150))

	// Failed updates leave the setpoints untouched.
	assert.InEpsilon(t, 50.0, c.Setpoints().Humidity, 1e-9)
}

func TestStatusSnapshot(t *testing.T) {
	c := newController()
	c.Update(reading(15, 40, 900))

	st := c.Status()
	assert.Equal(t, domain.DefaultSetpoints(), st.Setpoints)
	assert.Equal(t, domain.DefaultHysteresis(), st.Hysteresis)
	assert.True(t, st.Actuators.Heater)
	assert.True(t, st.Actuators.Humidifier)
	assert.True(t, st.Actuators.Fan)
}

func TestConcurrentAccess(t *testing.T) {
	c := newController()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for _i := 0; _i < 100; _i++ {
				switch n % 3 {
				case 0:
					c.Update(reading(22, 50, 800))
				case 1:
					_ = c.SetSetpoint(domain.ParamTemperature, 21+float64(n))
				default:
					_ = c.Status()
				}
			}
		}(i)
	}
	wg.Wait()
}
