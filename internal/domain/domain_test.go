package domain_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BohdanVlas/Microclimate-Sys/internal/domain"
)

func TestSetpointsWith(t *testing.T) {
	sp := domain.DefaultSetpoints()

	updated, err := sp.With(domain.ParamTemperature, 24.5)
	require.NoError(t, err)
	assert.InEpsilon(t, 24.5, updated.Temperature, 1e-9)
	// original is unchanged
	assert.InEpsilon(t, 22.0, sp.Temperature, 1e-9)

	_, err = sp.With("pressure", 1013.0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such setpoint")
}

func TestSetpointsWith_RejectsInvalidValues(t *testing.T) {
	sp := domain.DefaultSetpoints()

	_, err := sp.With(domain.ParamHumidity, 120)
	assert.Error(t, err)

	_, err = sp.With(domain.ParamHumidity, -5)
	assert.Error(t, err)

	_, err = sp.With(domain.ParamCO2, 0)
	assert.Error(t, err)
}

func TestSetpointsGet(t *testing.T) {
	sp := domain.DefaultSetpoints()

	v, err := sp.Get(domain.ParamCO2)
	require.NoError(t, err)
	assert.InEpsilon(t, 800.0, v, 1e-9)

	_, err = sp.Get("voc")
	assert.Error(t, err)
}

func TestClassifyComfort(t *testing.T) {
	sp := domain.DefaultSetpoints()
	hy := domain.DefaultHysteresis()

	cases := []struct {
		name     string
		readings domain.Readings
		want     string
	}{
		{
			name:     "all on setpoint",
			readings: domain.Readings{Temperature: 22.0, Humidity: 50.0, CO2: 800.0},
			want:     domain.ComfortOK,
		},
		{
			name:     "all just inside band",
			readings: domain.Readings{Temperature: 22.6, Humidity: 52.9, CO2: 845.0},
			want:     domain.ComfortOK,
		},
		{
			name:     "temperature outside band but within twice",
			readings: domain.Readings{Temperature: 23.2, Humidity: 50.0, CO2: 800.0},
			want:     domain.ComfortMarginal,
		},
		{
			name:     "co2 far above setpoint",
			readings: domain.Readings{Temperature: 22.0, Humidity: 50.0, CO2: 1000.0},
			want:     domain.ComfortAlert,
		},
		{
			name:     "cold room dominates",
			readings: domain.Readings{Temperature: 18.0, Humidity: 50.5, CO2: 810.0},
			want:     domain.ComfortAlert,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.ClassifyComfort(tc.readings, sp, hy))
		})
	}
}

func TestClassifyComfort_ZeroBandTreatsDeviationAsAlert(t *testing.T) {
	sp := domain.DefaultSetpoints()
	hy := domain.Hysteresis{Temperature: 0, Humidity: 3.0, CO2: 50.0}

	got := domain.ClassifyComfort(domain.Readings{Temperature: 22.01, Humidity: 50, CO2: 800}, sp, hy)
	assert.Equal(t, domain.ComfortAlert, got)
}

func TestNowUsesInjectedClock(t *testing.T) {
	frozen := time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { domain.SetClock(nil) })

	assert.Equal(t, frozen, domain.Now())
}
