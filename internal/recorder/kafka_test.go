package recorder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BohdanVlas/Microclimate-Sys/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	ts := time.Date(2026, time.February, 3, 15, 10, 0, 0, time.UTC)
	sample := domain.Sample{
		Readings: domain.Readings{
			Temperature: 22.1,
			Humidity:    49.8,
			CO2:         790.0,
			Timestamp:   ts,
		},
		Actuators: domain.ActuatorState{Humidifier: true},
		Comfort:   domain.ComfortOK,
		RunID:     "a2f1c9d0",
		Cycle:     42,
	}

	msg, err := serializeToMessage(sample)
	require.NoError(t, err)

	assert.Equal(t, []byte("a2f1c9d0"), msg.Key)
	assert.Contains(t, string(msg.Value), `"comfort":"comfort"`)
	assert.Contains(t, string(msg.Value), `"cycle":42`)
	assert.Contains(t, string(msg.Value), `"humidifier":true`)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "comfort", msg.Headers[0].Key)
	assert.Equal(t, []byte(domain.ComfortOK), msg.Headers[0].Value)
	assert.Equal(t, "recorded_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2026-02-03T15:10:00Z"), msg.Headers[1].Value)
}
