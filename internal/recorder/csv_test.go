package recorder

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BohdanVlas/Microclimate-Sys/internal/domain"
)

func testSample(ts time.Time) domain.Sample {
	return domain.Sample{
		Readings: domain.Readings{
			Temperature: 21.37,
			Humidity:    48.2,
			CO2:         812.5,
			Timestamp:   ts,
		},
		Actuators: domain.ActuatorState{Heater: true, Fan: true},
		Comfort:   domain.ComfortOK,
		RunID:     "run-1",
		Cycle:     7,
	}
}

func readLog(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSV_WritesHeaderOnCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")

	c, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	rows := readLog(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, csvHeader, rows[0])
}

func TestCSV_RecordBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")

	c, err := NewCSV(path)
	require.NoError(t, err)

	ts := time.Date(2026, time.February, 3, 12, 30, 0, 0, time.UTC)
	second := testSample(ts.Add(time.Second))
	second.Actuators = domain.ActuatorState{Cooler: true, Humidifier: true}

	require.NoError(t, c.RecordBatch(context.Background(), []domain.Sample{testSample(ts), second}))
	require.NoError(t, c.Close())

	rows := readLog(t, path)
	require.Len(t, rows, 3)

	want := [][]string{
		{"2026-02-03T12:30:00Z", "21.37", "48.2", "812.5", "1", "0", "0", "1"},
		{"2026-02-03T12:30:01Z", "21.37", "48.2", "812.5", "0", "1", "1", "0"},
	}
	if diff := cmp.Diff(want, rows[1:]); diff != "" {
		t.Errorf("log rows mismatch (-want +got):\n%s", diff)
	}
}

func TestCSV_EmptyBatchIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")

	c, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, c.RecordBatch(context.Background(), nil))
	require.NoError(t, c.Close())

	assert.Len(t, readLog(t, path), 1)
}

func TestCSV_TruncatesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale data\n"), 0o644))

	c, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	rows := readLog(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, csvHeader, rows[0])
}

func TestNewCSV_BadPath(t *testing.T) {
	_, err := NewCSV(filepath.Join(t.TempDir(), "missing", "log.csv"))
	assert.Error(t, err)
}
