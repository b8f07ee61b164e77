// Package recorder persists control-loop samples: a CSV log that is
// always on, plus optional InfluxDB and Kafka telemetry sinks composed
// behind a fan-out.
package recorder

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/BohdanVlas/Microclimate-Sys/internal/domain"
)

// csvHeader is the fixed column layout of the log file.
var csvHeader = []string{
	"timestamp", "temperature", "humidity", "co2",
	"heater", "cooler", "humidifier", "fan",
}

// CSV appends samples to a CSV log file. The file is truncated and the
// header written when the recorder is created.
type CSV struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

// NewCSV creates the log file at path, truncating any previous run.
func NewCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv log: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSV{file: f, w: w}, nil
}

// RecordBatch appends one row per sample and flushes to disk.
func (c *CSV) RecordBatch(_ context.Context, samples []domain.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range samples {
		if err := c.w.Write(csvRow(s)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("flush csv rows: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (c *CSV) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.file.Close()
		return err
	}
	return c.file.Close()
}

// csvRow encodes a sample; actuator states are written as 0/1 so the
// log loads cleanly into numeric tools.
func csvRow(s domain.Sample) []string {
	return []string{
		s.Readings.Timestamp.UTC().Format(time.RFC3339),
		strconv.FormatFloat(s.Readings.Temperature, 'f', -1, 64),
		strconv.FormatFloat(s.Readings.Humidity, 'f', -1, 64),
		strconv.FormatFloat(s.Readings.CO2, 'f', -1, 64),
		boolCell(s.Actuators.Heater),
		boolCell(s.Actuators.Cooler),
		boolCell(s.Actuators.Humidifier),
		boolCell(s.Actuators.Fan),
	}
}

func boolCell(on bool) string {
	if on {
		return "1"
	}
	return "0"
}
