package recorder

import (
	"context"
	"fmt"
	"log/slog"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxapi "github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/BohdanVlas/Microclimate-Sys/internal/config"
	"github.com/BohdanVlas/Microclimate-Sys/internal/domain"
)

// measurement is the InfluxDB measurement all samples are written under.
const measurement = "microclimate"

// Influx writes samples to an InfluxDB 2.x bucket as time-series points.
type Influx struct {
	client   influxdb2.Client
	writeAPI influxapi.WriteAPIBlocking
	logger   *slog.Logger
}

// NewInflux creates an InfluxDB sink from the configured URL, token,
// organization, and bucket.
func NewInflux(cfg *config.Config, logger *slog.Logger) *Influx {
	client := influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)
	return &Influx{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		logger:   logger,
	}
}

// RecordBatch writes one point per sample using the blocking write API.
func (i *Influx) RecordBatch(ctx context.Context, samples []domain.Sample) error {
	for _, s := range samples {
		p := influxdb2.NewPoint(
			measurement,
			map[string]string{
				"run_id":  s.RunID,
				"comfort": s.Comfort,
			},
			map[string]any{
				"temperature": s.Readings.Temperature,
				"humidity":    s.Readings.Humidity,
				"co2":         s.Readings.CO2,
				"heater":      s.Actuators.Heater,
				"cooler":      s.Actuators.Cooler,
				"humidifier":  s.Actuators.Humidifier,
				"fan":         s.Actuators.Fan,
			},
			s.Readings.Timestamp,
		)
		if err := i.writeAPI.WritePoint(ctx, p); err != nil {
			return fmt.Errorf("write influx point: %w", err)
		}
	}
	return nil
}

// Close shuts down the underlying HTTP client.
func (i *Influx) Close() error {
	i.client.Close()
	return nil
}
