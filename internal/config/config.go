package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/BohdanVlas/Microclimate-Sys/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	LogFile       string
	SensorPeriod  time.Duration
	FlushInterval time.Duration
	StatusPeriod  time.Duration
	BufferSize    int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	Setpoints  domain.Setpoints
	Hysteresis domain.Hysteresis

	// InfluxDB telemetry sink, enabled when INFLUX_URL is set.
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	// Kafka telemetry sink, enabled via KAFKA_ENABLED.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Setpoint override persistence, enabled when STATE_DB is set.
	StateDB string
}

// InfluxEnabled reports whether the InfluxDB sink is configured.
func (c *Config) InfluxEnabled() bool { return c.InfluxURL != "" }

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	// Ignore a missing .env; the system environment still applies.
	_ = godotenv.Load()

	sensorPeriod, err := envDuration("SENSOR_PERIOD", time.Second)
	if err != nil {
		return nil, err
	}
	flushInterval, err := envDuration("LOG_FLUSH_INTERVAL", 5*time.Second)
	if err != nil {
		return nil, err
	}
	statusPeriod, err := envDuration("STATUS_PERIOD", 5*time.Second)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	bufferSize, err := envInt("LOG_BUFFER_SIZE", 100)
	if err != nil {
		return nil, err
	}
	if bufferSize < 1 || bufferSize > 10000 {
		return nil, errors.New("LOG_BUFFER_SIZE must be between 1 and 10000")
	}

	setpoints, err := loadSetpoints()
	if err != nil {
		return nil, err
	}
	hysteresis, err := loadHysteresis()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogFile:       envOrDefault("LOG_FILE", "microclimate_log.csv"),
		SensorPeriod:  sensorPeriod,
		FlushInterval: flushInterval,
		StatusPeriod:  statusPeriod,
		BufferSize:    bufferSize,

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		Setpoints:  setpoints,
		Hysteresis: hysteresis,

		InfluxURL:    os.Getenv("INFLUX_URL"),
		InfluxToken:  os.Getenv("INFLUX_TOKEN"),
		InfluxOrg:    envOrDefault("INFLUX_ORG", "microclimate"),
		InfluxBucket: envOrDefault("INFLUX_BUCKET", "telemetry"),

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: splitBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "microclimate-telemetry"),

		StateDB: os.Getenv("STATE_DB"),
	}

	if cfg.LogFile == "" {
		return nil, errors.New("LOG_FILE is required")
	}
	if cfg.InfluxEnabled() && cfg.InfluxToken == "" {
		return nil, errors.New("INFLUX_URL is set but INFLUX_TOKEN is not")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}

func loadSetpoints() (domain.Setpoints, error) {
	defaults := domain.DefaultSetpoints()

	temp, err := envFloat("SETPOINT_TEMPERATURE", defaults.Temperature)
	if err != nil {
		return domain.Setpoints{}, err
	}
	hum, err := envFloat("SETPOINT_HUMIDITY", defaults.Humidity)
	if err != nil {
		return domain.Setpoints{}, err
	}
	co2, err := envFloat("SETPOINT_CO2", defaults.CO2)
	if err != nil {
		return domain.Setpoints{}, err
	}

	if hum < 0 || hum > 100 {
		return domain.Setpoints{}, errors.New("SETPOINT_HUMIDITY must be within [0,100]")
	}
	if co2 <= 0 {
		return domain.Setpoints{}, errors.New("SETPOINT_CO2 must be positive")
	}

	return domain.Setpoints{Temperature: temp, Humidity: hum, CO2: co2}, nil
}

func loadHysteresis() (domain.Hysteresis, error) {
	defaults := domain.DefaultHysteresis()

	temp, err := envFloat("HYSTERESIS_TEMPERATURE", defaults.Temperature)
	if err != nil {
		return domain.Hysteresis{}, err
	}
	hum, err := envFloat("HYSTERESIS_HUMIDITY", defaults.Humidity)
	if err != nil {
		return domain.Hysteresis{}, err
	}
	co2, err := envFloat("HYSTERESIS_CO2", defaults.CO2)
	if err != nil {
		return domain.Hysteresis{}, err
	}

	if temp <= 0 || hum <= 0 || co2 <= 0 {
		return domain.Hysteresis{}, errors.New("hysteresis bands must be positive")
	}

	return domain.Hysteresis{Temperature: temp, Humidity: hum, CO2: co2}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, s)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, s)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, s)
	}
	return v, nil
}

func splitBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
