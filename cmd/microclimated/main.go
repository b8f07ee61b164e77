// Command microclimated runs the microclimate control service: the
// simulated room, the hysteresis controller, the sample recorders, the
// HTTP control API, and the operator console.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/BohdanVlas/Microclimate-Sys/internal/adapter/httpapi"
	"github.com/BohdanVlas/Microclimate-Sys/internal/config"
	"github.com/BohdanVlas/Microclimate-Sys/internal/console"
	"github.com/BohdanVlas/Microclimate-Sys/internal/control"
	"github.com/BohdanVlas/Microclimate-Sys/internal/loop"
	"github.com/BohdanVlas/Microclimate-Sys/internal/observability"
	"github.com/BohdanVlas/Microclimate-Sys/internal/recorder"
	"github.com/BohdanVlas/Microclimate-Sys/internal/sim"
	"github.com/BohdanVlas/Microclimate-Sys/internal/store"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:  "microclimated",
		Usage: "simulated microclimate control system",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the control loop",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "logfile",
						Usage:   "CSV log file path",
						EnvVars: []string{"LOG_FILE"},
					},
					&cli.IntFlag{
						Name:  "run-seconds",
						Usage: "run for N seconds then exit (0 = until signal)",
					},
					&cli.StringFlag{
						Name:    "http-addr",
						Usage:   "HTTP listen address",
						EnvVars: []string{"HTTP_ADDR"},
					},
					&cli.BoolFlag{
						Name:  "no-console",
						Usage: "disable the interactive operator console",
					},
				},
				Action: runService,
			},
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, version)
					return nil
				},
			},
		},
		// Bare invocation behaves like "run" so the container entrypoint
		// stays a single binary call.
		DefaultCommand: "run",
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func runService(c *cli.Context) error {
	// Flags override the environment before config is loaded.
	if v := c.String("logfile"); v != "" {
		os.Setenv("LOG_FILE", v)
	}
	if v := c.String("http-addr"); v != "" {
		os.Setenv("HTTP_ADDR", v)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	runID := uuid.NewString()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if secs := c.Int("run-seconds"); secs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(secs)*time.Second)
		defer cancel()
	}

	// Setpoint persistence (feature-flagged via STATE_DB).
	setpoints := cfg.Setpoints
	var saver *store.SetpointStore
	if cfg.StateDB != "" {
		saver, err = store.Open(ctx, cfg.StateDB)
		if err != nil {
			return fmt.Errorf("open state db: %w", err)
		}
		defer saver.Close()

		applied, skipped, err := saver.Apply(ctx, cfg.Setpoints)
		if err != nil {
			return fmt.Errorf("apply setpoint overrides: %w", err)
		}
		if len(skipped) > 0 {
			logger.Warn("skipped invalid setpoint overrides", "names", skipped)
		}
		setpoints = applied
		logger.Info("setpoint overrides applied", "db", cfg.StateDB)
	}

	csvSink, err := recorder.NewCSV(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("open csv log: %w", err)
	}

	var telemetry []recorder.Sink
	if cfg.InfluxEnabled() {
		telemetry = append(telemetry, recorder.NewInflux(cfg, logger))
		logger.Info("influx sink enabled", "url", cfg.InfluxURL, "bucket", cfg.InfluxBucket)
	}
	if cfg.KafkaEnabled {
		telemetry = append(telemetry, recorder.NewKafka(cfg, logger))
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	sink := recorder.NewFanout(csvSink, logger, metrics, telemetry...)

	plant := sim.NewPlant(sim.WithRand(rand.New(rand.NewSource(time.Now().UnixNano()))))
	ctrl := control.New(setpoints, cfg.Hysteresis)

	l := loop.New(plant, ctrl, sink, logger, metrics, loop.Options{
		RunID:         runID,
		SensorPeriod:  cfg.SensorPeriod,
		FlushInterval: cfg.FlushInterval,
		StatusPeriod:  cfg.StatusPeriod,
		BufferSize:    cfg.BufferSize,
	})

	var saverIface httpapi.SetpointSaver
	if saver != nil {
		saverIface = saver
	}
	srv := httpapi.NewServer(cfg.HTTPAddr, ctrl, l, saverIface, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if !c.Bool("no-console") {
		var consoleSaver console.SetpointSaver
		if saver != nil {
			consoleSaver = saver
		}
		cons := console.New(ctrl, consoleSaver, cfg.LogFile, os.Stdin, os.Stdout, logger, stop)
		go func() {
			if err := cons.Run(ctx); err != nil {
				logger.Error("console error", "error", err)
			}
		}()
	}

	logger.Info("microclimate service started", "run_id", runID, "logfile", cfg.LogFile)
	if err := l.Run(ctx); err != nil {
		logger.Error("control loop error", "error", err)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := sink.Close(); err != nil {
		logger.Error("recorder close error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
