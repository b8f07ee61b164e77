// Package console implements the interactive operator console: a
// line-oriented command interface for inspecting and adjusting the
// controller while the loop runs.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/BohdanVlas/Microclimate-Sys/internal/control"
)

// Controls is the controller surface the console operates on.
type Controls interface {
	Status() control.Status
	SetSetpoint(name string, value float64) error
}

// SetpointSaver persists setpoint changes. May be nil.
type SetpointSaver interface {
	Save(ctx context.Context, name string, value float64) error
}

// Console reads operator commands from in and writes responses to out.
type Console struct {
	controls Controls
	saver    SetpointSaver
	logFile  string
	in       io.Reader
	out      io.Writer
	logger   *slog.Logger
	stop     context.CancelFunc
}

// New creates a Console. stop is invoked when the operator types "exit".
func New(controls Controls, saver SetpointSaver, logFile string, in io.Reader, out io.Writer, logger *slog.Logger, stop context.CancelFunc) *Console {
	return &Console{
		controls: controls,
		saver:    saver,
		logFile:  logFile,
		in:       in,
		out:      out,
		logger:   logger,
		stop:     stop,
	}
}

// Run processes commands until EOF, "exit", or context cancellation.
// It is meant to be run on its own goroutine alongside the control loop.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, `Console ready. Type "help" for commands.`)

	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !c.dispatch(ctx, line) {
			return nil
		}
	}
	return scanner.Err()
}

// dispatch executes one command line. Returns false when the console
// should stop.
func (c *Console) dispatch(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "help":
		fmt.Fprintln(c.out, "Commands: status, set <param> <value>, actuators, logfile, help, exit")
		fmt.Fprintln(c.out, "Parameters for set: temperature, humidity, co2")

	case "status":
		st := c.controls.Status()
		fmt.Fprintf(c.out, "Setpoints: temperature=%.1f humidity=%.1f co2=%.0f\n",
			st.Setpoints.Temperature, st.Setpoints.Humidity, st.Setpoints.CO2)
		fmt.Fprintf(c.out, "Hysteresis: temperature=%.1f humidity=%.1f co2=%.0f\n",
			st.Hysteresis.Temperature, st.Hysteresis.Humidity, st.Hysteresis.CO2)
		fmt.Fprintf(c.out, "Actuators: %s\n", formatActuators(st))

	case "set":
		c.handleSet(ctx, parts)

	case "actuators":
		fmt.Fprintf(c.out, "%s\n", formatActuators(c.controls.Status()))

	case "logfile":
		fmt.Fprintf(c.out, "Samples are logged to %s\n", c.logFile)

	case "exit":
		fmt.Fprintln(c.out, "Shutting down...")
		c.stop()
		return false

	default:
		fmt.Fprintln(c.out, `Unknown command. Type "help" for a list.`)
	}
	return true
}

func (c *Console) handleSet(ctx context.Context, parts []string) {
	if len(parts) != 3 {
		fmt.Fprintln(c.out, "Usage: set <temperature|humidity|co2> <value>")
		return
	}

	name := strings.ToLower(parts[1])
	value, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %q is not a number\n", parts[2])
		return
	}

	if err := c.controls.SetSetpoint(name, value); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}

	if c.saver != nil {
		if err := c.saver.Save(ctx, name, value); err != nil {
			c.logger.Warn("persist setpoint failed", "name", name, "error", err)
		}
	}

	fmt.Fprintf(c.out, "Setpoint %s = %g\n", name, value)
}

func formatActuators(st control.Status) string {
	return fmt.Sprintf("heater=%s cooler=%s humidifier=%s fan=%s",
		onOff(st.Actuators.Heater),
		onOff(st.Actuators.Cooler),
		onOff(st.Actuators.Humidifier),
		onOff(st.Actuators.Fan),
	)
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
