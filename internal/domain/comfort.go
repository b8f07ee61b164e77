package domain

import "math"

// Comfort labels, ordered from best to worst.
const (
	ComfortOK       = "comfort"
	ComfortMarginal = "marginal"
	ComfortAlert    = "alert"
)

// ClassifyComfort maps a reading to a comfort label based on how far each
// parameter sits from its setpoint, measured in hysteresis band widths:
//   - comfort: every parameter within 1x band of its setpoint
//   - marginal: every parameter within 2x band, at least one outside 1x
//   - alert: any parameter beyond 2x band
//
// The three-level scale is a project-specific simplification for
// dashboards and telemetry tags.
func ClassifyComfort(r Readings, sp Setpoints, hy Hysteresis) string {
	worst := 0.0
	for _, d := range []float64{
		bandDistance(r.Temperature, sp.Temperature, hy.Temperature),
		bandDistance(r.Humidity, sp.Humidity, hy.Humidity),
		bandDistance(r.CO2, sp.CO2, hy.CO2),
	} {
		if d > worst {
			worst = d
		}
	}

	switch {
	case worst <= 1:
		return ComfortOK
	case worst <= 2:
		return ComfortMarginal
	default:
		return ComfortAlert
	}
}

// bandDistance returns the deviation from the setpoint in units of the
// hysteresis half-width. A non-positive band makes any deviation an alert.
func bandDistance(value, setpoint, band float64) float64 {
	dev := math.Abs(value - setpoint)
	if band <= 0 {
		if dev == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return dev / band
}
