// Package domain models the state of a simulated indoor microclimate:
// sensor readings, actuator states, controller setpoints, and the
// samples recorded by the control loop.
//
// # Measured Parameters
//
// Three parameters are controlled:
//
//	temperature  air temperature in degrees Celsius
//	humidity     relative humidity in percent (0-100)
//	co2          carbon dioxide concentration in parts per million
//
// Sensor readings carry measurement noise and are rounded the way the
// simulated hardware reports them: temperature and humidity to two
// decimals, CO2 to one.
//
// # Control Bands
//
// Each parameter has a setpoint and a symmetric hysteresis band.
// Actuators switch only when a reading leaves the band, which keeps
// relays from chattering around the setpoint:
//
//	temperature: heater below sp-h, cooler above sp+h, both off in band
//	humidity:    humidifier below sp-h, off above sp+h, latched in band
//	co2:         exhaust fan above sp+h, off below sp-h, latched in band
//
// Defaults: setpoints 22.0 degC / 50.0 %RH / 800 ppm with hysteresis
// 0.7 / 3.0 / 50.0. These match a small grow-room or server-closet
// installation.
//
// # Comfort Classification
//
// Each sample is labelled by how far the readings sit from their
// setpoints, in units of the hysteresis band:
//
//	comfort   every parameter within 1x band
//	marginal  every parameter within 2x band, at least one outside 1x
//	alert     any parameter beyond 2x band
//
// The three-level scale is a project-specific simplification for
// dashboards and telemetry tags.
package domain
