// Package config defines the settings of the display and the simulator and
// provides helpers to load, validate and save them in YAML format.
//
// Every cadence of the alarm engine (poll, blink, pulse holds) and both row
// capacities come from here; zero values are replaced by the panel defaults.
package config
