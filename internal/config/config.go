// Package config sets up the shared logger of the emulator and analyzer.
package config

import (
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates the logger for the selected verbosity. Debug enables
// instruction and analysis trace output, quiet reduces output to errors for
// scripted analysis runs.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
