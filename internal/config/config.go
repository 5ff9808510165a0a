// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with the level selected by the flags.
// Instruction traces are logged at info level, so tracing overrides quiet mode.
func CreateLogger(flags options.Flags) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case flags.Debug:
		cfg.Level = log.DebugLevel
	case flags.Quiet && !flags.Trace:
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
