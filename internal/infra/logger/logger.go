// internal/infra/logger/logger.go
package logger

import (
	"os"
	"strings"

	"nna_analyzer/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// Log is the shared structured logger. Pipeline stages keep their prefixed
// stdlib loggers for step-by-step traces; run-level outcomes go through Log
// so production runs emit machine-readable JSON.
var Log = logrus.New()

// Init configures the shared logger from the application configuration.
func Init(cfg *config.AppConfig) {
	Log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		Log.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", cfg.LogLevel, err)
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	// Scheduled report runs ship their logs to collectors, so anything beyond
	// a developer workstation gets JSON.
	switch strings.ToLower(cfg.Environment) {
	case "production", "staging":
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
		})
	default:
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
	}

	Log.Debugf("Log level set to: %s", Log.GetLevel().String())
	Log.Debugf("Log format set for environment: %s", cfg.Environment)
}
