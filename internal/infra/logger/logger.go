// internal/infra/logger/logger.go
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"events_notifier/internal/infra/config"

	"github.com/sirupsen/logrus"
)

const serviceName = "events_notifier"

// Log is the global logger instance
var Log = logrus.New()

// base carries the fields shared by every component entry.
var base = logrus.NewEntry(Log)

// Init configures the global logger from the application configuration.
// Structured JSON is used in production and staging, text elsewhere.
func Init(cfg *config.AppConfig) {
	if err := configure(Log, os.Stdout, cfg.LogLevel, cfg.Environment); err != nil {
		Log.WithError(err).Warn("Invalid log level, defaulting to 'info'")
	}
	base = Log.WithFields(logrus.Fields{
		"service":     serviceName,
		"environment": cfg.Environment,
	})
	base.WithField("level", Log.GetLevel().String()).Debug("Logger initialized")
}

func configure(l *logrus.Logger, out io.Writer, level, environment string) error {
	l.SetOutput(out)

	switch strings.ToLower(environment) {
	case "production", "staging":
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
		})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		l.SetLevel(logrus.InfoLevel)
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	l.SetLevel(parsed)
	return nil
}

// Component returns an entry tagged with the component name.
func Component(name string) *logrus.Entry {
	return base.WithField("component", name)
}
