package logging

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
)

const RFC3339Milli = "2006-01-02T15:04:05.000Z07:00"

type LogFormat string

const (
	FormatText LogFormat = "text"
	FormatJson LogFormat = "json"
)

var validLogFormats = map[LogFormat]bool{
	FormatText: true,
	FormatJson: true,
}

// ConfigureCliLogging sets up logging suitable for a command line tool: bare messages on stdout.
func ConfigureCliLogging() {
	logger := logrus.New()
	logger.SetFormatter(&CommandLineFormatter{})
	logger.SetOutput(os.Stdout)
	ReplaceStdLogger(logger)
}

// ConfigureApplicationLogging sets up timestamped logging on stdout at the given level and format.
// Hooks, if any, are attached to the new logger.
func ConfigureApplicationLogging(level string, format LogFormat, hooks ...logrus.Hook) error {
	parsedLevel, err := parseLogLevel(level)
	if err != nil {
		return err
	}
	if err := validateLogFormat(format); err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(parsedLevel)
	if format == FormatJson {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: RFC3339Milli})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: RFC3339Milli})
	}
	for _, hook := range hooks {
		logger.AddHook(hook)
	}

	ReplaceStdLogger(logger)
	return nil
}

func validateLogFormat(f LogFormat) error {
	_, ok := validLogFormats[f]
	if !ok {
		return errors.Errorf("unknown log format: %s.  Valid formats are %s", f, maps.Keys(validLogFormats))
	}
	return nil
}

func parseLogLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	case "panic":
		return logrus.PanicLevel, nil
	case "fatal":
		return logrus.FatalLevel, nil
	default:
		return logrus.InfoLevel, errors.Errorf("unknown level: %s", level)
	}
}
