package logging

import (
	"github.com/sirupsen/logrus"
)

// The global logger. Comes configured with logrus defaults, which suits unit tests; binaries should call one of the
// Configure functions at startup.
var stdLogger = logrus.StandardLogger()

// ReplaceStdLogger replaces the global logger. This should be called once at app startup!
func ReplaceStdLogger(l *logrus.Logger) {
	stdLogger = l
}

// StdLogger returns the default logger
func StdLogger() *logrus.Logger {
	return stdLogger
}

// Warn logs a message at level Warn on the standard logger.
func Warn(args ...any) {
	stdLogger.Warn(args...)
}

// Debugf logs a message at level Debug on the standard logger.
func Debugf(format string, args ...any) {
	stdLogger.Debugf(format, args...)
}

// Infof logs a message at level Info on the standard logger.
func Infof(format string, args ...any) {
	stdLogger.Infof(format, args...)
}

// Warnf logs a message at level Warn on the standard logger.
func Warnf(format string, args ...any) {
	stdLogger.Warnf(format, args...)
}

// Errorf logs a message at level Error on the standard logger.
func Errorf(format string, args ...any) {
	stdLogger.Errorf(format, args...)
}

// WithField returns a new Entry with the key-value pair added as a new field
func WithField(key string, value any) *logrus.Entry {
	return stdLogger.WithField(key, value)
}

// WithFields returns a new Entry with all key-value pairs in the map added as new fields
func WithFields(args map[string]any) *logrus.Entry {
	return stdLogger.WithFields(args)
}

// WithError returns a new Entry with the error added as a field
func WithError(err error) *logrus.Entry {
	return stdLogger.WithError(err)
}

// WithStacktrace returns a new Entry with the error and (if available) the stacktrace added as fields
func WithStacktrace(err error) *logrus.Entry {
	return AddStacktrace(logrus.NewEntry(stdLogger), err)
}
