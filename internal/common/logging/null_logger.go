package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NullLogger discards everything.
var NullLogger = &logrus.Logger{
	Out:       io.Discard,
	Formatter: new(logrus.TextFormatter),
	Hooks:     make(logrus.LevelHooks),
	Level:     logrus.PanicLevel,
}

// Silence makes the global logger discard everything until the returned function restores the previous one.
// Tests driving the submission loops use it to keep per-request logging out of their output.
func Silence() (restore func()) {
	previous := stdLogger
	ReplaceStdLogger(NullLogger)
	return func() {
		ReplaceStdLogger(previous)
	}
}
