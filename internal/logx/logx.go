// Package logx centralizes the logrus setup every decompilation session
// shares: one structured logger, fields keyed by function entry and pass
// name.
package logx

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the base logger a session threads through its run. Level
// defaults to Info; DECORE_LOG_LEVEL overrides it (debug, warn, error) for
// local troubleshooting without touching caller code.
func New() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	if lvl, err := logrus.ParseLevel(os.Getenv("DECORE_LOG_LEVEL")); err == nil {
		l.SetLevel(lvl)
	}
	return l
}

// Discard returns a logger that drops everything, for tests that don't want
// decompilation output on stderr.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// ForFunction scopes entry to one function's decompilation, the field key
// every pass logs under.
func ForFunction(base *logrus.Logger, funcEntry uint64) *logrus.Entry {
	return base.WithField("func", funcEntry)
}
