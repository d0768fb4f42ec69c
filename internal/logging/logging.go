// Package logging provides the logger interface used across hostkit.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// LogrusLogger backs Logger with logrus.
type LogrusLogger struct {
	l *logrus.Logger
}

// New creates a logger writing to out. format can be "json" or "text".
func New(out io.Writer, level, format string) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(parseLevel(level))

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return &LogrusLogger{l: l}
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func (g *LogrusLogger) Debug(msg string, args ...any) { g.l.Debugf(msg, args...) }
func (g *LogrusLogger) Info(msg string, args ...any)  { g.l.Infof(msg, args...) }
func (g *LogrusLogger) Warn(msg string, args ...any)  { g.l.Warnf(msg, args...) }
func (g *LogrusLogger) Error(msg string, args ...any) { g.l.Errorf(msg, args...) }

// Nop discards all messages. Used in tests.
type Nop struct{}

func (Nop) Debug(string, ...any) {}
func (Nop) Info(string, ...any)  {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Error(string, ...any) {}
