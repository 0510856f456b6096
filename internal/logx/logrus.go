package logx

import "github.com/sirupsen/logrus"

// LogrusAdapter adapts a logrus entry to the logx.Logger interface.
type LogrusAdapter struct {
	e *logrus.Entry
}

// NewLogrusAdapter returns a Logger backed by the provided *logrus.Logger.
func NewLogrusAdapter(l *logrus.Logger) Logger {
	return &LogrusAdapter{e: logrus.NewEntry(l)}
}

// Debug logs a debug-level message.
func (a *LogrusAdapter) Debug(msg string, fields ...Field) { a.e.WithFields(toLogrusFields(fields)).Debug(msg) }

// Info logs an info-level message.
func (a *LogrusAdapter) Info(msg string, fields ...Field) { a.e.WithFields(toLogrusFields(fields)).Info(msg) }

// Warn logs a warning-level message.
func (a *LogrusAdapter) Warn(msg string, fields ...Field) { a.e.WithFields(toLogrusFields(fields)).Warn(msg) }

// Error logs an error-level message.
func (a *LogrusAdapter) Error(msg string, fields ...Field) { a.e.WithFields(toLogrusFields(fields)).Error(msg) }

// With returns a logger that attaches fields to every entry.
func (a *LogrusAdapter) With(fields ...Field) Logger {
	return &LogrusAdapter{e: a.e.WithFields(toLogrusFields(fields))}
}

// Sync is a no-op for logrus.
func (a *LogrusAdapter) Sync() error { return nil }

func toLogrusFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}
