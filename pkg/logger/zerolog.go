package logger

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

// ZerologLogger is the default Logger implementation, backed by
// zerolog. Logger is exported so callers needing structured fields
// beyond the Logger interface (e.g. attaching a component name via
// With()) can reach the underlying zerolog.Logger directly.
type ZerologLogger struct {
	Logger zerolog.Logger
}

// NewLoggerRaw builds a ZerologLogger writing to out. hook, if
// non-nil, is attached to every event (used by tests and by callers
// wanting to mirror log lines into another sink).
func NewLoggerRaw(out io.Writer, hook zerolog.Hook) *ZerologLogger {
	l := zerolog.New(out).With().Timestamp().Logger()
	if hook != nil {
		l = l.Hook(hook)
	}
	return &ZerologLogger{Logger: l}
}

// NewLogger builds a ZerologLogger satisfying the Logger interface.
func NewLogger(out io.Writer) Logger {
	return NewLoggerRaw(out, nil)
}

func withFields(e *zerolog.Event, args ...any) *zerolog.Event {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, args[i+1])
	}
	return e
}

func (l *ZerologLogger) Error(_ context.Context, msg string, args ...any) {
	withFields(l.Logger.Error(), args...).Msg(msg)
}

func (l *ZerologLogger) Warn(_ context.Context, msg string, args ...any) {
	withFields(l.Logger.Warn(), args...).Msg(msg)
}

func (l *ZerologLogger) Info(_ context.Context, msg string, args ...any) {
	withFields(l.Logger.Info(), args...).Msg(msg)
}

func (l *ZerologLogger) Debug(_ context.Context, msg string, args ...any) {
	withFields(l.Logger.Debug(), args...).Msg(msg)
}
