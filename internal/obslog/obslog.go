// Package obslog is the structured logging seam between the loader/cache
// layer and whatever host application embeds them. The source specifies
// logging as a single-method callback (on_event(level, message)) so a GUI
// host can route events to a status bar instead of stderr; Logger is that
// seam, with a zap-backed adapter (Zap). Components constructed without a
// Logger fall back to Noop, which discards every event.
package obslog

import "go.uber.org/zap"

// Level mirrors the handful of severities the loader and cache manager
// actually emit. It deliberately does not expose zap's full level set.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Field is a single structured key/value attached to an event.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for constructing a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logger is the single-method event sink every loader and cache component
// is constructed with. Implementations must be safe to call from one
// goroutine at a time; the core never logs concurrently with itself.
type Logger interface {
	Event(level Level, message string, fields ...Field)
}

// Noop discards every event. Useful as a zero-value default so callers
// that don't care about observability don't need to wire one up.
type Noop struct{}

func (Noop) Event(Level, string, ...Field) {}

// Zap adapts a *zap.SugaredLogger to Logger.
type Zap struct {
	log *zap.SugaredLogger
}

// NewZap wraps log as a Logger. A nil log is treated as Noop.
func NewZap(log *zap.SugaredLogger) Zap {
	return Zap{log: log}
}

func (z Zap) Event(level Level, message string, fields ...Field) {
	if z.log == nil {
		return
	}
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	switch level {
	case LevelDebug:
		z.log.Debugw(message, args...)
	case LevelWarn:
		z.log.Warnw(message, args...)
	case LevelError:
		z.log.Errorw(message, args...)
	default:
		z.log.Infow(message, args...)
	}
}
