// Package log provides leveled key/value logging on top of zerolog.
//
// Call sites pass a message followed by alternating keys and values:
//
//	log.Info("Record created", "address", addr, "title", title)
package log

import (
	"fmt"
	"os"
	"reflect"

	"github.com/rs/zerolog"
)

// Lvl is a logging verbosity. Lower values are more severe.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

// String returns the short name of the level.
func (l Lvl) String() string {
	switch l {
	case LvlTrace:
		return "trce"
	case LvlDebug:
		return "dbug"
	case LvlInfo:
		return "info"
	case LvlWarn:
		return "warn"
	case LvlError:
		return "eror"
	case LvlCrit:
		return "crit"
	default:
		return "unknown"
	}
}

func (l Lvl) zerolog() zerolog.Level {
	switch l {
	case LvlTrace:
		return zerolog.TraceLevel
	case LvlDebug:
		return zerolog.DebugLevel
	case LvlInfo:
		return zerolog.InfoLevel
	case LvlWarn:
		return zerolog.WarnLevel
	case LvlError:
		return zerolog.ErrorLevel
	default:
		return zerolog.FatalLevel
	}
}

// Logger writes key/value pairs. Loggers created with New carry their context
// into every record.
type Logger interface {
	// New returns a child logger with ctx prepended to every record.
	New(ctx ...interface{}) Logger

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	// Crit logs and terminates the process.
	Crit(msg string, ctx ...interface{})
}

type logger struct {
	zl zerolog.Logger
}

func newLogger(zl zerolog.Logger) *logger { return &logger{zl: zl} }

func (l *logger) New(ctx ...interface{}) Logger {
	return &logger{zl: withFields(l.zl.With(), ctx).Logger()}
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(l.zl.Trace(), msg, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(l.zl.Debug(), msg, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(l.zl.Info(), msg, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(l.zl.Warn(), msg, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(l.zl.Error(), msg, ctx) }

func (l *logger) Crit(msg string, ctx ...interface{}) {
	// WithLevel keeps zerolog from calling os.Exit before the record is flushed.
	l.write(l.zl.WithLevel(zerolog.FatalLevel), msg, ctx)
	os.Exit(1)
}

func (l *logger) write(ev *zerolog.Event, msg string, ctx []interface{}) {
	if ev == nil {
		return
	}
	for i := 0; i < len(ctx); i += 2 {
		key, val := pair(ctx, i)
		ev = appendField(ev, key, val)
	}
	ev.Msg(msg)
}

func withFields(c zerolog.Context, ctx []interface{}) zerolog.Context {
	for i := 0; i < len(ctx); i += 2 {
		key, val := pair(ctx, i)
		c = c.Interface(key, normalize(val))
	}
	return c
}

// pair extracts the i'th key/value. An odd trailing key is reported under
// a marker instead of being dropped.
func pair(ctx []interface{}, i int) (string, interface{}) {
	key, ok := ctx[i].(string)
	if !ok {
		key = fmt.Sprint(ctx[i])
	}
	if i+1 >= len(ctx) {
		return "LOG_ERROR", "missing value for key " + key
	}
	return key, ctx[i+1]
}

func appendField(ev *zerolog.Event, key string, val interface{}) *zerolog.Event {
	switch v := val.(type) {
	case error:
		return ev.Str(key, safeString(v, v.Error))
	case fmt.Stringer:
		return ev.Str(key, safeString(v, v.String))
	case string:
		return ev.Str(key, v)
	case int:
		return ev.Int(key, v)
	case uint64:
		return ev.Uint64(key, v)
	case bool:
		return ev.Bool(key, v)
	default:
		return ev.Interface(key, v)
	}
}

func normalize(val interface{}) interface{} {
	switch v := val.(type) {
	case error:
		return safeString(v, v.Error)
	case fmt.Stringer:
		return safeString(v, v.String)
	default:
		return v
	}
}

// safeString renders val through fn. Value receivers reached through a nil
// pointer panic; those render as "<nil>" and any other panic propagates.
func safeString(val interface{}, fn func() string) (s string) {
	defer func() {
		if err := recover(); err != nil {
			if v := reflect.ValueOf(val); v.Kind() == reflect.Ptr && v.IsNil() {
				s = "<nil>"
			} else {
				panic(err)
			}
		}
	}()
	return fn()
}
