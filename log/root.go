package log

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var root atomic.Value // Logger

func init() {
	root.Store(Logger(newLogger(consoleLogger(os.Stderr, LvlInfo, false))))
}

// Root returns the process wide logger.
func Root() Logger { return root.Load().(Logger) }

// SetRoot replaces the process wide logger.
func SetRoot(l Logger) { root.Store(l) }

// New returns a child of the root logger carrying ctx.
func New(ctx ...interface{}) Logger { return Root().New(ctx...) }

func Trace(msg string, ctx ...interface{}) { Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { Root().Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { Root().Crit(msg, ctx...) }

// NewJSONLogger writes one JSON object per record to w.
func NewJSONLogger(w io.Writer, lvl Lvl) Logger {
	zl := zerolog.New(w).Level(lvl.zerolog()).With().Timestamp().Logger()
	return newLogger(zl)
}

// NewTerminalLogger writes human readable records to w, coloured when
// useColor is set.
func NewTerminalLogger(w io.Writer, lvl Lvl, useColor bool) Logger {
	return newLogger(consoleLogger(w, lvl, !useColor))
}

// DiscardLogger drops every record.
func DiscardLogger() Logger { return newLogger(zerolog.Nop()) }

func consoleLogger(w io.Writer, lvl Lvl, noColor bool) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: "01-02|15:04:05.000",
	}
	return zerolog.New(out).Level(lvl.zerolog()).With().Timestamp().Logger()
}

// stderrTerminal returns a colour capable stderr writer and whether colours
// should be used on it.
func stderrTerminal() (io.Writer, bool) {
	fd := os.Stderr.Fd()
	useColor := (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("TERM") != "dumb"
	if useColor {
		return colorable.NewColorableStderr(), true
	}
	return os.Stderr, false
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	// Per-logger levels do the filtering.
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}
