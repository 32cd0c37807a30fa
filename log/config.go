package log

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Environment overrides applied on top of the configured values.
const (
	EnvLogLevel   = "RATINGD_LOG_LEVEL"
	EnvLogJSON    = "RATINGD_LOG_JSON"
	EnvLogNoColor = "RATINGD_LOG_NOCOLOR"
)

// Config selects the root logger's output.
type Config struct {
	Level   string `toml:",omitempty"` // trace, debug, info, warn, error, crit
	JSON    bool   `toml:",omitempty"`
	NoColor bool   `toml:",omitempty"`
}

// DefaultConfig logs at info level to a coloured terminal when available.
var DefaultConfig = Config{
	Level: "info",
}

// ParseLevel maps a level name or number to a Lvl.
func ParseLevel(raw string) (Lvl, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace", "trce":
		return LvlTrace, nil
	case "debug", "dbug":
		return LvlDebug, nil
	case "", "info":
		return LvlInfo, nil
	case "warn", "warning":
		return LvlWarn, nil
	case "error", "eror":
		return LvlError, nil
	case "crit":
		return LvlCrit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < int(LvlCrit) || n > int(LvlTrace) {
		return LvlInfo, fmt.Errorf("unknown log level %q", raw)
	}
	return Lvl(n), nil
}

// ApplyEnv overlays environment overrides onto cfg. Unparseable values are
// ignored.
func (cfg *Config) ApplyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Level = v
	}
	if v, err := strconv.ParseBool(os.Getenv(EnvLogJSON)); err == nil {
		cfg.JSON = v
	}
	if v, err := strconv.ParseBool(os.Getenv(EnvLogNoColor)); err == nil {
		cfg.NoColor = v
	}
}

// Setup installs a root logger built from cfg, writing to stderr.
func Setup(cfg Config) error {
	l, err := Build(cfg, nil)
	if err != nil {
		return err
	}
	SetRoot(l)
	return nil
}

// Build constructs a logger from cfg. A nil writer selects stderr with
// terminal detection.
func Build(cfg Config, w io.Writer) (Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	useColor := false
	if w == nil {
		w, useColor = stderrTerminal()
	}
	if cfg.JSON {
		return NewJSONLogger(w, lvl), nil
	}
	return NewTerminalLogger(w, lvl, useColor && !cfg.NoColor), nil
}
