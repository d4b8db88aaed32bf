package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/container-harness/internal/harnesscfg"
)

type Level int32

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

type Field struct {
	Key   string
	Value any
}

func F(key string, value any) Field { return Field{Key: key, Value: value} }

func Err(err error) Field {
	if err == nil {
		return Field{Key: "err", Value: nil}
	}
	return Field{Key: "err", Value: err.Error()}
}

var (
	mu     sync.RWMutex
	logger zerolog.Logger
)

func init() {
	logger = newLogger(harnesscfg.LoggingConfig{Level: "info", Format: "json"}, os.Stderr)
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func newLogger(cfg harnesscfg.LoggingConfig, w io.Writer) zerolog.Logger {
	if strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
}

// Init swaps the package logger. The returned func closes a file output, if any.
func Init(cfg harnesscfg.LoggingConfig) func() {
	var (
		w       io.Writer = os.Stderr
		closeFn           = func() {}
	)
	switch cfg.Output {
	case "stdout":
		w = os.Stdout
	case "stderr", "":
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			w = f
			closeFn = func() { _ = f.Close() }
		}
	}
	SetOutput(cfg, w)
	return closeFn
}

// SetOutput is Init with an explicit writer.
func SetOutput(cfg harnesscfg.LoggingConfig, w io.Writer) {
	l := newLogger(cfg, w)
	mu.Lock()
	logger = l
	mu.Unlock()
}

func log(lvl Level, msg string, fields ...Field) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	var ev *zerolog.Event
	switch lvl {
	case DebugLevel:
		ev = l.Debug()
	case WarnLevel:
		ev = l.Warn()
	case ErrorLevel:
		ev = l.Error()
	default:
		ev = l.Info()
	}
	if ev == nil {
		return
	}
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			ev = ev.Str(f.Key, v)
		case int:
			ev = ev.Int(f.Key, v)
		case bool:
			ev = ev.Bool(f.Key, v)
		case time.Duration:
			ev = ev.Dur(f.Key, v)
		default:
			ev = ev.Interface(f.Key, v)
		}
	}
	ev.Msg(msg)
}

func Debug(msg string, fields ...Field) { log(DebugLevel, msg, fields...) }
func Info(msg string, fields ...Field)  { log(InfoLevel, msg, fields...) }
func Warn(msg string, fields ...Field)  { log(WarnLevel, msg, fields...) }
func Error(msg string, fields ...Field) { log(ErrorLevel, msg, fields...) }
