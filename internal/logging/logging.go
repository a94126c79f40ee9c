// Package logging builds the zap loggers used by logmon: a compact console
// encoder on stderr for the CLI and a plain file logger for the TUI, which
// owns the terminal.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	gray   = "\033[90m"
	red    = "\033[91m"
	yellow = "\033[93m"
	white  = "\033[97m"
)

var levelLetters = map[zapcore.Level]string{
	zapcore.DebugLevel: "D",
	zapcore.InfoLevel:  "I",
	zapcore.WarnLevel:  "W",
	zapcore.ErrorLevel: "E",
}

func levelColor(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return gray
	case zapcore.InfoLevel:
		return white
	case zapcore.WarnLevel:
		return yellow
	default:
		return red
	}
}

// compactEncoder prints "15:04:05 W file message fields".
func compactEncoder(colors bool) zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		s := t.Format("15:04:05")
		if colors {
			s = dim + s + reset
		}
		enc.AppendString(s)
	}
	cfg.EncodeLevel = func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		s := levelLetters[level]
		if s == "" {
			s = "?"
		}
		if colors {
			s = levelColor(level) + bold + s + reset
		}
		enc.AppendString(s)
	}
	cfg.EncodeCaller = func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		file := strings.TrimSuffix(filepath.Base(caller.File), ".go")
		if colors {
			file = dim + file + reset
		}
		enc.AppendString(file)
	}
	return zapcore.NewConsoleEncoder(cfg)
}

func level(verbose bool) zapcore.Level {
	if verbose {
		return zapcore.DebugLevel
	}
	return zapcore.WarnLevel
}

// New returns a logger writing to w. Colors are used only when w is a
// terminal. Without verbose only warnings and errors are written.
func New(w io.Writer, verbose bool) *zap.Logger {
	colors := false
	if f, ok := w.(*os.File); ok {
		colors = isatty.IsTerminal(f.Fd())
	}
	core := zapcore.NewCore(compactEncoder(colors), zapcore.AddSync(w), level(verbose))
	return zap.New(core, zap.AddCaller())
}

// NewStderr is the CLI logger.
func NewStderr(verbose bool) *zap.Logger {
	return New(os.Stderr, verbose)
}

// NewFile returns a logger appending to path, creating parent directories.
// The returned close function syncs and closes the file.
func NewFile(path string, verbose bool) (*zap.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	lvl := zapcore.InfoLevel
	if verbose {
		lvl = zapcore.DebugLevel
	}
	core := zapcore.NewCore(compactEncoder(false), zapcore.AddSync(f), lvl)
	logger := zap.New(core, zap.AddCaller())
	closeFn := func() error {
		_ = logger.Sync()
		return f.Close()
	}
	return logger, closeFn, nil
}
