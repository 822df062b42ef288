// Package log provides the engine's structured logger: a log/slog JSON handler writing to a
// size-rotated file, with nil-receiver safe helpers so components can hold an optional logger.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps a *slog.Logger with the location of the file it writes to.
// A nil *Logger is valid: debug and info messages are dropped, warnings and errors go to the default slog logger.
type Logger struct {
	*slog.Logger
	LogFile string
	LogDir  string
	Start   time.Time
}

type loggerConfig struct {
	dir        string
	level      string
	maxSizeMB  int
	maxBackups int
	stderr     bool
	writer     io.Writer
}

// New creates a Logger writing JSON records to <dir>/tm3d.slog, rotated by lumberjack.
// The first records describe the host system and the Go build.
//
// Parameters:
//   - options: functional options configuring directory, level and rotation
//
// Returns:
//   - *Logger: the ready logger
func New(options ...LoggerBuilderOption) *Logger {
	cfg := &loggerConfig{
		level:      "info",
		maxSizeMB:  32,
		maxBackups: 1,
	}
	for _, opt := range options {
		opt(cfg)
	}

	var w io.Writer
	var filename string
	if cfg.writer != nil {
		w = cfg.writer
	} else {
		if cfg.dir == "" {
			dir, err := os.UserConfigDir()
			if err != nil {
				fmt.Fprintf(os.Stderr, "unable to find user config dir: %v\n", err)
				dir = "."
			}
			cfg.dir = filepath.Join(dir, "tm3d")
		}
		lj := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.dir, "tm3d.slog"),
			MaxSize:    cfg.maxSizeMB,
			MaxBackups: cfg.maxBackups,
		}
		if cfg.level == "debug" {
			lj.MaxSize = max(lj.MaxSize, 256)
		}
		w = lj
		filename = lj.Filename
	}
	if cfg.stderr {
		w = io.MultiWriter(w, os.Stderr)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(cfg.level)})
	l := &Logger{
		Logger:  slog.New(h),
		LogFile: filename,
		LogDir:  cfg.dir,
		Start:   time.Now(),
	}

	l.Info("logging started", slog.Time("start", l.Start))
	l.Info("system information",
		slog.String("GOARCH", runtime.GOARCH),
		slog.String("GOOS", runtime.GOOS),
		slog.Int("NumCPUs", runtime.NumCPU()))

	if bi, ok := debug.ReadBuildInfo(); ok {
		var deps []any
		for _, dep := range bi.Deps {
			deps = append(deps, slog.String(dep.Path, dep.Version))
		}
		l.Info("build",
			slog.String("go_version", bi.GoVersion),
			slog.String("path", bi.Path),
			slog.Group("dependencies", deps...))
	}

	return l
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) Debug(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(context.Background(), slog.LevelDebug) {
		l.Logger.Debug(msg, args...)
	}
}

// Debugf logs a printf-style formatted message at debug level.
func (l *Logger) Debugf(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(context.Background(), slog.LevelDebug) {
		l.Logger.Debug(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger) Info(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(context.Background(), slog.LevelInfo) {
		l.Logger.Info(msg, args...)
	}
}

func (l *Logger) Infof(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(context.Background(), slog.LevelInfo) {
		l.Logger.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger) Warn(msg string, args ...any) {
	if l == nil {
		slog.Warn(msg, args...)
	} else {
		l.Logger.Warn(msg, args...)
	}
}

func (l *Logger) Warnf(msg string, args ...any) {
	l.Warn(fmt.Sprintf(msg, args...))
}

func (l *Logger) Error(msg string, args ...any) {
	if l == nil {
		slog.Error(msg, args...)
	} else {
		l.Logger.Error(msg, args...)
	}
}

func (l *Logger) Errorf(msg string, args ...any) {
	l.Error(fmt.Sprintf(msg, args...))
}

// With returns a Logger that adds args to every record. A nil Logger stays nil.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{
		Logger:  l.Logger.With(args...),
		LogFile: l.LogFile,
		LogDir:  l.LogDir,
		Start:   l.Start,
	}
}
