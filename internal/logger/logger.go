// Package logger holds the process-wide structured logger. Every command
// logs to a rotating file under the config directory; the HTTP server also
// writes to stderr, where log collectors may prefer JSON.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/cadence/internal/constants"
)

var (
	// Logger is the global logger instance
	Logger *log.Logger
)

// Output formats accepted by Config.Format
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatLogfmt = "logfmt"
)

type Config struct {
	// Level is a level name such as "info". Empty picks debug with Debug,
	// info when logging to stderr and warn otherwise.
	Level string
	// Format is one of FormatText, FormatJSON or FormatLogfmt. Empty is text.
	Format string
	Debug  bool
	// ConfigDir receives logs/cadence.log. Empty disables the file.
	ConfigDir string
	// Stderr mirrors every record to stderr. Debug implies it.
	Stderr bool
}

func (c Config) level() (log.Level, error) {
	if c.Level != "" {
		lvl, err := log.ParseLevel(strings.ToLower(c.Level))
		if err != nil {
			return 0, fmt.Errorf("invalid log level %q", c.Level)
		}
		return lvl, nil
	}
	switch {
	case c.Debug:
		return log.DebugLevel, nil
	case c.Stderr:
		return log.InfoLevel, nil
	}
	return log.WarnLevel, nil
}

func (c Config) formatter() (log.Formatter, error) {
	switch strings.ToLower(c.Format) {
	case "", FormatText:
		return log.TextFormatter, nil
	case FormatJSON:
		return log.JSONFormatter, nil
	case FormatLogfmt:
		return log.LogfmtFormatter, nil
	}
	return log.TextFormatter, fmt.Errorf("invalid log format %q (want %s, %s or %s)", c.Format, FormatText, FormatJSON, FormatLogfmt)
}

// New builds a logger writing to w with the level and format from cfg.
// It does not touch the global Logger.
func New(w io.Writer, cfg Config) (*log.Logger, error) {
	lvl, err := cfg.level()
	if err != nil {
		return nil, err
	}
	formatter, err := cfg.formatter()
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           lvl,
		Prefix:          constants.AppName,
		Formatter:       formatter,
	}), nil
}

// Init opens the sinks cfg asks for and replaces the global logger. With no
// sink configured records are discarded.
func Init(cfg Config) error {
	var sinks []io.Writer
	if cfg.ConfigDir != "" {
		logDir := filepath.Join(cfg.ConfigDir, "logs")
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return err
		}
		sinks = append(sinks, &lumberjack.Logger{
			Filename:   filepath.Join(logDir, constants.AppName+".log"),
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	if cfg.Stderr || cfg.Debug {
		sinks = append(sinks, os.Stderr)
	}

	var w io.Writer = io.Discard
	if len(sinks) > 0 {
		w = io.MultiWriter(sinks...)
	}
	l, err := New(w, cfg)
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error message
func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

// Fatal logs a fatal error and exits
func Fatal(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Fatal(msg, keyvals...)
	}
	os.Exit(1)
}
