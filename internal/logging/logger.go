package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation controls how the log file is rotated. Zero values fall back to
// lumberjack defaults.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Init initializes the global logger with default rotation. If logFilePath is
// non-empty, logs go to both stdout and the file. level can be "debug",
// "info", "warn" or "error".
func Init(logFilePath, level string) (func(), error) {
	return InitWithRotation(logFilePath, level, Rotation{})
}

// InitWithRotation is Init with explicit file rotation settings.
func InitWithRotation(logFilePath, level string, rot Rotation) (func(), error) {
	zerolog.SetGlobalLevel(parseLevel(level))

	writers := []io.Writer{os.Stdout}
	var rotator *lumberjack.Logger
	if logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		rotator = &lumberjack.Logger{
			Filename:   logFilePath,
			MaxSize:    rot.MaxSizeMB,
			MaxBackups: rot.MaxBackups,
			MaxAge:     rot.MaxAgeDays,
			Compress:   rot.Compress,
		}
		// lumberjack opens lazily; touch the file now so permission problems surface at startup
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			return nil, err
		}
		_ = f.Close()
		writers = append(writers, rotator)
	}
	Log = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Str("service", "notifyd").Logger()
	return func() {
		if rotator != nil {
			_ = rotator.Close()
		}
	}, nil
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Log is the package-global logger configured by Init
var Log = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Get returns a pointer to the package-global logger
func Get() *zerolog.Logger {
	return &Log
}

// Dispatch returns a child logger tagged with the event type and recipient
// of one notification.
func Dispatch(event, recipient string) zerolog.Logger {
	return Log.With().Str("event", event).Str("recipient", recipient).Logger()
}
