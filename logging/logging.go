// Package logging builds the reporter's diagnostic logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ansel1/marquee/config"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a configured logger and whatever it holds open.
type Logger struct {
	zerolog.Logger
	file *lumberjack.Logger
}

// New builds a logger from the log settings.
//
// Every entry carries a session id, so runs sharing a log file can be told
// apart. With a log file, JSON entries go to a rotating file. Entries also
// go to console when it is set; the live display owns stderr as much as
// stdout, so callers pass nil there.
func New(cfg config.LogSettings, console io.Writer) (*Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}

	var writers []io.Writer
	l := &Logger{}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		l.file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxAge:     cfg.MaxAgeDays,
			MaxBackups: cfg.MaxBackups,
			LocalTime:  true,
		}
		writers = append(writers, l.file)
	}
	if console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
	}

	switch len(writers) {
	case 0:
		l.Logger = zerolog.Nop()
		return l, nil
	case 1:
		l.Logger = zerolog.New(writers[0])
	default:
		l.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...))
	}
	l.Logger = l.Logger.Level(level).With().
		Timestamp().
		Str("session", uuid.NewString()).
		Logger()
	return l, nil
}

// Filename returns the log file path, or "" when not logging to a file.
func (l *Logger) Filename() string {
	if l.file == nil {
		return ""
	}
	return l.file.Filename
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
