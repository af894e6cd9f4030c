// Package logging builds the application logger: leveled logrus output on
// stdout plus rotating combined and error-only log files.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Rotation struct {
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

type Config struct {
	Level      string
	File       string
	ErrorFile  string
	JSON       bool
	NoTerminal bool
	Rotation   Rotation
}

// DefaultLevel is debug in development and warn everywhere else.
func DefaultLevel(development bool) string {
	if development {
		return "debug"
	}
	return "warn"
}

// New returns a configured logger. An unknown level falls back to info.
func New(cfg Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	var writers []io.Writer
	if !cfg.NoTerminal {
		writers = append(writers, os.Stdout)
	}
	if cfg.File != "" {
		writers = append(writers, rotating(cfg.File, cfg.Rotation))
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}
	logger.SetOutput(io.MultiWriter(writers...))

	if cfg.ErrorFile != "" {
		logger.AddHook(&errorFileHook{
			writer:    rotating(cfg.ErrorFile, cfg.Rotation),
			formatter: logger.Formatter,
		})
	}

	return logger
}

// Discard is a logger for tests.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func rotating(path string, r Rotation) io.Writer {
	if r.MaxSize == 0 {
		r.MaxSize = 10
	}
	if r.MaxBackups == 0 {
		r.MaxBackups = 5
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    r.MaxSize,
		MaxBackups: r.MaxBackups,
		MaxAge:     r.MaxAge,
		Compress:   r.Compress,
	}
}

// errorFileHook copies error-level entries to a separate file.
type errorFileHook struct {
	writer    io.Writer
	formatter logrus.Formatter
}

func (h *errorFileHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

func (h *errorFileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(line)
	return err
}
