// Package output provides console and file logging for the branch engine.
// Console output is human-facing and lightly styled; file output goes
// through slog with lumberjack rotation so long-running callers keep
// bounded logs.
package output

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Splog provides structured logging and output
type Splog struct {
	writer     io.Writer
	fileLogger *slog.Logger
	logWriter  io.WriteCloser
	debugMode  bool
	styled     bool
}

// NewSplog creates a console-only splog. Debug messages are enabled when
// the DEBUG environment variable is set.
func NewSplog() *Splog {
	return &Splog{
		writer:    os.Stdout,
		debugMode: os.Getenv("DEBUG") != "",
		styled:    isatty.IsTerminal(os.Stdout.Fd()),
	}
}

// NewSplogWithFile creates a splog that also writes every message to a
// rotated log file.
func NewSplogWithFile(logFilePath string) (*Splog, error) {
	splog := NewSplog()
	if logFilePath == "" {
		return splog, nil
	}

	logDir := filepath.Dir(logFilePath)
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rotated := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	splog.logWriter = rotated
	splog.fileLogger = slog.New(slog.NewTextHandler(rotated, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	return splog, nil
}

// Close flushes and closes the file log, if any.
func (s *Splog) Close() error {
	if s.logWriter != nil {
		return s.logWriter.Close()
	}
	return nil
}

// Info writes an info message
func (s *Splog) Info(format string, args ...interface{}) {
	fmt.Fprintf(s.writer, format+"\n", args...)
	s.toFile(slog.LevelInfo, format, args...)
}

// Warn writes a warning message
func (s *Splog) Warn(format string, args ...interface{}) {
	fmt.Fprintf(s.writer, s.style(warnStyle, "warning: ")+format+"\n", args...)
	s.toFile(slog.LevelWarn, format, args...)
}

// Error writes an error message
func (s *Splog) Error(format string, args ...interface{}) {
	fmt.Fprintf(s.writer, s.style(errorStyle, "error: ")+format+"\n", args...)
	s.toFile(slog.LevelError, format, args...)
}

// Debug writes a debug message, shown only when DEBUG is set. Always
// logged to the file when file logging is on.
func (s *Splog) Debug(format string, args ...interface{}) {
	if s.debugMode {
		fmt.Fprintf(s.writer, s.style(debugStyle, "debug: ")+format+"\n", args...)
	}
	s.toFile(slog.LevelDebug, format, args...)
}

// Tip writes a suggestion message
func (s *Splog) Tip(format string, args ...interface{}) {
	fmt.Fprintf(s.writer, s.style(tipStyle, "tip: ")+format+"\n", args...)
}

// Newline writes a newline
func (s *Splog) Newline() {
	fmt.Fprintln(s.writer)
}

func (s *Splog) toFile(level slog.Level, format string, args ...interface{}) {
	if s.fileLogger != nil {
		s.fileLogger.Log(context.Background(), level, fmt.Sprintf(format, args...))
	}
}
