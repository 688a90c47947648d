package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger handles leveled logging to the console with optional file output.
// It keeps a printf-style API on top of zerolog.
type Logger struct {
	Verbose bool

	mu      sync.Mutex
	console io.Writer
	fileLog *os.File
	zl      zerolog.Logger
}

// New creates a new Logger writing to stderr.
func New(verbose bool) *Logger {
	return NewWithWriter(os.Stderr, verbose)
}

// NewWithWriter creates a Logger that writes console output to w.
func NewWithWriter(w io.Writer, verbose bool) *Logger {
	l := &Logger{
		Verbose: verbose,
		console: zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.TimeOnly,
			NoColor:    w != os.Stderr && w != os.Stdout,
		},
	}
	l.rebuild()
	return l
}

// rebuild recreates the zerolog instance from the current sinks.
// Must be called with mu held or before the logger is shared.
func (l *Logger) rebuild() {
	consoleLevel := zerolog.InfoLevel
	if l.Verbose {
		consoleLevel = zerolog.DebugLevel
	}

	writers := []io.Writer{&zerolog.FilteredLevelWriter{
		Writer: zerolog.LevelWriterAdapter{Writer: l.console},
		Level:  consoleLevel,
	}}
	if l.fileLog != nil {
		// The file always receives debug output, even in non-verbose mode.
		writers = append(writers, l.fileLog)
	}

	l.zl = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
}

// SetFileLog enables logging to a file
func (l *Logger) SetFileLog(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.fileLog = f
	l.rebuild()
	return nil
}

// Close closes the log file if open
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLog == nil {
		return nil
	}
	err := l.fileLog.Close()
	l.fileLog = nil
	l.rebuild()
	return err
}

// Zerolog exposes the underlying structured logger.
func (l *Logger) Zerolog() zerolog.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.zl
}

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(zerolog.InfoLevel, format, args...)
}

// Debug logs detailed messages; shown on the console only in verbose mode
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(zerolog.DebugLevel, format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(zerolog.WarnLevel, format, args...)
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(zerolog.ErrorLevel, format, args...)
}

func (l *Logger) log(level zerolog.Level, format string, args ...interface{}) {
	l.mu.Lock()
	zl := l.zl
	l.mu.Unlock()

	zl.WithLevel(level).Msgf(format, args...)
}
