// internal/logging/logger.go
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogLevel represents logging levels
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// Config holds logging configuration
type Config struct {
	Level           LogLevel `json:"level"`
	Directory       string   `json:"directory"`
	AppLogFile      string   `json:"app_log_file"`
	ErrorLogFile    string   `json:"error_log_file"`
	EnableConsole   bool     `json:"enable_console"`
	EventSampleRate float64  `json:"event_sample_rate"`
}

// DefaultConfig returns default logging configuration
func DefaultConfig() *Config {
	return &Config{
		Level:           LevelInfo,
		Directory:       "logs",
		AppLogFile:      "app.log",
		ErrorLogFile:    "errors.log",
		EnableConsole:   false,
		EventSampleRate: 0.01, // 1% of processed records
	}
}

// Logger represents the global logger instance
type Logger struct {
	config      *Config
	appLogger   *slog.Logger
	errorLogger *slog.Logger

	// Event sampling
	sampleRNG   *rand.Rand
	sampleMutex sync.Mutex

	// Performance counters
	eventsLogged int64
	errorsLogged int64

	// File handles for cleanup
	appFile   *os.File
	errorFile *os.File
}

var (
	globalLogger *Logger
	once         sync.Once
)

// Initialize sets up the global logger
func Initialize(config *Config) error {
	var err error
	once.Do(func() {
		globalLogger, err = newLogger(config)
	})
	return err
}

// GetLogger returns the global logger instance
func GetLogger() *Logger {
	if globalLogger == nil {
		// Fallback to default config if not initialized
		_ = Initialize(DefaultConfig())
	}
	return globalLogger
}

// newLogger creates a new logger instance
func newLogger(config *Config) (*Logger, error) {
	if err := os.MkdirAll(config.Directory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logger := &Logger{
		config:    config,
		sampleRNG: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := logger.setupAppLogger(); err != nil {
		return nil, fmt.Errorf("failed to setup app logger: %w", err)
	}

	if err := logger.setupErrorLogger(); err != nil {
		return nil, fmt.Errorf("failed to setup error logger: %w", err)
	}

	return logger, nil
}

// setupAppLogger configures the application logger
func (l *Logger) setupAppLogger() error {
	writers := []io.Writer{}

	appPath := filepath.Join(l.config.Directory, l.config.AppLogFile)
	appFile, err := os.OpenFile(appPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open app log file: %w", err)
	}
	l.appFile = appFile
	writers = append(writers, appFile)

	// Console output goes to stderr: stdout carries the rendered records
	if l.config.EnableConsole {
		writers = append(writers, os.Stderr)
	}

	multiWriter := io.MultiWriter(writers...)

	opts := &slog.HandlerOptions{
		Level: l.getSlogLevel(),
	}

	handler := slog.NewJSONHandler(multiWriter, opts)
	l.appLogger = slog.New(handler)

	return nil
}

// setupErrorLogger configures the error logger
func (l *Logger) setupErrorLogger() error {
	errorPath := filepath.Join(l.config.Directory, l.config.ErrorLogFile)
	errorFile, err := os.OpenFile(errorPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open error log file: %w", err)
	}
	l.errorFile = errorFile

	opts := &slog.HandlerOptions{
		Level: slog.LevelWarn, // Errors and warnings only
	}

	handler := slog.NewJSONHandler(errorFile, opts)
	l.errorLogger = slog.New(handler)

	return nil
}

// getSlogLevel converts our LogLevel to slog.Level
func (l *Logger) getSlogLevel() slog.Level {
	switch l.config.Level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// shouldSampleEvent determines if a record event should be logged
func (l *Logger) shouldSampleEvent() bool {
	if l.config.Level == LevelDebug {
		return true // Always log in debug mode
	}

	l.sampleMutex.Lock()
	defer l.sampleMutex.Unlock()

	return l.sampleRNG.Float64() < l.config.EventSampleRate
}

// Application Logging Methods

// Info logs an informational message
func (l *Logger) Info(component, message string, fields ...interface{}) {
	l.appLogger.Info(message, append([]interface{}{"component", component}, fields...)...)
}

// Warn logs a warning message
func (l *Logger) Warn(component, message string, fields ...interface{}) {
	l.appLogger.Warn(message, append([]interface{}{"component", component}, fields...)...)
}

// Error logs an error message
func (l *Logger) Error(component, message string, err error, fields ...interface{}) {
	allFields := append([]interface{}{"component", component}, fields...)
	if err != nil {
		allFields = append(allFields, "error", err.Error())
	}
	l.appLogger.Error(message, allFields...)
}

// Debug logs a debug message
func (l *Logger) Debug(component, message string, fields ...interface{}) {
	l.appLogger.Debug(message, append([]interface{}{"component", component}, fields...)...)
}

// Event Logging Methods

// LogRecord logs one processed firewall record, subject to sampling
func (l *Logger) LogRecord(action, srcIP, dstIP, iface string) {
	if !l.shouldSampleEvent() {
		return
	}

	l.appLogger.Info("fw_record",
		"action", action,
		"src", srcIP,
		"dst", dstIP,
		"if", iface,
		"timestamp", time.Now().Unix(),
	)

	l.eventsLogged++
}

// LogRegistryFailure logs a failed ownership lookup
func (l *Logger) LogRegistryFailure(addr, message string) {
	l.errorLogger.Warn("registry_failure",
		"event_type", "registry_failure",
		"address", addr,
		"error", message,
		"timestamp", time.Now().Unix(),
	)
	l.errorsLogged++
}

// LogArchiveFailure logs a failed archive insert
func (l *Logger) LogArchiveFailure(ts string, err error) {
	l.errorLogger.Warn("archive_failure",
		"event_type", "archive_failure",
		"record_ts", ts,
		"error", err.Error(),
		"timestamp", time.Now().Unix(),
	)
	l.errorsLogged++
}

// GetStats returns logging statistics
func (l *Logger) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"events_logged": l.eventsLogged,
		"errors_logged": l.errorsLogged,
		"sample_rate":   l.config.EventSampleRate,
		"log_level":     string(l.config.Level),
	}
}

// Close closes all log files
func (l *Logger) Close() error {
	var lastErr error

	if l.appFile != nil {
		if err := l.appFile.Close(); err != nil {
			lastErr = err
		}
	}

	if l.errorFile != nil {
		if err := l.errorFile.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Global convenience functions

// Info logs an informational message using the global logger
func Info(component, message string, fields ...interface{}) {
	GetLogger().Info(component, message, fields...)
}

// Warn logs a warning message using the global logger
func Warn(component, message string, fields ...interface{}) {
	GetLogger().Warn(component, message, fields...)
}

// Error logs an error message using the global logger
func Error(component, message string, err error, fields ...interface{}) {
	GetLogger().Error(component, message, err, fields...)
}

// Debug logs a debug message using the global logger
func Debug(component, message string, fields ...interface{}) {
	GetLogger().Debug(component, message, fields...)
}

// LogRecord logs a processed record using the global logger
func LogRecord(action, srcIP, dstIP, iface string) {
	GetLogger().LogRecord(action, srcIP, dstIP, iface)
}

// LogRegistryFailure logs a failed ownership lookup using the global logger
func LogRegistryFailure(addr, message string) {
	GetLogger().LogRegistryFailure(addr, message)
}

// LogArchiveFailure logs a failed archive insert using the global logger
func LogArchiveFailure(ts string, err error) {
	GetLogger().LogArchiveFailure(ts, err)
}
