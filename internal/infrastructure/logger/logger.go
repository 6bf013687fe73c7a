package logger

import (
	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/config"

	"go.uber.org/zap"
)

// Logger wraps zap logger with additional functionality
type Logger struct {
	*zap.Logger
	sugar *zap.SugaredLogger
}

// NewLogger creates a new logger instance
func NewLogger(cfg *config.Config) (*Logger, error) {
	var zapConfig zap.Config

	if cfg.App.Env == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Set log level
	level, err := zap.ParseAtomicLevel(cfg.App.LogLevel)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	// Build logger
	zapLogger, err := zapConfig.Build(
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zap.ErrorLevel),
	)
	if err != nil {
		return nil, err
	}

	return newLogger(zapLogger), nil
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return newLogger(zap.NewNop())
}

// FromZap wraps an existing zap logger
func FromZap(l *zap.Logger) *Logger {
	return newLogger(l)
}

func newLogger(l *zap.Logger) *Logger {
	return &Logger{
		Logger: l,
		sugar:  l.Sugar(),
	}
}

// Info logs info level message
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.Logger.Info(msg, fields...)
}

// Infof logs info level formatted message
func (l *Logger) Infof(template string, args ...interface{}) {
	l.sugar.Infof(template, args...)
}

// Debug logs debug level message
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.Logger.Debug(msg, fields...)
}

// Warn logs warning level message
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.Logger.Warn(msg, fields...)
}

// Error logs error level message
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.Logger.Error(msg, fields...)
}

// Errorf logs error level formatted message
func (l *Logger) Errorf(template string, args ...interface{}) {
	l.sugar.Errorf(template, args...)
}

// With adds fields to logger
func (l *Logger) With(fields ...zap.Field) *Logger {
	return newLogger(l.Logger.With(fields...))
}

// WithComponent adds component field to logger
func (l *Logger) WithComponent(name string) *Logger {
	return l.With(zap.String("component", name))
}

// WithEvent adds event type and id fields to logger
func (l *Logger) WithEvent(event entity.WebSocketEvent) *Logger {
	fields := []zap.Field{zap.String("event_type", string(event.Type))}
	if event.ID != "" {
		fields = append(fields, zap.String("event_id", event.ID))
	}
	return l.With(fields...)
}

// WithListener adds listener id field to logger
func (l *Logger) WithListener(id string) *Logger {
	return l.With(zap.String("listener_id", id))
}

// WithError adds error field to logger
func (l *Logger) WithError(err error) *Logger {
	return l.With(zap.Error(err))
}

// Sync flushes buffered log entries
func (l *Logger) Sync() error {
	return l.Logger.Sync()
}
