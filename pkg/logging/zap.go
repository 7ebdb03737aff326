// Package logging adapts zap to the crmhook.Logger collaborator contract.
package logging

import (
	"go.uber.org/zap"
)

// ZapLogger implements crmhook.Logger on top of a zap.Logger.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger wraps an existing zap logger.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: logger}
}

// NewDevelopment creates a logger with zap's development defaults, the
// usual choice while debugging portal exchanges.
func NewDevelopment() (*ZapLogger, error) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}

	return &ZapLogger{logger: logger}, nil
}

// Debug implements crmhook.Logger.Debug.
func (l *ZapLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, zapFields(fields)...)
}

// Info implements crmhook.Logger.Info.
func (l *ZapLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, zapFields(fields)...)
}

// Warn implements crmhook.Logger.Warn.
func (l *ZapLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, zapFields(fields)...)
}

// Error implements crmhook.Logger.Error.
func (l *ZapLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, zapFields(fields)...)
}

func zapFields(fields map[string]interface{}) []zap.Field {
	converted := make([]zap.Field, 0, len(fields))

	for key, value := range fields {
		converted = append(converted, zap.Any(key, value))
	}

	return converted
}
