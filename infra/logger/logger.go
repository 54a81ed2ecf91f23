// Package logger wraps a global zap logger for the demo server.
// Card numbers must never be logged unmasked; pass them through
// gateway.CreditCard.Masked before adding them as fields.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global *zap.Logger
	once   sync.Once
)

// Init builds the global logger. Level accepts the usual zap level
// names; anything unparseable falls back to info. Development mode
// switches to the console encoder.
func Init(level string, development bool) {
	once.Do(func() {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			lvl = zapcore.InfoLevel
		}

		var cfg zap.Config
		if development {
			cfg = zap.NewDevelopmentConfig()
		} else {
			cfg = zap.NewProductionConfig()
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)

		logger, err := cfg.Build(zap.AddCallerSkip(1))
		if err != nil {
			logger = zap.NewNop()
		}
		global = logger
	})
}

// L returns the global logger, initializing a default one when Init
// was never called.
func L() *zap.Logger {
	if global == nil {
		Init("info", false)
	}
	return global
}

// SetLogger replaces the global logger. Tests use it to install an
// observed logger.
func SetLogger(l *zap.Logger) {
	once.Do(func() {})
	global = l
}

// Sync flushes buffered log entries
func Sync() {
	_ = L().Sync()
}

func Debug(msg string, fields ...zap.Field) {
	L().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	L().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	L().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	L().Error(msg, fields...)
}
