// Package logger provides structured logging using Zap.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init initializes the global logger. In "production" it writes JSON;
// otherwise it uses the human-readable console encoder. An empty or unknown
// level keeps the encoder's default (info for production, debug otherwise).
func Init(env, level string) {
	once.Do(func() {
		cfg := zap.NewDevelopmentConfig()
		if env == "production" {
			cfg = zap.NewProductionConfig()
		}
		if lvl, err := zapcore.ParseLevel(level); err == nil && level != "" {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}

		base, err := cfg.Build()
		if err != nil {
			base = zap.NewNop()
		}
		sugar = base.Sugar()
	})
}

// Get returns the global sugared logger.
// If Init has not been called, it initializes a development logger.
func Get() *zap.SugaredLogger {
	Init("development", "")
	return sugar
}

// Named returns a child of the global logger scoped to a component.
func Named(component string) *zap.SugaredLogger {
	return Get().Named(component)
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
