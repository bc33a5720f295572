package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

var (
	mu     sync.RWMutex
	logger *zap.SugaredLogger
)

// Init builds the global logger. ENV=production selects the JSON production
// config; anything else gets the human-readable development config.
func Init(env string) error {
	var (
		base *zap.Logger
		err  error
	)
	if env == "production" {
		base, err = zap.NewProduction()
	} else {
		base, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}
	Set(base)
	return nil
}

// Set replaces the global logger, e.g. with zap.NewNop() in tests.
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l.Sugar()
}

// L returns the global logger, initializing it from ENV on first use.
func L() *zap.SugaredLogger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		return l
	}
	if err := Init(os.Getenv("ENV")); err != nil {
		Set(zap.NewNop())
	}
	return L()
}

// Sync flushes buffered entries.
func Sync() error {
	return L().Sync()
}

// Info is a shorthand for L().Infow
func Info(msg string, keysAndValues ...any) {
	L().Infow(msg, keysAndValues...)
}

// Warn is a shorthand for L().Warnw
func Warn(msg string, keysAndValues ...any) {
	L().Warnw(msg, keysAndValues...)
}

// Error is a shorthand for L().Errorw
func Error(msg string, keysAndValues ...any) {
	L().Errorw(msg, keysAndValues...)
}

// Debug is a shorthand for L().Debugw
func Debug(msg string, keysAndValues ...any) {
	L().Debugw(msg, keysAndValues...)
}
