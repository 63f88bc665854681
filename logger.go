package strata

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger   *zap.Logger
	loggerMu sync.RWMutex
)

// Logger returns the library's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// SetLogger installs a logger for the whole library. Pass nil to restore
// the default no-op logger.
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

// CleanupLogger returns the logger used for leak diagnostics, such as table
// handles that were never released. Kept separate so hosts can raise or
// silence leak warnings independently of normal logging.
func CleanupLogger() *zap.Logger {
	return Logger().Named("cleanup")
}
