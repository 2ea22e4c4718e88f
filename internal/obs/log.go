// Package obs holds the client's shared logger and outbound-call
// metrics. Nothing here talks to the backend.
package obs

import (
	"sync"

	"go.uber.org/zap"
)

var (
	loggerMu sync.Mutex
	logger   *zap.Logger
)

// Init configures the process logger. Verbose mode switches to the
// console encoder for interactive use; the default is JSON lines.
// Calling Init more than once keeps the first configuration.
func Init(verbose bool) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger != nil {
		return
	}
	logger = build(verbose)
}

// Logger returns the shared logger, initializing a default one if Init
// was never called.
func Logger() *zap.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		logger = build(false)
	}
	return logger
}

func build(verbose bool) *zap.Logger {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.DisableStacktrace = true
	}
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
