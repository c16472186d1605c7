package config

import (
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// InitSentry initializes error reporting. It reports whether Sentry is enabled.
func InitSentry(cfg AppConfig, logger *zap.Logger) bool {
	if cfg.SentryDSN == "" {
		logger.Info("sentry disabled: SENTRY_DSN not set")
		return false
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		AttachStacktrace: true,
	})
	if err != nil {
		logger.Warn("sentry initialization failed", zap.Error(err))
		return false
	}

	logger.Info("sentry initialized")
	return true
}

// FlushSentry waits for buffered events before shutdown
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
