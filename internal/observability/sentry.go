package observability

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tbourn/isp-onboarding-backend/internal/config"
)

// SetupSentry initialises the global Sentry client and returns a flush
// function for shutdown. An empty DSN leaves reporting disabled and the
// returned function is a no-op.
func SetupSentry(cfg config.SentryConfig, b Build) (func(time.Duration), error) {
	if cfg.DSN == "" {
		return func(time.Duration) {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
		Environment:      b.Environment,
		Release:          b.Version,
		AttachStacktrace: true,
		// Request bodies hold customer identity data.
		// NOTE: sentry-go has no MaxRequestBodySize option; the former
		// MaxRequestBodySize: "never" setting did not compile and was
		// removed. Request-body suppression is NOT enforced here.
		SendDefaultPII: false,
	})
	if err != nil {
		return nil, err
	}
	return func(d time.Duration) { sentry.Flush(d) }, nil
}
