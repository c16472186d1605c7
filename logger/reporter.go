package logger

import (
	"github.com/getsentry/sentry-go"
)

// Reporter forwards errors that need operator attention to an external sink.
type Reporter interface {
	Report(err error, tags map[string]string)
}

// NopReporter discards reports.
type NopReporter struct{}

func (NopReporter) Report(error, map[string]string) {}

// SentryReporter sends reports to Sentry with the given tags on the scope.
type SentryReporter struct{}

func (SentryReporter) Report(err error, tags map[string]string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}
