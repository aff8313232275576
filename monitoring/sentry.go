// Package monitoring reports failures to an external error tracker.
package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// Reporter receives errors that were handled but need operator attention.
type Reporter interface {
	CaptureException(err error, tags map[string]string)
	Flush(timeout time.Duration) bool
	Enabled() bool
}

type sentryReporter struct {
	hub *sentry.Hub
}

// NewSentry initializes the global sentry client. An empty dsn yields a
// no-op reporter.
func NewSentry(dsn, environment string) (Reporter, error) {
	if dsn == "" {
		return Nop(), nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	}); err != nil {
		return nil, err
	}
	return &sentryReporter{hub: sentry.CurrentHub()}, nil
}

func (r *sentryReporter) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		r.hub.CaptureException(err)
	})
}

func (r *sentryReporter) Flush(timeout time.Duration) bool { return r.hub.Flush(timeout) }

func (r *sentryReporter) Enabled() bool { return true }

type nopReporter struct{}

func Nop() Reporter { return nopReporter{} }

func (nopReporter) CaptureException(error, map[string]string) {}
func (nopReporter) Flush(time.Duration) bool                  { return true }
func (nopReporter) Enabled() bool                             { return false }
