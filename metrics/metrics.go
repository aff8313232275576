package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "liff_submissions_total",
			Help: "Total number of inquiry submissions by outcome",
		},
		[]string{"outcome"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "liff_notifications_total",
			Help: "Total number of LINE push attempts by result",
		},
		[]string{"result"},
	)

	NotificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "liff_notification_duration_seconds",
			Help:    "Duration of LINE push calls in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"result"},
	)

	PersistenceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "liff_persistence_writes_total",
			Help: "Total number of inquiry writes by result",
		},
		[]string{"result"},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "liff_rate_limited_total",
			Help: "Total number of submissions rejected by the rate limiter",
		},
	)

	ArchiveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "liff_archive_writes_total",
			Help: "Total number of transcript archive writes by result",
		},
		[]string{"result"},
	)
)
