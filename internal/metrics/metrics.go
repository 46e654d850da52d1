// Package metrics объявляет метрики Prometheus сервиса.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels.
const (
	ResultSent   = "sent"
	ResultFailed = "failed"
)

var (
	// NotificationsTotal counts delivery attempts by channel and result.
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ereceipt_notifications_total",
		Help: "Receipt delivery attempts by channel and result.",
	}, []string{"channel", "result"})

	// NotificationDuration observes provider call latency by channel.
	NotificationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ereceipt_notification_duration_seconds",
		Help:    "Duration of provider calls when delivering receipts.",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel"})
)

// ObserveNotification records one delivery attempt.
func ObserveNotification(channel string, sent bool, took time.Duration) {
	result := ResultFailed
	if sent {
		result = ResultSent
	}
	NotificationsTotal.WithLabelValues(channel, result).Inc()
	NotificationDuration.WithLabelValues(channel).Observe(took.Seconds())
}
