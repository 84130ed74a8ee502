// Package observability holds the service's Prometheus instrumentation.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "loportal",
		Subsystem: "persistence",
		Name:      "last_activity_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity persisted to Postgres.",
	})
	activitiesLoggedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loportal",
		Subsystem: "api",
		Name:      "activities_logged_total",
		Help:      "Number of activities logged, labeled by activity type.",
	}, []string{"type"})
	signInCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loportal",
		Subsystem: "auth",
		Name:      "sign_ins_total",
		Help:      "Number of sign-in attempts, labeled by outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(activityPersistGauge, activitiesLoggedCounter, signInCounter)
}

// RecordActivityPersisted updates the persistence watermark gauge.
func RecordActivityPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityPersistGauge.Set(float64(ts.Unix()))
}

// RecordActivityLogged increments the per-type activity counter.
func RecordActivityLogged(activityType string) {
	activitiesLoggedCounter.WithLabelValues(activityType).Inc()
}

// RecordSignIn increments the sign-in counter with "success" or "failure".
func RecordSignIn(outcome string) {
	signInCounter.WithLabelValues(outcome).Inc()
}
