// Package metrics exposes Prometheus counters for the task workflow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// StatusTransitions counts applied status changes by target status and
	// surface (status, activity).
	StatusTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "creative_tasks",
		Name:      "status_transitions_total",
		Help:      "Applied task status changes.",
	}, []string{"status", "source"})

	// WorkloadUpdates counts designer ledger operations by kind and outcome.
	WorkloadUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "creative_tasks",
		Name:      "workload_updates_total",
		Help:      "Designer workload ledger operations.",
	}, []string{"operation", "result"})

	// Notifications counts notification deliveries by type and stage outcome.
	Notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "creative_tasks",
		Name:      "notifications_total",
		Help:      "Notification persistence and push outcomes.",
	}, []string{"type", "result"})

	// NotificationsPurged counts expired notifications removed.
	NotificationsPurged = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "creative_tasks",
		Name:      "notifications_purged_total",
		Help:      "Expired notifications removed.",
	})
)

// Registry holds every collector served on /metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		StatusTransitions,
		WorkloadUpdates,
		Notifications,
		NotificationsPurged,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
