// Package metrics registers the Prometheus collectors shared by the API
// and worker processes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SyncPasses counts completed sync passes by result (success or failed).
	SyncPasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopmirror_sync_passes_total",
		Help: "Sync passes completed, by result.",
	}, []string{"result"})

	// EntitiesReconciled counts rows reconciled into the mirror by entity.
	EntitiesReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopmirror_entities_reconciled_total",
		Help: "Entities reconciled into the mirror, by entity.",
	}, []string{"entity"})

	// QueueTasks counts consumed ingestion tasks by outcome
	// (completed, retried or dropped).
	QueueTasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopmirror_queue_tasks_total",
		Help: "Ingestion tasks consumed, by outcome.",
	}, []string{"outcome"})

	// APIRetries counts retried Shopify Admin API requests by reason
	// (rate_limited or transport).
	APIRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopmirror_api_retries_total",
		Help: "Shopify Admin API request retries, by reason.",
	}, []string{"reason"})
)

// Handler serves the default registry for GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
