// Package metrics exposes the portal's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// UploadsTotal counts accepted video uploads per tenant.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_uploads_total",
		Help: "Accepted video uploads.",
	}, []string{"tenant"})

	// PipelineRunsTotal counts finished processing pipelines by outcome.
	PipelineRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_pipeline_runs_total",
		Help: "Processing pipeline runs by terminal outcome.",
	}, []string{"result"})

	// ProgressEventsTotal counts progress events published to subscribers.
	ProgressEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_progress_events_total",
		Help: "Progress events published on the event bus.",
	})

	// SubscribersActive tracks live event stream subscriptions.
	SubscribersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pulse_event_subscribers_active",
		Help: "Currently subscribed progress event streams.",
	})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
