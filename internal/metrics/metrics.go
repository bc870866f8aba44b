// Package metrics registers the application's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CapturesTotal counts finished capture attempts by outcome
	// (success, rejected, failed).
	CapturesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsmart_captures_total",
		Help: "Finished expense capture attempts by outcome.",
	}, []string{"outcome"})

	// InsightRequestsTotal counts analysis runs by outcome
	// (success, empty_ledger, empty_reply, failed).
	InsightRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsmart_insight_requests_total",
		Help: "Finished insight analysis runs by outcome.",
	}, []string{"outcome"})

	// TranscriptionsTotal counts voice transcriptions by outcome.
	TranscriptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsmart_transcriptions_total",
		Help: "Voice transcription attempts by outcome.",
	}, []string{"outcome"})

	// HTTPRequestsTotal counts API requests by method, path and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finsmart_http_requests_total",
		Help: "HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})
)

// Handler exposes the default registry for the /metrics route.
func Handler() http.Handler {
	return promhttp.Handler()
}
