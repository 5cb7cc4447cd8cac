package pac12

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pac12_vod_api_requests_total",
		Help: "Outcome of requests to the Pac-12 API",
	}, []string{
		"endpoint", // vod|vod_page|sports|schools
		"result",   // ok|request_failed|unexpected_content_type|parse_failed
	})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pac12_vod_api_request_duration_seconds",
		Help:    "Latency of requests to the Pac-12 API",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)

func observeRequest(endpoint string, err error, elapsed time.Duration) {
	apiRequestsTotal.WithLabelValues(endpoint, resultLabel(err)).Inc()
	apiRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnexpectedContentType):
		return "unexpected_content_type"
	case errors.Is(err, ErrParseFailed):
		return "parse_failed"
	default:
		return "request_failed"
	}
}
