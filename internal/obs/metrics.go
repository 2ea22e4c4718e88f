package obs

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outbound HTTP metrics. The client has no listener; these are gathered
// from the default registry by whoever embeds the library.
var (
	outboundInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fundtracker_outbound_in_flight_requests",
		Help: "In-flight calls to the fund-tracking backend.",
	})

	outboundRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundtracker_outbound_requests_total",
			Help: "Total calls to the fund-tracking backend.",
		},
		[]string{"operation", "status"},
	)

	outboundRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fundtracker_outbound_request_duration_seconds",
			Help:    "Backend call latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	registerOnce sync.Once
)

// RegisterMetrics registers the outbound metrics in the default
// registry. Safe to call more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(outboundInFlight, outboundRequestsTotal, outboundRequestDuration)
	})
}

// OutboundStarted marks one backend call in flight.
func OutboundStarted() { outboundInFlight.Inc() }

// OutboundDone releases the in-flight mark.
func OutboundDone() { outboundInFlight.Dec() }

// ObserveOutbound records one completed backend call. Status is the
// HTTP status code as a string, or "error" when no response arrived.
func ObserveOutbound(operation, status string, d time.Duration) {
	outboundRequestsTotal.WithLabelValues(operation, status).Inc()
	outboundRequestDuration.WithLabelValues(operation, status).Observe(d.Seconds())
}
