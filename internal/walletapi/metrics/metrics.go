package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the wallet protocol endpoints.
type Metrics struct {
	// Requests by endpoint and HTTP status
	Requests *prometheus.CounterVec

	// Conditional pass fetches answered with 304
	NotModified prometheus.Counter

	// Requests rejected by the pass auth check
	AuthRejections prometheus.Counter
}

// New creates a new Metrics instance with all wallet protocol metrics registered.
func New() *Metrics {
	return &Metrics{
		Requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "campuspass_walletapi_requests_total",
			Help: "Total wallet protocol requests by endpoint and status",
		}, []string{"endpoint", "status"}),

		NotModified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campuspass_walletapi_not_modified_total",
			Help: "Total pass fetches short-circuited by If-Modified-Since",
		}),

		AuthRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campuspass_walletapi_auth_rejections_total",
			Help: "Total wallet requests rejected by the pass auth check",
		}),
	}
}

// RecordRequest records one wallet protocol request.
func (m *Metrics) RecordRequest(endpoint string, status int) {
	if m != nil {
		m.Requests.WithLabelValues(endpoint, statusLabel(status)).Inc()
	}
}

// RecordNotModified records a 304 answer to a conditional fetch.
func (m *Metrics) RecordNotModified() {
	if m != nil {
		m.NotModified.Inc()
	}
}

// RecordAuthRejection records a request rejected by the pass auth check.
func (m *Metrics) RecordAuthRejection() {
	if m != nil {
		m.AuthRejections.Inc()
	}
}

func statusLabel(status int) string {
	switch {
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
