package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the enrollment module.
type Metrics struct {
	// Allocation outcomes by campus and result
	AllocationOutcome *prometheus.CounterVec

	// Retries consumed per successful allocation
	AllocationAttempts prometheus.Histogram

	// Passes issued or reissued, by campus
	PassesIssued *prometheus.CounterVec
}

// New creates a new Metrics instance with all enrollment module metrics registered.
func New() *Metrics {
	return &Metrics{
		AllocationOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "campuspass_enrollment_allocations_total",
			Help: "Total student ID allocation outcomes by campus and result",
		}, []string{"campus", "result"}), // result: "allocated", "capacity_exceeded", "contention", "error"

		AllocationAttempts: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "campuspass_enrollment_allocation_attempts",
			Help:    "Create attempts consumed per successful allocation",
			Buckets: []float64{1, 2, 3},
		}),

		PassesIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "campuspass_enrollment_passes_issued_total",
			Help: "Total passes issued or reissued by campus",
		}, []string{"campus"}),
	}
}

// RecordAllocation records an allocation outcome for a campus.
func (m *Metrics) RecordAllocation(campus, result string) {
	if m != nil {
		m.AllocationOutcome.WithLabelValues(campus, result).Inc()
	}
}

// ObserveAttempts records how many create attempts a successful allocation took.
func (m *Metrics) ObserveAttempts(attempts int) {
	if m != nil {
		m.AllocationAttempts.Observe(float64(attempts))
	}
}

// RecordPassIssued records a pass issuance for a campus.
func (m *Metrics) RecordPassIssued(campus string) {
	if m != nil {
		m.PassesIssued.WithLabelValues(campus).Inc()
	}
}
