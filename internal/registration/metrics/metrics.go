package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registration directory.
type Metrics struct {
	// Register outcomes: "created", "consolidated", "noop", "rejected"
	Registrations *prometheus.CounterVec

	// Unregister outcomes: "removed", "partial", "not_found"
	Unregistrations *prometheus.CounterVec

	// Rows deleted by the consolidation step of a register call
	ConsolidatedRows prometheus.Counter
}

// New creates a new Metrics instance with all registration directory metrics registered.
func New() *Metrics {
	return &Metrics{
		Registrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "campuspass_registration_registers_total",
			Help: "Total device registration outcomes by result",
		}, []string{"result"}),

		Unregistrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "campuspass_registration_unregisters_total",
			Help: "Total device unregistration outcomes by result",
		}, []string{"result"}),

		ConsolidatedRows: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campuspass_registration_consolidated_rows_total",
			Help: "Total stale registration rows deleted during consolidation",
		}),
	}
}

// RecordRegister records a register outcome.
func (m *Metrics) RecordRegister(result string) {
	if m != nil {
		m.Registrations.WithLabelValues(result).Inc()
	}
}

// RecordUnregister records an unregister outcome.
func (m *Metrics) RecordUnregister(result string) {
	if m != nil {
		m.Unregistrations.WithLabelValues(result).Inc()
	}
}

// RecordConsolidatedRows counts rows deleted while collapsing a serial to one registration.
func (m *Metrics) RecordConsolidatedRows(n int) {
	if m != nil && n > 0 {
		m.ConsolidatedRows.Add(float64(n))
	}
}
