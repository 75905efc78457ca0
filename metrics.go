package atmos

import "github.com/prometheus/client_golang/prometheus"

const metricNamespace = "atmos"

// Bootstrap outcomes reported by the subtenant_requests counter.
const (
	SubtenantIssued      = "issued"
	SubtenantRejected    = "rejected"
	SubtenantMissing     = "missing_header"
	SubtenantUnreachable = "unreachable"
	SubtenantCancelled   = "cancelled"
)

// Metrics exposes signing and bootstrap counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	SigningFailures   prometheus.Counter
	SubtenantRequests *prometheus.CounterVec
}

// NewMetrics creates the driver counters and registers them on reg when reg
// is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SigningFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: "signer",
			Name:      "failures_total",
			Help:      "Requests sent without x-emc-signature because the secret could not be used",
		}),
		SubtenantRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: "session",
			Name:      "subtenant_requests_total",
			Help:      "Subtenant bootstrap requests by outcome",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.SigningFailures, m.SubtenantRequests)
	}
	return m
}

func (m *Metrics) signingFailed() {
	if m == nil {
		return
	}
	m.SigningFailures.Inc()
}

func (m *Metrics) subtenantResult(result string) {
	if m == nil {
		return
	}
	m.SubtenantRequests.WithLabelValues(result).Inc()
}
