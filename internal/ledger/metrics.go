package ledger

import (
	"github.com/prometheus/client_golang/prometheus"

	"ammledger/internal/model"
)

const (
	resultApplied  = "applied"
	resultRejected = "rejected"
)

// Metrics counts replay activity in a private registry.
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	rejections *prometheus.CounterVec
	skipped    prometheus.Counter
	malformed  prometheus.Counter
	snapshots  prometheus.Counter
	lastSeq    prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ammledger",
			Name:      "operations_total",
			Help:      "Journal operations applied, by op and result.",
		}, []string{"op", "result"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ammledger",
			Name:      "rejections_total",
			Help:      "Rejected operations by error code.",
		}, []string{"code"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ammledger",
			Name:      "skipped_total",
			Help:      "Journal operations at or below the restored checkpoint.",
		}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ammledger",
			Name:      "malformed_total",
			Help:      "Journal lines that could not be decoded.",
		}),
		snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ammledger",
			Name:      "snapshots_saved_total",
			Help:      "Snapshots persisted to the state store.",
		}),
		lastSeq: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ammledger",
			Name:      "last_seq",
			Help:      "Highest sequence number applied.",
		}),
	}
	m.registry.MustRegister(m.operations, m.rejections, m.skipped, m.malformed, m.snapshots, m.lastSeq)
	return m
}

func (m *Metrics) observeOutcome(o model.Outcome, lastSeq uint64) {
	if m == nil {
		return
	}
	if o.OK {
		m.operations.WithLabelValues(string(o.Op), resultApplied).Inc()
	} else {
		m.operations.WithLabelValues(string(o.Op), resultRejected).Inc()
		m.rejections.WithLabelValues(o.ErrorCode).Inc()
	}
	m.lastSeq.Set(float64(lastSeq))
}

func (m *Metrics) observeSkipped() {
	if m != nil {
		m.skipped.Inc()
	}
}

func (m *Metrics) observeMalformed() {
	if m != nil {
		m.malformed.Inc()
	}
}

func (m *Metrics) observeSnapshot() {
	if m != nil {
		m.snapshots.Inc()
	}
}

// WriteTextfile writes the current values in the Prometheus text format, suitable for
// the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
