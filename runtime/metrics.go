package runtime

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iov-one/custody"
)

// Metrics counts what the runtime executes. A nil *Metrics is valid and
// collects nothing.
type Metrics struct {
	instructions *prometheus.CounterVec
	transactions *prometheus.CounterVec
	duration     prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		instructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "custody",
			Subsystem: "runtime",
			Name:      "program_calls_total",
			Help:      "Number of program calls, nested invocations included.",
		}, []string{"program"}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "custody",
			Subsystem: "runtime",
			Name:      "transactions_total",
			Help:      "Number of executed transactions by result code.",
		}, []string{"code"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "custody",
			Subsystem: "runtime",
			Name:      "transaction_duration_seconds",
			Help:      "Time spent executing a transaction.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	for _, c := range []prometheus.Collector{m.instructions, m.transactions, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) instruction(programID custody.Pubkey) {
	if m == nil {
		return
	}
	m.instructions.WithLabelValues(programID.String()).Inc()
}

func (m *Metrics) observe(code uint32, d time.Duration) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(strconv.FormatUint(uint64(code), 10)).Inc()
	m.duration.Observe(d.Seconds())
}
