package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the ledger counters exported on /metrics.
type Metrics struct {
	ExpensesRecorded    *prometheus.CounterVec
	ExpensesDeleted     prometheus.Counter
	SettlementsRecorded *prometheus.CounterVec
	BalanceLookups      *prometheus.CounterVec
	SplitRenormalized   prometheus.Counter
	LedgerAudits        *prometheus.CounterVec
	RPCDuration         *prometheus.HistogramVec
}

// NewMetrics creates the counters and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ExpensesRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "expenses_recorded_total",
			Help:      "Expenses added or edited, by split mode.",
		}, []string{"mode"}),
		ExpensesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "expenses_deleted_total",
			Help:      "Expenses tombstoned.",
		}),
		SettlementsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "settlements_recorded_total",
			Help:      "Settlements recorded, by initial status.",
		}, []string{"status"}),
		BalanceLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "balance_lookups_total",
			Help:      "GetBalances calls, by memo result (hit or miss).",
		}, []string{"result"}),
		SplitRenormalized: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "split_renormalized_total",
			Help:      "Splits that failed the sum check and were normalized again.",
		}),
		LedgerAudits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "splitledger",
			Name:      "ledger_audits_total",
			Help:      "Ledger audits run, by resulting status.",
		}, []string{"status"}),
		RPCDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "splitledger",
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency, by procedure and Connect code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
	}
}

// Observe records one RPC call. It satisfies middleware.RPCObserver.
func (m *Metrics) Observe(procedure, code string, duration time.Duration) {
	m.RPCDuration.WithLabelValues(procedure, code).Observe(duration.Seconds())
}
