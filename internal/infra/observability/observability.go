// Package observability exposes Prometheus metrics for the escrow
// ledger. Metrics are fed from the same change records the off-chain
// indexers consume, so instrumenting a deployment is just attaching
// one more event sink.
package observability

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/simpledeal-network/simpledeal/internal/domain"
)

// Metrics holds the ledger's Prometheus collectors.
type Metrics struct {
	ItemsCreated   prometheus.Counter
	ItemsFunded    prometheus.Counter
	ItemsPaid      prometheus.Counter
	ItemsDisputed  prometheus.Counter
	ItemsResolved  prometheus.Counter
	ItemsCancelled prometheus.Counter
	Replies        prometheus.Counter
	EscrowBalance  prometheus.Gauge
	FeesCollected  prometheus.Counter
}

// NewMetrics registers the ledger's collectors with the registerer.
// Pass prometheus.DefaultRegisterer in production; a fresh registry in
// tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ItemsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "simpledeal_items_created_total",
			Help: "Items created through the deposit callback.",
		}),
		ItemsFunded: factory.NewCounter(prometheus.CounterOpts{
			Name: "simpledeal_items_funded_total",
			Help: "Items whose provider deposit was matched.",
		}),
		ItemsPaid: factory.NewCounter(prometheus.CounterOpts{
			Name: "simpledeal_items_paid_total",
			Help: "Items paid out by their seeker.",
		}),
		ItemsDisputed: factory.NewCounter(prometheus.CounterOpts{
			Name: "simpledeal_items_disputed_total",
			Help: "Items frozen for arbitration.",
		}),
		ItemsResolved: factory.NewCounter(prometheus.CounterOpts{
			Name: "simpledeal_items_resolved_total",
			Help: "Disputed items settled by the maintainer.",
		}),
		ItemsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "simpledeal_items_cancelled_total",
			Help: "Items cancelled pre-funding.",
		}),
		Replies: factory.NewCounter(prometheus.CounterOpts{
			Name: "simpledeal_replies_total",
			Help: "Provider replies posted on open items.",
		}),
		EscrowBalance: factory.NewGauge(prometheus.GaugeOpts{
			Name: "simpledeal_escrow_balance",
			Help: "Value currently custodied for non-terminal items.",
		}),
		FeesCollected: factory.NewCounter(prometheus.CounterOpts{
			Name: "simpledeal_fees_collected_total",
			Help: "Fees disbursed to the maintainer.",
		}),
	}
}

// Record implements domain.EventSink.
func (m *Metrics) Record(ev domain.Event) {
	switch ev.Kind {
	case domain.EventNewItem:
		m.ItemsCreated.Inc()
		m.EscrowBalance.Add(fieldAmount(ev, "amount"))
	case domain.EventReplyItem:
		m.Replies.Inc()
	case domain.EventFundItem:
		m.ItemsFunded.Inc()
		m.EscrowBalance.Add(fieldAmount(ev, "amount"))
	case domain.EventPayoutItem:
		m.ItemsPaid.Inc()
		fee := fieldAmount(ev, "maintainer_payout")
		m.FeesCollected.Add(fee)
		m.EscrowBalance.Sub(fieldAmount(ev, "provider_payout") + fee)
	case domain.EventResolveItem:
		m.ItemsResolved.Inc()
		fee := fieldAmount(ev, "maintainer_payout")
		m.FeesCollected.Add(fee)
		m.EscrowBalance.Sub(fieldAmount(ev, "seeker_payout") + fieldAmount(ev, "provider_payout") + fee)
	case domain.EventDisputeItem:
		m.ItemsDisputed.Inc()
	case domain.EventCancelItem:
		m.ItemsCancelled.Inc()
		m.EscrowBalance.Sub(fieldAmount(ev, "refund"))
	}
}

// fieldAmount parses a value field into a float64 for gauge math.
// Precision loss past 53 bits is acceptable for metrics.
func fieldAmount(ev domain.Event, key string) float64 {
	s, ok := ev.Fields[key]
	if !ok {
		return 0
	}
	v, err := domain.ParseValue(s)
	if err != nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v.BigInt()).Float64()
	return f
}

var _ domain.EventSink = (*Metrics)(nil)
