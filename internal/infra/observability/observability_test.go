package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/simpledeal-network/simpledeal/internal/domain"
)

func TestRecord_CountersAndEscrowGauge(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.Record(domain.Event{Kind: domain.EventNewItem, Fields: map[string]string{"amount": "103"}})
	m.Record(domain.Event{Kind: domain.EventReplyItem})
	m.Record(domain.Event{Kind: domain.EventFundItem, Fields: map[string]string{"amount": "103"}})
	m.Record(domain.Event{Kind: domain.EventPayoutItem, Fields: map[string]string{
		"provider_payout":   "200",
		"maintainer_payout": "6",
	}})

	if got := testutil.ToFloat64(m.ItemsCreated); got != 1 {
		t.Errorf("items created = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Replies); got != 1 {
		t.Errorf("replies = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ItemsFunded); got != 1 {
		t.Errorf("items funded = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ItemsPaid); got != 1 {
		t.Errorf("items paid = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.FeesCollected); got != 6 {
		t.Errorf("fees collected = %v, want 6", got)
	}
	// 103 + 103 in, 206 out.
	if got := testutil.ToFloat64(m.EscrowBalance); got != 0 {
		t.Errorf("escrow balance = %v, want 0", got)
	}
}

func TestRecord_CancelAndDispute(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.Record(domain.Event{Kind: domain.EventNewItem, Fields: map[string]string{"amount": "103"}})
	m.Record(domain.Event{Kind: domain.EventCancelItem, Fields: map[string]string{"refund": "103"}})
	m.Record(domain.Event{Kind: domain.EventDisputeItem})
	m.Record(domain.Event{Kind: domain.EventResolveItem, Fields: map[string]string{
		"seeker_payout":     "50",
		"provider_payout":   "150",
		"maintainer_payout": "6",
	}})

	if got := testutil.ToFloat64(m.ItemsCancelled); got != 1 {
		t.Errorf("items cancelled = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ItemsDisputed); got != 1 {
		t.Errorf("items disputed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ItemsResolved); got != 1 {
		t.Errorf("items resolved = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.EscrowBalance); got != -206 {
		t.Errorf("escrow balance = %v, want -206", got)
	}
}

func TestRecord_IgnoresMissingFields(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	// Events without amount fields must not panic or move the gauge.
	m.Record(domain.Event{Kind: domain.EventNewItem})
	m.Record(domain.Event{Kind: domain.EventNewItem, Fields: map[string]string{"amount": "not-a-number"}})

	if got := testutil.ToFloat64(m.ItemsCreated); got != 2 {
		t.Errorf("items created = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.EscrowBalance); got != 0 {
		t.Errorf("escrow balance = %v, want 0", got)
	}
}
