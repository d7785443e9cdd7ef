package domain

import "time"

// ─── Change Records ─────────────────────────────────────────────────────────
// Every mutating operation emits a structured change record naming the
// item and the fields that changed. Off-chain indexers consume these;
// they are a required side effect of each transition, not optional
// logging.

// EventKind identifies what changed.
type EventKind string

const (
	EventNewItem          EventKind = "NEW_ITEM"
	EventReplyItem        EventKind = "REPLY_ITEM"
	EventSelectReplier    EventKind = "SELECT_REPLIER"
	EventFundItem         EventKind = "FUND_ITEM"
	EventPayoutItem       EventKind = "PAYOUT_ITEM"
	EventDisputeItem      EventKind = "DISPUTE_ITEM"
	EventResolveItem      EventKind = "RESOLVE_ITEM"
	EventCancelItem       EventKind = "CANCEL_ITEM"
	EventPayoutAddressSet EventKind = "PAYOUT_ADDRESS_SET"
	EventHashtagFeeSet    EventKind = "HASHTAG_FEE_SET"
	EventMetadataHashSet  EventKind = "METADATA_HASH_SET"
)

// Event is one structured change record.
// ItemID is meaningful for all item-scoped kinds; config changes
// (PayoutAddressSet, HashtagFeeSet, MetadataHashSet) carry no item.
type Event struct {
	ID        string            `json:"id"`
	Kind      EventKind         `json:"kind"`
	ItemID    uint64            `json:"item_id"`
	Actor     Address           `json:"actor,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// EventSink consumes change records. Implementations must not block
// the ledger's serialized mutation path.
type EventSink interface {
	Record(ev Event)
}

// MultiSink fans one record out to several sinks.
type MultiSink []EventSink

// Record forwards the event to every sink in order.
func (m MultiSink) Record(ev Event) {
	for _, s := range m {
		s.Record(ev)
	}
}
