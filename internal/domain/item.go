// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import "fmt"

// ─── Identity Types ─────────────────────────────────────────────────────────

// Address identifies a principal on the value ledger.
// The zero value means "unset" (e.g. an item with no provider selected yet).
type Address string

// ZeroAddress is the unset address.
const ZeroAddress Address = ""

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool { return a == ZeroAddress }

// Hash is an opaque content-addressed pointer into off-chain metadata
// storage. It is never fetched or interpreted here; validation of the
// blob behind it is the caller's responsibility.
type Hash string

// ─── Item Status ────────────────────────────────────────────────────────────

// Status is the lifecycle state of an item. Transitions only move
// forward through the state machine; Paid, Resolved and Cancelled are
// terminal.
type Status int

const (
	StatusOpen Status = iota // created, seeker deposit escrowed
	StatusFunded             // provider deposit matched
	StatusDisputed           // either party raised a dispute
	StatusPaid               // seeker released payment (terminal)
	StatusResolved           // maintainer arbitrated a split (terminal)
	StatusCancelled          // seeker withdrew pre-funding (terminal)
)

var statusNames = map[Status]string{
	StatusOpen:      "OPEN",
	StatusFunded:    "FUNDED",
	StatusDisputed:  "DISPUTED",
	StatusPaid:      "PAID",
	StatusResolved:  "RESOLVED",
	StatusCancelled: "CANCELLED",
}

// String returns the canonical status name.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS(%d)", int(s))
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusResolved || s == StatusCancelled
}

// ─── Item ───────────────────────────────────────────────────────────────────

// Reply is one provider candidate's response to an open item.
type Reply struct {
	Replier      Address `json:"replier"`
	MetadataHash Hash    `json:"metadata_hash"`
}

// Item is one posted task/deal tracked by the escrow ledger.
//
// ItemValue and HashtagFee are frozen at creation: later changes to the
// hashtag's global fee never affect an in-flight item. Items are never
// deleted — a terminal item remains as an auditable record.
type Item struct {
	ID            uint64  `json:"id"`
	Status        Status  `json:"status"`
	Seeker        Address `json:"seeker"`
	Provider      Address `json:"provider,omitempty"`
	ItemValue     Value   `json:"item_value"`
	HashtagFee    Value   `json:"hashtag_fee"` // fee snapshot at creation
	MetadataHash  Hash    `json:"metadata_hash"`
	Replies       []Reply `json:"replies,omitempty"`
	CreationBlock uint64  `json:"creation_block"`
}

// ReplyCount returns the number of replies on record.
func (it *Item) ReplyCount() int { return len(it.Replies) }

// HasReplyFrom reports whether the given address has a reply on record.
func (it *Item) HasReplyFrom(addr Address) bool {
	for _, r := range it.Replies {
		if r.Replier == addr {
			return true
		}
	}
	return false
}

// SeekerDeposit returns the amount the seeker escrowed at creation:
// itemValue + feeSnapshot/2 (floor division). The provider's matching
// deposit is the identical formula, so both parties can reproduce the
// required amount before depositing.
func (it *Item) SeekerDeposit() (Value, error) {
	return it.ItemValue.Add(it.HashtagFee.Half())
}
