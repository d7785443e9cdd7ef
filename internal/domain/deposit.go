package domain

import (
	"encoding/json"
	"fmt"
)

// ─── Deposit Actions ────────────────────────────────────────────────────────
// The value ledger moves funds into the contract first, then invokes a
// single callback carrying an opaque payload. The payload's action tag
// selects what the deposit means. It is decoded exactly once, at the
// callback boundary, into a typed action — business logic never sees
// the raw bytes.

// Deposit action tags on the wire.
const (
	ActionCreateItem = 1 // create a new item; payload carries the metadata hash
	ActionFundItem   = 2 // fund an existing item; payload carries the item id
)

// DepositAction is the decoded payload of a deposit callback.
// Exactly two variants exist: CreateItem and FundItem.
type DepositAction interface {
	depositAction()
}

// CreateItem creates a new open item. The seeker states the item value
// alongside the deposit; the router validates that the transferred
// amount equals itemValue + currentFee/2 before any item exists.
type CreateItem struct {
	ItemValue    Value
	MetadataHash Hash
}

// FundItem matches the seeker's deposit on an existing open item.
type FundItem struct {
	ItemID uint64
}

func (CreateItem) depositAction() {}
func (FundItem) depositAction()   {}

// depositPayload is the wire form of a deposit payload.
type depositPayload struct {
	Action       int    `json:"action"`
	ItemValue    *Value `json:"item_value,omitempty"`
	MetadataHash Hash   `json:"metadata_hash,omitempty"`
	ItemID       uint64 `json:"item_id,omitempty"`
}

// EncodeDepositPayload serializes an action for transport through the
// value ledger's transfer-and-call path.
func EncodeDepositPayload(action DepositAction) ([]byte, error) {
	var p depositPayload
	switch a := action.(type) {
	case CreateItem:
		v := a.ItemValue
		p = depositPayload{Action: ActionCreateItem, ItemValue: &v, MetadataHash: a.MetadataHash}
	case FundItem:
		p = depositPayload{Action: ActionFundItem, ItemID: a.ItemID}
	default:
		return nil, fmt.Errorf("unknown deposit action %T: %w", action, ErrBadPayload)
	}
	return json.Marshal(p)
}

// DecodeDepositPayload parses raw payload bytes into a typed action.
// Unknown tags and malformed payloads fail with ErrBadPayload.
func DecodeDepositPayload(raw []byte) (DepositAction, error) {
	var p depositPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	switch p.Action {
	case ActionCreateItem:
		if p.ItemValue == nil {
			return nil, fmt.Errorf("%w: create payload missing item_value", ErrBadPayload)
		}
		return CreateItem{ItemValue: *p.ItemValue, MetadataHash: p.MetadataHash}, nil
	case ActionFundItem:
		return FundItem{ItemID: p.ItemID}, nil
	default:
		return nil, fmt.Errorf("%w: unknown action tag %d", ErrBadPayload, p.Action)
	}
}
