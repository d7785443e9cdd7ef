package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/simpledeal-network/simpledeal/internal/domain"
)

// ─── Config ─────────────────────────────────────────────────────────────────

// handleGetConfig returns the hashtag's public configuration.
// GET /api/config
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":                  s.tag.Name(),
		"hashtag_fee":           s.tag.HashtagFee(),
		"payout_address":        s.tag.PayoutAddress(),
		"hashtag_metadata_hash": s.tag.MetadataHash(),
		"item_count":            s.tag.GetItemCount(),
	})
}

// handleSetPayoutAddress changes the maintainer address. Owner only.
// POST /api/config/payout-address
func (s *Server) handleSetPayoutAddress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PayoutAddress domain.Address `json:"payout_address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrBadPayload, err))
		return
	}
	if err := s.tag.SetPayoutAddress(actingAddress(r), req.PayoutAddress); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"payout_address": req.PayoutAddress})
}

// handleSetFee changes the fee for newly created items. Owner only.
// POST /api/config/fee
func (s *Server) handleSetFee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HashtagFee domain.Value `json:"hashtag_fee"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrBadPayload, err))
		return
	}
	if err := s.tag.SetHashtagFee(actingAddress(r), req.HashtagFee); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"hashtag_fee": req.HashtagFee})
}

// handleSetMetadata changes the hashtag metadata pointer. Owner only.
// POST /api/config/metadata
func (s *Server) handleSetMetadata(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MetadataHash domain.Hash `json:"hashtag_metadata_hash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrBadPayload, err))
		return
	}
	if err := s.tag.SetMetadataHash(actingAddress(r), req.MetadataHash); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"hashtag_metadata_hash": req.MetadataHash})
}

// ─── Item Reads ─────────────────────────────────────────────────────────────

// handleListItems returns all items.
// GET /api/items
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": s.tag.ListItems(),
		"count": s.tag.GetItemCount(),
	})
}

// handleGetItem returns one item record.
// GET /api/items/{id}
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	it, err := s.tag.GetItem(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// handleItemEvents returns an item's change records.
// GET /api/items/{id}/events
func (s *Server) handleItemEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeError(w, fmt.Errorf("event log not configured: %w", domain.ErrNotFound))
		return
	}
	id, err := itemID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.tag.GetItem(id); err != nil {
		writeError(w, err)
		return
	}
	events, err := s.events.ListEvents(id, 0)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// handleReputation returns both scores of an address.
// GET /api/reputation/{address}
func (s *Server) handleReputation(w http.ResponseWriter, r *http.Request) {
	addr := domain.Address(chi.URLParam(r, "address"))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"address":  addr,
		"seeker":   s.tag.SeekerReputation(addr),
		"provider": s.tag.ProviderReputation(addr),
	})
}

// ─── Item Transitions ───────────────────────────────────────────────────────

// handleReply appends a reply to an open item.
// POST /api/items/{id}/reply
func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		ReplyMetadataHash domain.Hash `json:"reply_metadata_hash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrBadPayload, err))
		return
	}
	if err := s.tag.ReplyItem(actingAddress(r), id, req.ReplyMetadataHash); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"item_id": id})
}

// handleSelect marks a replier as the item's provider.
// POST /api/items/{id}/select
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Provider domain.Address `json:"provider"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrBadPayload, err))
		return
	}
	if err := s.tag.SelectReplier(actingAddress(r), id, req.Provider); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"item_id": id, "provider": req.Provider})
}

// handlePayout releases a funded item's escrow pool.
// POST /api/items/{id}/payout
func (s *Server) handlePayout(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.tag.PayoutItem)
}

// handleDispute freezes a funded item for arbitration.
// POST /api/items/{id}/dispute
func (s *Server) handleDispute(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.tag.DisputeItem)
}

// handleCancel refunds and closes an open item.
// POST /api/items/{id}/cancel
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.tag.CancelItem)
}

// handleResolve settles a disputed item with the maintainer's split.
// POST /api/items/{id}/resolve
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		SeekerFraction domain.Value `json:"seeker_fraction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrBadPayload, err))
		return
	}
	if err := s.tag.ResolveItem(actingAddress(r), id, req.SeekerFraction); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"item_id": id})
}

// transition runs a body-less status transition for the acting address.
func (s *Server) transition(w http.ResponseWriter, r *http.Request, op func(domain.Address, uint64) error) {
	id, err := itemID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := op(actingAddress(r), id); err != nil {
		writeError(w, err)
		return
	}
	it, err := s.tag.GetItem(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"item_id": id, "status": it.Status.String()})
}

// ─── Deposits ───────────────────────────────────────────────────────────────

// handleDeposit pushes value from the acting address into the contract
// through the ledger's transfer-and-call path. Available only when the
// server runs with the local value ledger attached.
// POST /api/deposit
func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeError(w, fmt.Errorf("no value ledger attached: %w", domain.ErrNotFound))
		return
	}
	var req struct {
		Amount       domain.Value `json:"amount"`
		Action       int          `json:"action"`
		ItemValue    domain.Value `json:"item_value"`
		MetadataHash domain.Hash  `json:"metadata_hash"`
		ItemID       uint64       `json:"item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrBadPayload, err))
		return
	}

	var action domain.DepositAction
	switch req.Action {
	case domain.ActionCreateItem:
		action = domain.CreateItem{ItemValue: req.ItemValue, MetadataHash: req.MetadataHash}
	case domain.ActionFundItem:
		action = domain.FundItem{ItemID: req.ItemID}
	default:
		writeError(w, fmt.Errorf("%w: unknown action tag %d", domain.ErrBadPayload, req.Action))
		return
	}
	payload, err := domain.EncodeDepositPayload(action)
	if err != nil {
		writeError(w, err)
		return
	}

	itemID, err := s.ledger.TransferAndCall(actingAddress(r), s.contract, req.Amount, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	it, err := s.tag.GetItem(itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"item_id": itemID,
		"status":  it.Status.String(),
	})
}

// itemID parses the {id} path parameter.
func itemID(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("item id %q: %w", raw, domain.ErrNotFound)
	}
	return id, nil
}
