package hashtag

import (
	"fmt"

	"github.com/simpledeal-network/simpledeal/internal/domain"
)

// ─── Deposit Callback Router ────────────────────────────────────────────────
// The value ledger moves funds into the contract's account first, then
// invokes OnValueReceived. By the time this code runs the amount is
// already final: the router cannot reject the transfer itself, only
// decide which transition (if any) to apply. Returning an error makes
// the ledger revert the whole transfer atomically, which is the only
// way funds are "un-received".

// OnValueReceived is the single deposit entry point.
//
// caller must be the configured value-ledger principal — the only
// party capable of invoking the callback after actually moving funds.
// from is the payer the ledger vouches for; amount is what arrived.
// The payload decodes to either a create-item or fund-item action.
//
// Returns the id of the created or funded item.
func (h *Hashtag) OnValueReceived(caller, from domain.Address, amount domain.Value, payload []byte) (uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if caller != h.cfg.LedgerAddress {
		return 0, fmt.Errorf("deposit callback from %s, not the value ledger: %w", caller, domain.ErrUnauthorized)
	}

	action, err := domain.DecodeDepositPayload(payload)
	if err != nil {
		return 0, err
	}

	switch a := action.(type) {
	case domain.CreateItem:
		return h.createItem(from, amount, a)
	case domain.FundItem:
		return a.ItemID, h.fundItem(from, amount, a.ItemID)
	default:
		return 0, fmt.Errorf("deposit action %T: %w", action, domain.ErrBadPayload)
	}
}

// createItem opens a new item for the seeker whose deposit just
// arrived. The deposit must equal itemValue + currentFee/2; the
// current fee is snapshotted into the item and frozen.
func (h *Hashtag) createItem(seeker domain.Address, amount domain.Value, a domain.CreateItem) (uint64, error) {
	expected, err := a.ItemValue.Add(h.cfg.HashtagFee.Half())
	if err != nil {
		return 0, err
	}
	if !amount.Equals(expected) {
		return 0, fmt.Errorf("create deposit %s, expected %s (itemValue %s + fee/2 %s): %w",
			amount, expected, a.ItemValue, h.cfg.HashtagFee.Half(), domain.ErrAmountMismatch)
	}

	it := &domain.Item{
		ID:            uint64(len(h.items)),
		Status:        domain.StatusOpen,
		Seeker:        seeker,
		ItemValue:     a.ItemValue.Copy(),
		HashtagFee:    h.cfg.HashtagFee.Copy(),
		MetadataHash:  a.MetadataHash,
		CreationBlock: h.height(),
	}
	h.items = append(h.items, it)

	h.emit(domain.EventNewItem, it.ID, seeker, map[string]string{
		"owner":         string(seeker),
		"item_value":    it.ItemValue.String(),
		"hashtag_fee":   it.HashtagFee.String(),
		"metadata_hash": string(it.MetadataHash),
		"amount":        amount.String(),
	})
	return it.ID, h.persist(it)
}

// fundItem matches the seeker's deposit on an open item. Only the
// selected provider may fund, and only with exactly the item's frozen
// itemValue + feeSnapshot/2.
func (h *Hashtag) fundItem(provider domain.Address, amount domain.Value, itemID uint64) error {
	it, err := h.item(itemID)
	if err != nil {
		return err
	}
	if it.Status != domain.StatusOpen {
		return fmt.Errorf("fund item %d in %s: %w", itemID, it.Status, domain.ErrInvalidState)
	}
	if it.Provider.IsZero() || provider != it.Provider {
		return fmt.Errorf("fund item %d by %s, selected provider is %q: %w",
			itemID, provider, it.Provider, domain.ErrUnauthorized)
	}
	expected, err := it.SeekerDeposit()
	if err != nil {
		return err
	}
	if !amount.Equals(expected) {
		return fmt.Errorf("fund deposit %s, expected %s: %w", amount, expected, domain.ErrAmountMismatch)
	}

	it.Status = domain.StatusFunded
	h.emit(domain.EventFundItem, itemID, provider, map[string]string{
		"provider": string(provider),
		"amount":   amount.String(),
		"status":   it.Status.String(),
	})
	return h.persist(it)
}
