package hashtag

import (
	"fmt"

	"github.com/simpledeal-network/simpledeal/internal/domain"
)

// ─── Item Transitions ───────────────────────────────────────────────────────
// Ordering between operations on one item is enforced purely by status
// preconditions: an operation whose required prior state has not been
// reached fails rather than waiting.

// ReplyItem appends a provider candidate's reply to an open item.
// The seeker cannot reply to their own item.
func (h *Hashtag) ReplyItem(caller domain.Address, itemID uint64, replyMetadataHash domain.Hash) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	it, err := h.item(itemID)
	if err != nil {
		return err
	}
	if it.Status != domain.StatusOpen {
		return fmt.Errorf("reply to item %d in %s: %w", itemID, it.Status, domain.ErrInvalidState)
	}
	if caller == it.Seeker {
		return fmt.Errorf("seeker %s replying to own item %d: %w", caller, itemID, domain.ErrUnauthorized)
	}

	it.Replies = append(it.Replies, domain.Reply{Replier: caller, MetadataHash: replyMetadataHash})
	h.emit(domain.EventReplyItem, itemID, caller, map[string]string{
		"replier":             string(caller),
		"reply_metadata_hash": string(replyMetadataHash),
		"reply_count":         fmt.Sprint(it.ReplyCount()),
	})
	return h.persist(it)
}

// SelectReplier marks one replier as the item's provider. Seeker only;
// the provider must have a reply on record. Re-selection is allowed
// while the item is still open.
func (h *Hashtag) SelectReplier(caller domain.Address, itemID uint64, provider domain.Address) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	it, err := h.item(itemID)
	if err != nil {
		return err
	}
	if it.Status != domain.StatusOpen {
		return fmt.Errorf("select replier on item %d in %s: %w", itemID, it.Status, domain.ErrInvalidState)
	}
	if caller != it.Seeker {
		return fmt.Errorf("select replier by %s, seeker is %s: %w", caller, it.Seeker, domain.ErrUnauthorized)
	}
	if !it.HasReplyFrom(provider) {
		return fmt.Errorf("select %s without a reply on item %d: %w", provider, itemID, domain.ErrUnauthorized)
	}

	it.Provider = provider
	h.emit(domain.EventSelectReplier, itemID, caller, map[string]string{
		"provider": string(provider),
	})
	return h.persist(it)
}

// PayoutItem releases the full escrow pool of a funded item: the
// provider receives 2*itemValue, the maintainer the custodied fee.
// Seeker only. Both parties accrue reputation.
func (h *Hashtag) PayoutItem(caller domain.Address, itemID uint64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	it, err := h.item(itemID)
	if err != nil {
		return err
	}
	if it.Status != domain.StatusFunded {
		return fmt.Errorf("payout item %d in %s: %w", itemID, it.Status, domain.ErrInvalidState)
	}
	if caller != it.Seeker {
		return fmt.Errorf("payout by %s, seeker is %s: %w", caller, it.Seeker, domain.ErrUnauthorized)
	}

	providerCut, err := it.ItemValue.Double()
	if err != nil {
		return err
	}
	maintainerCut, err := it.HashtagFee.Half().Double()
	if err != nil {
		return err
	}
	if err := h.disburse(
		payment{to: it.Provider, amount: providerCut},
		payment{to: h.cfg.PayoutAddress, amount: maintainerCut},
	); err != nil {
		return err
	}

	it.Status = domain.StatusPaid
	h.reputation.AccrueSeeker(it.Seeker, ReputationQuantum)
	h.reputation.AccrueProvider(it.Provider, ReputationQuantum)
	h.emit(domain.EventPayoutItem, itemID, caller, map[string]string{
		"provider_payout":   providerCut.String(),
		"maintainer_payout": maintainerCut.String(),
		"status":            it.Status.String(),
	})
	return h.persist(it)
}

// DisputeItem freezes a funded item for arbitration. Seeker or
// provider only.
func (h *Hashtag) DisputeItem(caller domain.Address, itemID uint64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	it, err := h.item(itemID)
	if err != nil {
		return err
	}
	if it.Status != domain.StatusFunded {
		return fmt.Errorf("dispute item %d in %s: %w", itemID, it.Status, domain.ErrInvalidState)
	}
	if caller != it.Seeker && caller != it.Provider {
		return fmt.Errorf("dispute by %s, parties are %s/%s: %w",
			caller, it.Seeker, it.Provider, domain.ErrUnauthorized)
	}

	it.Status = domain.StatusDisputed
	h.emit(domain.EventDisputeItem, itemID, caller, map[string]string{
		"status": it.Status.String(),
	})
	return h.persist(it)
}

// ResolveItem settles a disputed item with the maintainer's split:
// seekerFraction to the seeker, the remainder of 2*itemValue to the
// provider, the custodied fee to the maintainer. Maintainer only.
// Both parties accrue reputation, same as a payout.
func (h *Hashtag) ResolveItem(caller domain.Address, itemID uint64, seekerFraction domain.Value) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	it, err := h.item(itemID)
	if err != nil {
		return err
	}
	if it.Status != domain.StatusDisputed {
		return fmt.Errorf("resolve item %d in %s: %w", itemID, it.Status, domain.ErrInvalidState)
	}
	if caller != h.cfg.PayoutAddress {
		return fmt.Errorf("resolve by %s, maintainer is %s: %w", caller, h.cfg.PayoutAddress, domain.ErrUnauthorized)
	}

	split, err := SplitEscrow(it.ItemValue, it.HashtagFee, seekerFraction)
	if err != nil {
		return fmt.Errorf("resolve item %d: %w", itemID, err)
	}
	if err := h.disburse(
		payment{to: it.Seeker, amount: split.Seeker},
		payment{to: it.Provider, amount: split.Provider},
		payment{to: h.cfg.PayoutAddress, amount: split.Maintainer},
	); err != nil {
		return err
	}

	it.Status = domain.StatusResolved
	h.reputation.AccrueSeeker(it.Seeker, ReputationQuantum)
	h.reputation.AccrueProvider(it.Provider, ReputationQuantum)
	h.emit(domain.EventResolveItem, itemID, caller, map[string]string{
		"seeker_payout":     split.Seeker.String(),
		"provider_payout":   split.Provider.String(),
		"maintainer_payout": split.Maintainer.String(),
		"status":            it.Status.String(),
	})
	return h.persist(it)
}

// CancelItem refunds the seeker's deposit in full and closes the item.
// Seeker only, and only while the item is still open — once provider
// funds are escrowed the dispute path is the only way out.
// No fee is charged and no reputation accrues.
func (h *Hashtag) CancelItem(caller domain.Address, itemID uint64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	it, err := h.item(itemID)
	if err != nil {
		return err
	}
	if it.Status != domain.StatusOpen {
		return fmt.Errorf("cancel item %d in %s: %w", itemID, it.Status, domain.ErrInvalidState)
	}
	if caller != it.Seeker {
		return fmt.Errorf("cancel by %s, seeker is %s: %w", caller, it.Seeker, domain.ErrUnauthorized)
	}

	refund, err := it.SeekerDeposit()
	if err != nil {
		return err
	}
	if err := h.disburse(payment{to: it.Seeker, amount: refund}); err != nil {
		return err
	}

	it.Status = domain.StatusCancelled
	h.emit(domain.EventCancelItem, itemID, caller, map[string]string{
		"refund": refund.String(),
		"status": it.Status.String(),
	})
	return h.persist(it)
}
