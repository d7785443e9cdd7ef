// Package hashtag implements the escrow/deal ledger for one hashtag:
// the item state machine, the deposit callback router, arbitration and
// reputation accrual.
//
// Deal lifecycle (simple deal):
//  1. Seeker deposits itemValue + fee/2 through the value ledger → item OPEN
//  2. Providers reply; seeker selects one
//  3. Selected provider deposits the matching amount → FUNDED
//  4. Seeker pays out (→ PAID), or either party disputes (→ DISPUTED)
//     and the maintainer resolves a split (→ RESOLVED)
//  5. Pre-funding, the seeker can cancel for a full refund (→ CANCELLED)
//
// All operations are serialized under one mutex: a transition either
// completes fully (state updated and funds moved) or has no effect.
package hashtag

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simpledeal-network/simpledeal/internal/domain"
)

// ReputationQuantum is credited to both parties exactly once per item
// that reaches a successful terminal state (PAID or RESOLVED).
const ReputationQuantum = 5

// Config is the hashtag's mutable configuration plus its immutable
// binding to the external value ledger. It is process-wide state with
// exactly one writer path: the owner-gated setters on Hashtag.
type Config struct {
	Name          string         // display name, set at construction
	Owner         domain.Address // administrator (deployer)
	PayoutAddress domain.Address // maintainer payout destination
	HashtagFee    domain.Value   // current fee; applies to new items only
	MetadataHash  domain.Hash    // off-chain hashtag metadata pointer
	LedgerAddress domain.Address // value-ledger principal; immutable
}

// Hashtag is the escrow ledger contract for one hashtag instance.
type Hashtag struct {
	mu         sync.Mutex
	cfg        Config
	items      []*domain.Item
	ledger     domain.ValueLedger
	reputation domain.ReputationLedger
	events     domain.EventSink
	store      domain.ItemStore
	height     func() uint64
	now        func() time.Time
}

// New creates a hashtag bound to its value ledger and reputation ledger.
func New(cfg Config, ledger domain.ValueLedger, reputation domain.ReputationLedger) *Hashtag {
	return &Hashtag{
		cfg:        cfg,
		ledger:     ledger,
		reputation: reputation,
		height:     func() uint64 { return 0 },
		now:        time.Now,
	}
}

// SetEventSink sets the change-record sink.
func (h *Hashtag) SetEventSink(sink domain.EventSink) { h.events = sink }

// SetStore sets the durable item store. Call Restore afterwards to
// replay persisted items.
func (h *Hashtag) SetStore(store domain.ItemStore) { h.store = store }

// SetHeightSource sets the ledger-height source used for an item's
// creation block.
func (h *Hashtag) SetHeightSource(height func() uint64) { h.height = height }

// Restore replays persisted items into memory. The store keeps items
// ordered by id; ids are sequential, so the slice index is the id.
func (h *Hashtag) Restore() error {
	if h.store == nil {
		return nil
	}
	items, err := h.store.LoadItems()
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = make([]*domain.Item, len(items))
	for i := range items {
		it := items[i]
		h.items[it.ID] = &it
	}
	return nil
}

// ─── Fee & Config Store ─────────────────────────────────────────────────────

// SetPayoutAddress changes the maintainer payout destination. Owner only.
func (h *Hashtag) SetPayoutAddress(caller, addr domain.Address) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if caller != h.cfg.Owner {
		return fmt.Errorf("setPayoutAddress by %s: %w", caller, domain.ErrUnauthorized)
	}
	h.cfg.PayoutAddress = addr
	h.emit(domain.EventPayoutAddressSet, 0, caller, map[string]string{
		"payout_address": string(addr),
	})
	return nil
}

// SetHashtagFee changes the fee charged on newly created items. Owner
// only. In-flight items keep their frozen snapshot.
func (h *Hashtag) SetHashtagFee(caller domain.Address, fee domain.Value) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if caller != h.cfg.Owner {
		return fmt.Errorf("setHashtagFee by %s: %w", caller, domain.ErrUnauthorized)
	}
	h.cfg.HashtagFee = fee.Copy()
	h.emit(domain.EventHashtagFeeSet, 0, caller, map[string]string{
		"hashtag_fee": fee.String(),
	})
	return nil
}

// SetMetadataHash changes the hashtag metadata pointer. Owner only.
func (h *Hashtag) SetMetadataHash(caller domain.Address, hash domain.Hash) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if caller != h.cfg.Owner {
		return fmt.Errorf("setMetadataHash by %s: %w", caller, domain.ErrUnauthorized)
	}
	h.cfg.MetadataHash = hash
	h.emit(domain.EventMetadataHashSet, 0, caller, map[string]string{
		"hashtag_metadata_hash": string(hash),
	})
	return nil
}

// ─── Reads ──────────────────────────────────────────────────────────────────

// Name returns the hashtag's display name.
func (h *Hashtag) Name() string { return h.cfg.Name }

// HashtagFee returns the fee that will be snapshotted into the next
// created item.
func (h *Hashtag) HashtagFee() domain.Value {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cfg.HashtagFee.Copy()
}

// PayoutAddress returns the maintainer payout destination.
func (h *Hashtag) PayoutAddress() domain.Address {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cfg.PayoutAddress
}

// MetadataHash returns the hashtag metadata pointer.
func (h *Hashtag) MetadataHash() domain.Hash {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cfg.MetadataHash
}

// GetItem returns a copy of the item record.
func (h *Hashtag) GetItem(id uint64) (domain.Item, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	it, err := h.item(id)
	if err != nil {
		return domain.Item{}, err
	}
	return copyItem(it), nil
}

// GetItemCount returns how many items have ever been created.
func (h *Hashtag) GetItemCount() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return uint64(len(h.items))
}

// ListItems returns copies of all items in creation order.
func (h *Hashtag) ListItems() []domain.Item {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.Item, len(h.items))
	for i, it := range h.items {
		out[i] = copyItem(it)
	}
	return out
}

// SeekerReputation returns the address's accumulated seeker-side score.
func (h *Hashtag) SeekerReputation(addr domain.Address) uint64 {
	return h.reputation.SeekerReputation(addr)
}

// ProviderReputation returns the address's accumulated provider-side score.
func (h *Hashtag) ProviderReputation(addr domain.Address) uint64 {
	return h.reputation.ProviderReputation(addr)
}

// ─── Internal Helpers ───────────────────────────────────────────────────────

// item looks up an item by id. Callers hold the lock.
func (h *Hashtag) item(id uint64) (*domain.Item, error) {
	if id >= uint64(len(h.items)) {
		return nil, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	return h.items[id], nil
}

// emit records a change event. Callers hold the lock.
func (h *Hashtag) emit(kind domain.EventKind, itemID uint64, actor domain.Address, fields map[string]string) {
	if h.events == nil {
		return
	}
	h.events.Record(domain.Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		ItemID:    itemID,
		Actor:     actor,
		Fields:    fields,
		Timestamp: h.now(),
	})
}

// persist writes the item's current state through the store.
// Callers hold the lock.
func (h *Hashtag) persist(it *domain.Item) error {
	if h.store == nil {
		return nil
	}
	if err := h.store.SaveItem(copyItem(it)); err != nil {
		return fmt.Errorf("persist item %d: %w", it.ID, err)
	}
	return nil
}

// payment is one outbound disbursement leg.
type payment struct {
	to     domain.Address
	amount domain.Value
}

// disburse pushes the payments out through the value ledger, skipping
// zero legs. After a terminal transition the item's entire custodied
// balance leaves the contract through here.
func (h *Hashtag) disburse(payments ...payment) error {
	for _, p := range payments {
		if p.amount.IsZero() {
			continue
		}
		if err := h.ledger.TransferValue(p.to, p.amount); err != nil {
			return fmt.Errorf("transfer %s to %s: %w", p.amount, p.to, err)
		}
	}
	return nil
}

// copyItem deep-copies an item so callers cannot alias internal state.
func copyItem(it *domain.Item) domain.Item {
	out := *it
	out.ItemValue = it.ItemValue.Copy()
	out.HashtagFee = it.HashtagFee.Copy()
	out.Replies = make([]domain.Reply, len(it.Replies))
	copy(out.Replies, it.Replies)
	return out
}
