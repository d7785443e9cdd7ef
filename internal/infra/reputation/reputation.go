// Package reputation implements the per-address reputation ledger.
//
// Each address carries two independent scores: one accrued as a
// seeker, one as a provider. Scores are monotone non-decreasing,
// never reset, never transferable, and grow only by the fixed quantum
// the escrow ledger credits on a successful or arbitrated outcome.
package reputation

import (
	"sort"
	"sync"

	"github.com/simpledeal-network/simpledeal/internal/domain"
)

// Store persists scores. Implementations must tolerate repeated saves
// of the same address (upsert semantics).
type Store interface {
	SaveScore(addr domain.Address, seeker, provider uint64) error
	LoadScores() (map[domain.Address][2]uint64, error)
}

// Tracker is the in-memory reputation ledger.
type Tracker struct {
	mu       sync.RWMutex
	seeker   map[domain.Address]uint64
	provider map[domain.Address]uint64
	store    Store // optional durable shadow
}

// NewTracker creates an empty reputation ledger.
func NewTracker() *Tracker {
	return &Tracker{
		seeker:   make(map[domain.Address]uint64),
		provider: make(map[domain.Address]uint64),
	}
}

// SetStore attaches a durable store. Call Restore afterwards to load
// persisted scores.
func (t *Tracker) SetStore(s Store) { t.store = s }

// Restore loads persisted scores into memory.
func (t *Tracker) Restore() error {
	if t.store == nil {
		return nil
	}
	scores, err := t.store.LoadScores()
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for addr, s := range scores {
		t.seeker[addr] = s[0]
		t.provider[addr] = s[1]
	}
	return nil
}

// AccrueSeeker adds quantum to the address's seeker-side score.
func (t *Tracker) AccrueSeeker(addr domain.Address, quantum uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seeker[addr] += quantum
	t.save(addr)
}

// AccrueProvider adds quantum to the address's provider-side score.
func (t *Tracker) AccrueProvider(addr domain.Address, quantum uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.provider[addr] += quantum
	t.save(addr)
}

// save writes the address's current scores through the store.
// Persistence is a shadow of the in-memory ledger; a failed save is
// retried implicitly on the next accrual. Callers hold the lock.
func (t *Tracker) save(addr domain.Address) {
	if t.store == nil {
		return
	}
	_ = t.store.SaveScore(addr, t.seeker[addr], t.provider[addr])
}

// SeekerReputation returns the address's seeker-side score.
func (t *Tracker) SeekerReputation(addr domain.Address) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.seeker[addr]
}

// ProviderReputation returns the address's provider-side score.
func (t *Tracker) ProviderReputation(addr domain.Address) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.provider[addr]
}

// Entry is one address's scores in a snapshot.
type Entry struct {
	Address  domain.Address `json:"address"`
	Seeker   uint64         `json:"seeker"`
	Provider uint64         `json:"provider"`
}

// Snapshot returns all known scores sorted by address.
func (t *Tracker) Snapshot() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	seen := make(map[domain.Address]struct{}, len(t.seeker))
	var entries []Entry
	for addr := range t.seeker {
		seen[addr] = struct{}{}
	}
	for addr := range t.provider {
		seen[addr] = struct{}{}
	}
	for addr := range seen {
		entries = append(entries, Entry{
			Address:  addr,
			Seeker:   t.seeker[addr],
			Provider: t.provider[addr],
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Address < entries[j].Address })
	return entries
}
