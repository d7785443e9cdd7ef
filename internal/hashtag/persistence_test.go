package hashtag

import (
	"testing"

	"github.com/simpledeal-network/simpledeal/internal/domain"
	"github.com/simpledeal-network/simpledeal/internal/infra/reputation"
)

// fakeItemStore keeps items in memory, keyed by id.
type fakeItemStore struct {
	items map[uint64]domain.Item
	saves int
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{items: make(map[uint64]domain.Item)}
}

func (s *fakeItemStore) SaveItem(it domain.Item) error {
	s.items[it.ID] = it
	s.saves++
	return nil
}

func (s *fakeItemStore) LoadItems() ([]domain.Item, error) {
	out := make([]domain.Item, len(s.items))
	for id, it := range s.items {
		out[id] = it
	}
	return out, nil
}

func TestPersistence_EveryMutationSaves(t *testing.T) {
	f := newFixture(t, stdFee)
	store := newFakeItemStore()
	f.tag.SetStore(store)

	id := f.createItem(t, itemValue)
	f.fundItem(t, id)
	if err := f.tag.PayoutItem(seeker, id); err != nil {
		t.Fatalf("payout: %v", err)
	}

	// create, reply, select, fund, payout: five writes.
	if store.saves != 5 {
		t.Errorf("saves = %d, want 5", store.saves)
	}
	if got := store.items[id].Status; got != domain.StatusPaid {
		t.Errorf("stored status = %s, want PAID", got)
	}
}

func TestRestoreReplaysItems(t *testing.T) {
	f := newFixture(t, stdFee)
	store := newFakeItemStore()
	f.tag.SetStore(store)

	id0 := f.createItem(t, itemValue)
	f.fundItem(t, id0)
	id1 := f.createItem(t, itemValue)
	if err := f.tag.ReplyItem(provider, id1, "QmReplyMeta"); err != nil {
		t.Fatalf("reply: %v", err)
	}

	// A fresh instance over the same store picks up where we left off.
	restored := New(Config{
		Name:          "SimpleDealTest",
		Owner:         owner,
		PayoutAddress: maintainer,
		HashtagFee:    stdFee,
		MetadataHash:  "QmHashtagMeta",
		LedgerAddress: f.ledger.Address(),
	}, f.ledger.Bind(contract), reputation.NewTracker())
	restored.SetStore(store)
	if err := restored.Restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if got := restored.GetItemCount(); got != 2 {
		t.Fatalf("restored item count = %d, want 2", got)
	}
	it0, err := restored.GetItem(id0)
	if err != nil {
		t.Fatalf("get item 0: %v", err)
	}
	if it0.Status != domain.StatusFunded {
		t.Errorf("item 0 status = %s, want FUNDED", it0.Status)
	}
	if it0.Provider != provider {
		t.Errorf("item 0 provider = %s, want %s", it0.Provider, provider)
	}
	it1, err := restored.GetItem(id1)
	if err != nil {
		t.Fatalf("get item 1: %v", err)
	}
	if it1.Status != domain.StatusOpen {
		t.Errorf("item 1 status = %s, want OPEN", it1.Status)
	}
	if !it1.HasReplyFrom(provider) {
		t.Error("item 1 lost its reply on restore")
	}

	// New items continue the id sequence after the restored ones.
	payload, _ := domain.EncodeDepositPayload(domain.CreateItem{
		ItemValue:    itemValue,
		MetadataHash: "QmItemMeta",
	})
	deposit, _ := itemValue.Add(stdFee.Half())
	next, err := restored.OnValueReceived(f.ledger.Address(), seeker, deposit, payload)
	if err != nil {
		t.Fatalf("create after restore: %v", err)
	}
	if next != 2 {
		t.Errorf("next item id = %d, want 2", next)
	}
}
