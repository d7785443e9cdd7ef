package domain

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; the escrow core depends on them.

// ValueLedger is the outbound surface of the external fungible value
// ledger, bound to this contract's own account: TransferValue pushes
// custodied funds out to a recipient. Inbound deposits never come
// through here — they arrive as callbacks after the ledger has already
// moved the funds (see DepositAction).
type ValueLedger interface {
	TransferValue(to Address, amount Value) error
}

// ReputationLedger tracks per-address seeker and provider scores.
// Scores are monotone non-decreasing and never transferable.
type ReputationLedger interface {
	AccrueSeeker(addr Address, quantum uint64)
	AccrueProvider(addr Address, quantum uint64)
	SeekerReputation(addr Address) uint64
	ProviderReputation(addr Address) uint64
}

// ItemStore abstracts persistent item storage. The escrow core is
// authoritative in memory; the store is its durable shadow, replayed
// at boot.
type ItemStore interface {
	SaveItem(it Item) error
	LoadItems() ([]Item, error)
}

// HashtagRegistry is the narrow surface of the external registry that
// lists and enables hashtag instances. Consumed only; never
// implemented here.
type HashtagRegistry interface {
	AddHashtag(addr Address) error
	Hashtags() ([]Address, error)
}
