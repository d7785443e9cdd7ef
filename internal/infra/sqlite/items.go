package sqlite

import (
	"fmt"

	"github.com/simpledeal-network/simpledeal/internal/domain"
)

// ─── Item Operations ────────────────────────────────────────────────────────

// SaveItem upserts one item and its reply list in a single transaction.
func (db *DB) SaveItem(it domain.Item) error {
	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("save item %d: %w", it.ID, err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO items (id, status, seeker, provider, item_value, hashtag_fee, metadata_hash, creation_block, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			status     = excluded.status,
			provider   = excluded.provider,
			updated_at = datetime('now')
	`, it.ID, int(it.Status), string(it.Seeker), string(it.Provider),
		it.ItemValue.String(), it.HashtagFee.String(), string(it.MetadataHash), it.CreationBlock)
	if err != nil {
		return fmt.Errorf("save item %d: %w", it.ID, err)
	}

	// Replies only ever append, so rewriting the list is cheap and
	// keeps ordering authoritative.
	if _, err := tx.Exec(`DELETE FROM item_replies WHERE item_id = ?`, it.ID); err != nil {
		return fmt.Errorf("save item %d replies: %w", it.ID, err)
	}
	for i, r := range it.Replies {
		_, err := tx.Exec(`
			INSERT INTO item_replies (item_id, idx, replier, metadata_hash)
			VALUES (?, ?, ?, ?)
		`, it.ID, i, string(r.Replier), string(r.MetadataHash))
		if err != nil {
			return fmt.Errorf("save item %d reply %d: %w", it.ID, i, err)
		}
	}
	return tx.Commit()
}

// LoadItems returns all items in id order with their replies attached.
func (db *DB) LoadItems() ([]domain.Item, error) {
	rows, err := db.db.Query(`
		SELECT id, status, seeker, provider, item_value, hashtag_fee, metadata_hash, creation_block
		FROM items ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var (
			it            domain.Item
			status        int
			seeker        string
			provider      string
			itemValue     string
			hashtagFee    string
			metadataHash  string
		)
		if err := rows.Scan(&it.ID, &status, &seeker, &provider, &itemValue, &hashtagFee, &metadataHash, &it.CreationBlock); err != nil {
			return nil, fmt.Errorf("load items: %w", err)
		}
		it.Status = domain.Status(status)
		it.Seeker = domain.Address(seeker)
		it.Provider = domain.Address(provider)
		it.MetadataHash = domain.Hash(metadataHash)
		if it.ItemValue, err = domain.ParseValue(itemValue); err != nil {
			return nil, fmt.Errorf("load item %d value: %w", it.ID, err)
		}
		if it.HashtagFee, err = domain.ParseValue(hashtagFee); err != nil {
			return nil, fmt.Errorf("load item %d fee: %w", it.ID, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		if err := db.loadReplies(&items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (db *DB) loadReplies(it *domain.Item) error {
	rows, err := db.db.Query(`
		SELECT replier, metadata_hash FROM item_replies
		WHERE item_id = ? ORDER BY idx
	`, it.ID)
	if err != nil {
		return fmt.Errorf("load item %d replies: %w", it.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var replier, hash string
		if err := rows.Scan(&replier, &hash); err != nil {
			return fmt.Errorf("load item %d replies: %w", it.ID, err)
		}
		it.Replies = append(it.Replies, domain.Reply{
			Replier:      domain.Address(replier),
			MetadataHash: domain.Hash(hash),
		})
	}
	return rows.Err()
}

// ─── Reputation Operations ──────────────────────────────────────────────────

// SaveScore upserts one address's seeker and provider scores.
func (db *DB) SaveScore(addr domain.Address, seeker, provider uint64) error {
	_, err := db.db.Exec(`
		INSERT INTO reputation (address, seeker_score, provider_score, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(address) DO UPDATE SET
			seeker_score   = excluded.seeker_score,
			provider_score = excluded.provider_score,
			updated_at     = datetime('now')
	`, string(addr), seeker, provider)
	if err != nil {
		return fmt.Errorf("save score %s: %w", addr, err)
	}
	return nil
}

// LoadScores returns all persisted scores as address → [seeker, provider].
func (db *DB) LoadScores() (map[domain.Address][2]uint64, error) {
	rows, err := db.db.Query(`SELECT address, seeker_score, provider_score FROM reputation`)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[domain.Address][2]uint64)
	for rows.Next() {
		var addr string
		var s, p uint64
		if err := rows.Scan(&addr, &s, &p); err != nil {
			return nil, fmt.Errorf("load scores: %w", err)
		}
		scores[domain.Address(addr)] = [2]uint64{s, p}
	}
	return scores, rows.Err()
}

var _ domain.ItemStore = (*DB)(nil)
