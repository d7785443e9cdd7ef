package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/simpledeal-network/simpledeal/internal/domain"
)

// ─── Change-Record Log ──────────────────────────────────────────────────────

// AppendEvent writes one change record to the log.
func (db *DB) AppendEvent(ev domain.Event) error {
	fields, err := json.Marshal(ev.Fields)
	if err != nil {
		return fmt.Errorf("append event %s: %w", ev.ID, err)
	}
	_, err = db.db.Exec(`
		INSERT INTO events (id, kind, item_id, actor, fields_json, at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ev.ID, string(ev.Kind), ev.ItemID, string(ev.Actor), string(fields), ev.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append event %s: %w", ev.ID, err)
	}
	return nil
}

// ListEvents returns up to limit change records for one item, oldest
// first (append order). limit <= 0 means no limit.
func (db *DB) ListEvents(itemID uint64, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.db.Query(`
		SELECT id, kind, item_id, actor, fields_json, at
		FROM events WHERE item_id = ? ORDER BY seq LIMIT ?
	`, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			ev     domain.Event
			kind   string
			actor  string
			fields string
			at     string
		)
		if err := rows.Scan(&ev.ID, &kind, &ev.ItemID, &actor, &fields, &at); err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		ev.Kind = domain.EventKind(kind)
		ev.Actor = domain.Address(actor)
		if err := json.Unmarshal([]byte(fields), &ev.Fields); err != nil {
			return nil, fmt.Errorf("list events: decode fields of %s: %w", ev.ID, err)
		}
		if ev.Timestamp, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("list events: parse time of %s: %w", ev.ID, err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// ─── Event Sink ─────────────────────────────────────────────────────────────

// EventLog adapts the database to domain.EventSink. Append failures
// are logged, never propagated into the ledger's mutation path — the
// in-memory ledger stays authoritative and the record is still visible
// to any other attached sink.
type EventLog struct {
	db  *DB
	log zerolog.Logger
}

// NewEventLog creates an event sink writing through db.
func NewEventLog(db *DB, log zerolog.Logger) *EventLog {
	return &EventLog{db: db, log: log}
}

// Record implements domain.EventSink.
func (s *EventLog) Record(ev domain.Event) {
	if err := s.db.AppendEvent(ev); err != nil {
		s.log.Error().Err(err).
			Str("event_id", ev.ID).
			Str("kind", string(ev.Kind)).
			Uint64("item_id", ev.ItemID).
			Msg("event append failed")
	}
}

var _ domain.EventSink = (*EventLog)(nil)
