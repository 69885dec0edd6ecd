package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"lanes-cli/internal/model"
)

// appendEventTx records a change in the same transaction that made it.
func appendEventTx(ctx context.Context, tx *sql.Tx, nowMs int64, actorID, typ, entityKind, entityID string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO events(id, ts_unixms, actor_id, type, entity_kind, entity_id, payload_json)
VALUES(?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), nowMs, actorID, typ, entityKind, entityID, string(b))
	return err
}

// EventFilter narrows Events. Zero values match everything.
type EventFilter struct {
	EntityID string
	Limit    int
}

// Events returns the newest events first.
func (s *Store) Events(ctx context.Context, f EventFilter) ([]model.Event, error) {
	q := `SELECT id, ts_unixms, actor_id, type, entity_kind, entity_id, payload_json FROM events`
	var args []any
	if id := strings.TrimSpace(f.EntityID); id != "" {
		q += ` WHERE entity_id = ?`
		args = append(args, id)
	}
	q += ` ORDER BY ts_unixms DESC, rowid DESC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		var (
			ev      model.Event
			tsMs    int64
			payload string
		)
		if err := rows.Scan(&ev.ID, &tsMs, &ev.ActorID, &ev.Type, &ev.EntityKind, &ev.EntityID, &payload); err != nil {
			return nil, err
		}
		ev.TS = fromUnixMs(tsMs)
		if strings.TrimSpace(payload) != "" {
			var v any
			if err := json.Unmarshal([]byte(payload), &v); err != nil {
				return nil, err
			}
			ev.Payload = v
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
