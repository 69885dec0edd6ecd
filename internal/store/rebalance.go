package store

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"lanes-cli/internal/model"
)

// rebalanceChunk bounds the number of ids per bulk statement (two bind args each).
const rebalanceChunk = 400

// SortKeyed sorts keys in place by position, then id.
func SortKeyed(keys []Keyed) {
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].Position != keys[j].Position {
			return keys[i].Position < keys[j].Position
		}
		return keys[i].ID < keys[j].ID
	})
}

// PlanRebalance assigns STEP, 2*STEP, ... to keys in their given order and
// returns only the entries whose key changes.
func PlanRebalance(keys []Keyed) []Keyed {
	var changed []Keyed
	for i, k := range keys {
		want := PositionStep * float64(i+1)
		if k.Position != want {
			changed = append(changed, Keyed{ID: k.ID, Position: want})
		}
	}
	return changed
}

// orderHint asks the rebalancer to place First immediately before Second when
// the two are tied, so a following allocation between them sees them in the
// order the caller asked for.
type orderHint struct {
	First  string
	Second string
}

func applyHint(keys []Keyed, h *orderHint) {
	if h == nil {
		return
	}
	fi, si := -1, -1
	for i, k := range keys {
		switch k.ID {
		case h.First:
			fi = i
		case h.Second:
			si = i
		}
	}
	if fi < 0 || si < 0 || fi < si {
		return
	}
	if !PositionsTied(keys[fi].Position, keys[si].Position) {
		return
	}
	first := keys[fi]
	copy(keys[si+1:fi+1], keys[si:fi])
	keys[si] = first
}

// rebalanceTx respaces a container inside the caller's transaction and
// returns how many items received a new key.
func rebalanceTx(ctx context.Context, tx *sql.Tx, set siblingSet, hint *orderHint, nowMs int64) (int, error) {
	keys, err := loadKeys(ctx, tx, set)
	if err != nil {
		return 0, err
	}
	applyHint(keys, hint)
	changed := PlanRebalance(keys)
	if len(changed) == 0 {
		return 0, nil
	}
	if err := writePositionsTx(ctx, tx, set.table, changed, nowMs); err != nil {
		return 0, err
	}
	return len(changed), nil
}

// writePositionsTx writes keys with UPDATE ... SET position = CASE id WHEN ? THEN ? ... END.
func writePositionsTx(ctx context.Context, tx *sql.Tx, table string, keys []Keyed, nowMs int64) error {
	for start := 0; start < len(keys); start += rebalanceChunk {
		end := start + rebalanceChunk
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[start:end]

		var b strings.Builder
		args := make([]any, 0, len(chunk)*3+1)
		b.WriteString(`UPDATE ` + table + ` SET position = CASE id`)
		for _, k := range chunk {
			b.WriteString(` WHEN ? THEN ?`)
			args = append(args, k.ID, k.Position)
		}
		b.WriteString(` END, updated_at_unixms = ? WHERE id IN (`)
		args = append(args, nowMs)
		for i, k := range chunk {
			if i > 0 {
				b.WriteString(`, `)
			}
			b.WriteString(`?`)
			args = append(args, k.ID)
		}
		b.WriteString(`)`)

		if _, err := tx.ExecContext(ctx, b.String(), args...); err != nil {
			return err
		}
	}
	return nil
}

// Rebalance respaces every live item of the container to STEP, 2*STEP, ...
// in current order. Running it twice without writes in between changes nothing
// the second time.
func (s *Store) Rebalance(ctx context.Context, actorID string, ref model.ContainerRef) (int, error) {
	set, err := siblingsOf(ref)
	if err != nil {
		return 0, err
	}
	var n int
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireContainerTx(ctx, tx, ref); err != nil {
			return err
		}
		nowMs := s.nowMs()
		n, err = rebalanceTx(ctx, tx, set, nil, nowMs)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		return appendEventTx(ctx, tx, nowMs, actorID, "container.rebalance", string(ref.Kind), ref.ID, map[string]any{
			"updated": n,
		})
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
