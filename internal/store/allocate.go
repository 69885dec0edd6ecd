package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lanes-cli/internal/model"
)

// Allocation is the key chosen for one move plus how many siblings a
// rebalance had to rewrite first.
type Allocation struct {
	Position   float64
	Rebalanced int
}

// allocateTx picks a key for movingID between its requested neighbours.
//
// beforeID is the item that ends up immediately before the moved one, afterID
// the one immediately after. Both must be live members of the container and
// adjacent once movingID is left out; a client working from an outdated view
// gets a ConflictError and re-resolves. When the neighbours are too close to
// split, the container is rebalanced inside tx and the neighbours are read
// again.
func allocateTx(ctx context.Context, tx *sql.Tx, set siblingSet, movingID, beforeID, afterID string, nowMs int64) (Allocation, error) {
	if beforeID != "" || afterID != "" {
		if err := requireAdjacentTx(ctx, tx, set, movingID, beforeID, afterID); err != nil {
			return Allocation{}, err
		}
	}

	lookup := func(id string) (float64, error) {
		p, ok, err := positionIn(ctx, tx, set, id)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, NotFoundError{Kind: set.itemKind, ID: id, In: set.ref.String()}
		}
		return p, nil
	}

	switch {
	case beforeID == "" && afterID == "":
		others, err := countOthers(ctx, tx, set, movingID)
		if err != nil {
			return Allocation{}, err
		}
		if others > 0 {
			return Allocation{}, ConflictError{Reason: fmt.Sprintf("%s is not empty", set.ref)}
		}
		return Allocation{Position: PositionInitial()}, nil

	case afterID == "":
		before, err := lookup(beforeID)
		if err != nil {
			return Allocation{}, err
		}
		return Allocation{Position: PositionAfter(before)}, nil

	case beforeID == "":
		after, err := lookup(afterID)
		if err != nil {
			return Allocation{}, err
		}
		if p, ok := PositionBefore(after); ok {
			return Allocation{Position: p}, nil
		}
		n, err := rebalanceTx(ctx, tx, set, nil, nowMs)
		if err != nil {
			return Allocation{}, err
		}
		if after, err = lookup(afterID); err != nil {
			return Allocation{}, err
		}
		p, ok := PositionBefore(after)
		if !ok {
			return Allocation{}, errors.New("position space exhausted after rebalance")
		}
		return Allocation{Position: p, Rebalanced: n}, nil
	}

	before, err := lookup(beforeID)
	if err != nil {
		return Allocation{}, err
	}
	after, err := lookup(afterID)
	if err != nil {
		return Allocation{}, err
	}
	if before > after && !PositionsTied(before, after) {
		return Allocation{}, ConflictError{Reason: fmt.Sprintf("%s sorts after %s", beforeID, afterID)}
	}
	if p, ok := PositionBetween(before, after); ok {
		return Allocation{Position: p}, nil
	}

	n, err := rebalanceTx(ctx, tx, set, &orderHint{First: beforeID, Second: afterID}, nowMs)
	if err != nil {
		return Allocation{}, err
	}
	if before, err = lookup(beforeID); err != nil {
		return Allocation{}, err
	}
	if after, err = lookup(afterID); err != nil {
		return Allocation{}, err
	}
	p, ok := PositionBetween(before, after)
	if !ok || before > after {
		return Allocation{}, errors.New("position space exhausted after rebalance")
	}
	return Allocation{Position: p, Rebalanced: n}, nil
}

// requireAdjacentTx checks that beforeID and afterID sit next to each other
// in the container, ignoring movingID. A lone beforeID must be the last item
// and a lone afterID the first. Tied neighbours count as adjacent in either
// order since the rebalance hint settles them.
func requireAdjacentTx(ctx context.Context, tx *sql.Tx, set siblingSet, movingID, beforeID, afterID string) error {
	keys, err := loadKeys(ctx, tx, set)
	if err != nil {
		return err
	}
	live := keys[:0]
	for _, k := range keys {
		if k.ID != movingID {
			live = append(live, k)
		}
	}
	bi, ai := -1, -1
	for i, k := range live {
		switch k.ID {
		case beforeID:
			bi = i
		case afterID:
			ai = i
		}
	}
	if beforeID != "" && bi < 0 {
		return NotFoundError{Kind: set.itemKind, ID: beforeID, In: set.ref.String()}
	}
	if afterID != "" && ai < 0 {
		return NotFoundError{Kind: set.itemKind, ID: afterID, In: set.ref.String()}
	}

	switch {
	case afterID == "":
		if bi != len(live)-1 {
			return ConflictError{Reason: fmt.Sprintf("%s is not the last item in %s", beforeID, set.ref)}
		}
	case beforeID == "":
		if ai != 0 {
			return ConflictError{Reason: fmt.Sprintf("%s is not the first item in %s", afterID, set.ref)}
		}
	case ai == bi+1:
	case ai == bi-1 && PositionsTied(live[bi].Position, live[ai].Position):
	case ai < bi:
		return ConflictError{Reason: fmt.Sprintf("%s sorts after %s", beforeID, afterID)}
	default:
		return ConflictError{Reason: fmt.Sprintf("%s and %s are not adjacent in %s", beforeID, afterID, set.ref)}
	}
	return nil
}

func countOthers(ctx context.Context, tx *sql.Tx, set siblingSet, movingID string) (int, error) {
	args := append(append([]any{}, set.args...), movingID)
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+set.table+` WHERE `+set.where+` AND id <> ?`,
		args...).Scan(&n)
	return n, err
}

// requireContainerTx fails with NotFoundError when a board or column container is missing.
// Every actor has an inbox.
func requireContainerTx(ctx context.Context, tx *sql.Tx, ref model.ContainerRef) error {
	var table string
	switch ref.Kind {
	case model.ContainerBoard:
		table = "boards"
	case model.ContainerColumn:
		table = "board_columns"
	case model.ContainerInbox:
		return nil
	default:
		return fmt.Errorf("unknown container kind %q", ref.Kind)
	}
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ? AND deleted = 0`, ref.ID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return NotFoundError{Kind: string(ref.Kind), ID: ref.ID}
	}
	return err
}
