package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lanes-cli/internal/model"
)

// siblingSet is the SQL shape of one ordered container.
type siblingSet struct {
	ref      model.ContainerRef
	table    string
	itemKind string
	where    string
	args     []any
}

func siblingsOf(ref model.ContainerRef) (siblingSet, error) {
	switch ref.Kind {
	case model.ContainerBoard:
		return siblingSet{
			ref:      ref,
			table:    "board_columns",
			itemKind: "column",
			where:    "board_id = ? AND deleted = 0",
			args:     []any{ref.ID},
		}, nil
	case model.ContainerColumn:
		return siblingSet{
			ref:      ref,
			table:    "tasks",
			itemKind: "task",
			where:    "column_id = ? AND deleted = 0",
			args:     []any{ref.ID},
		}, nil
	case model.ContainerInbox:
		return siblingSet{
			ref:      ref,
			table:    "tasks",
			itemKind: "task",
			where:    "column_id = '' AND owner_actor_id = ? AND deleted = 0",
			args:     []any{ref.ID},
		}, nil
	default:
		return siblingSet{}, fmt.Errorf("unknown container kind %q", ref.Kind)
	}
}

// Keyed is an item id with its position key.
type Keyed struct {
	ID       string  `json:"id"`
	Position float64 `json:"position"`
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// loadKeys returns the live keys of a container ordered by (position, id).
func loadKeys(ctx context.Context, q queryer, set siblingSet) ([]Keyed, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, position FROM `+set.table+` WHERE `+set.where+` ORDER BY position ASC, id ASC`,
		set.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Keyed
	for rows.Next() {
		var k Keyed
		if err := rows.Scan(&k.ID, &k.Position); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// positionIn returns the key of id if it is a live member of the container.
func positionIn(ctx context.Context, q queryer, set siblingSet, id string) (float64, bool, error) {
	args := append([]any{id}, set.args...)
	var p float64
	err := q.QueryRowContext(ctx,
		`SELECT position FROM `+set.table+` WHERE id = ? AND `+set.where,
		args...).Scan(&p)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return p, true, nil
}

// appendPositionTx is max + STEP, or STEP for an empty container.
func appendPositionTx(ctx context.Context, tx *sql.Tx, set siblingSet) (float64, error) {
	var maxPos sql.NullFloat64
	err := tx.QueryRowContext(ctx,
		`SELECT MAX(position) FROM `+set.table+` WHERE `+set.where,
		set.args...).Scan(&maxPos)
	if err != nil {
		return 0, err
	}
	if !maxPos.Valid {
		return PositionInitial(), nil
	}
	return PositionAfter(maxPos.Float64), nil
}

// prependPositionTx is min - HoldingGap, or STEP for an empty container.
func prependPositionTx(ctx context.Context, tx *sql.Tx, set siblingSet) (float64, error) {
	var minPos sql.NullFloat64
	err := tx.QueryRowContext(ctx,
		`SELECT MIN(position) FROM `+set.table+` WHERE `+set.where,
		set.args...).Scan(&minPos)
	if err != nil {
		return 0, err
	}
	if !minPos.Valid {
		return PositionInitial(), nil
	}
	return minPos.Float64 - HoldingGap, nil
}
