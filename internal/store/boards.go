package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"lanes-cli/internal/model"
)

const boardCols = `id, name, created_by, created_at_unixms, updated_at_unixms, deleted`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBoard(r rowScanner) (model.Board, error) {
	var (
		b            model.Board
		created, upd int64
		deleted      int
	)
	if err := r.Scan(&b.ID, &b.Name, &b.CreatedBy, &created, &upd, &deleted); err != nil {
		return model.Board{}, err
	}
	b.CreatedAt = fromUnixMs(created)
	b.UpdatedAt = fromUnixMs(upd)
	b.Deleted = deleted != 0
	return b, nil
}

func (s *Store) CreateBoard(ctx context.Context, actorID, name string) (model.Board, error) {
	nowMs := s.nowMs()
	b := model.Board{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		CreatedBy: actorID,
		CreatedAt: fromUnixMs(nowMs),
		UpdatedAt: fromUnixMs(nowMs),
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO boards(id, name, created_by, created_at_unixms, updated_at_unixms, deleted)
VALUES(?, ?, ?, ?, ?, 0)`, b.ID, b.Name, b.CreatedBy, nowMs, nowMs); err != nil {
			return err
		}
		return appendEventTx(ctx, tx, nowMs, actorID, "board.create", "board", b.ID, map[string]any{"name": b.Name})
	})
	if err != nil {
		return model.Board{}, err
	}
	return b, nil
}

func (s *Store) Boards(ctx context.Context) ([]model.Board, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+boardCols+` FROM boards WHERE deleted = 0 ORDER BY created_at_unixms ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Board{}
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) Board(ctx context.Context, id string) (model.Board, error) {
	return boardByID(ctx, s.db, id)
}

func boardByID(ctx context.Context, q queryer, id string) (model.Board, error) {
	b, err := scanBoard(q.QueryRowContext(ctx, `SELECT `+boardCols+` FROM boards WHERE id = ? AND deleted = 0`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Board{}, NotFoundError{Kind: "board", ID: id}
	}
	return b, err
}

func (s *Store) RenameBoard(ctx context.Context, actorID, id, name string) (model.Board, error) {
	var out model.Board
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		b, err := boardByID(ctx, tx, id)
		if err != nil {
			return err
		}
		nowMs := s.nowMs()
		b.Name = strings.TrimSpace(name)
		b.UpdatedAt = fromUnixMs(nowMs)
		if _, err := tx.ExecContext(ctx, `UPDATE boards SET name = ?, updated_at_unixms = ? WHERE id = ?`, b.Name, nowMs, id); err != nil {
			return err
		}
		out = b
		return appendEventTx(ctx, tx, nowMs, actorID, "board.rename", "board", id, map[string]any{"name": b.Name})
	})
	return out, err
}

// DeleteBoard soft-deletes a board. Its columns and tasks stay stored but are unreachable.
func (s *Store) DeleteBoard(ctx context.Context, actorID, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := boardByID(ctx, tx, id); err != nil {
			return err
		}
		nowMs := s.nowMs()
		if _, err := tx.ExecContext(ctx, `UPDATE boards SET deleted = 1, updated_at_unixms = ? WHERE id = ?`, nowMs, id); err != nil {
			return err
		}
		return appendEventTx(ctx, tx, nowMs, actorID, "board.delete", "board", id, map[string]any{})
	})
}

// BoardSnapshot reads a board with its live columns and tasks in position order.
func (s *Store) BoardSnapshot(ctx context.Context, id string) (model.BoardSnapshot, error) {
	var snap model.BoardSnapshot
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		b, err := boardByID(ctx, tx, id)
		if err != nil {
			return err
		}
		cols, err := listColumns(ctx, tx, id)
		if err != nil {
			return err
		}
		tasks, err := listBoardTasks(ctx, tx, id)
		if err != nil {
			return err
		}
		byColumn := map[string][]model.Task{}
		for _, t := range tasks {
			byColumn[t.ColumnID] = append(byColumn[t.ColumnID], t)
		}
		snap = model.BoardSnapshot{Board: b, Columns: make([]model.ColumnWithTasks, 0, len(cols))}
		for _, c := range cols {
			ts := byColumn[c.ID]
			if ts == nil {
				ts = []model.Task{}
			}
			snap.Columns = append(snap.Columns, model.ColumnWithTasks{Column: c, Tasks: ts})
		}
		return nil
	})
	if err != nil {
		return model.BoardSnapshot{}, err
	}
	return snap, nil
}
