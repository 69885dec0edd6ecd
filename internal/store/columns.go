package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"lanes-cli/internal/model"
)

const columnCols = `id, board_id, name, position, created_by, created_at_unixms, updated_at_unixms, deleted`

func scanColumn(r rowScanner) (model.Column, error) {
	var (
		c            model.Column
		created, upd int64
		deleted      int
	)
	if err := r.Scan(&c.ID, &c.BoardID, &c.Name, &c.Position, &c.CreatedBy, &created, &upd, &deleted); err != nil {
		return model.Column{}, err
	}
	c.CreatedAt = fromUnixMs(created)
	c.UpdatedAt = fromUnixMs(upd)
	c.Deleted = deleted != 0
	return c, nil
}

// CreateColumn appends a column to the end of its board.
func (s *Store) CreateColumn(ctx context.Context, actorID, boardID, name string) (model.Column, error) {
	var out model.Column
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ref := model.BoardContainer(boardID)
		if err := requireContainerTx(ctx, tx, ref); err != nil {
			return err
		}
		set, err := siblingsOf(ref)
		if err != nil {
			return err
		}
		pos, err := appendPositionTx(ctx, tx, set)
		if err != nil {
			return err
		}
		nowMs := s.nowMs()
		out = model.Column{
			ID:        uuid.NewString(),
			BoardID:   boardID,
			Name:      strings.TrimSpace(name),
			Position:  pos,
			CreatedBy: actorID,
			CreatedAt: fromUnixMs(nowMs),
			UpdatedAt: fromUnixMs(nowMs),
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO board_columns(id, board_id, name, position, created_by, created_at_unixms, updated_at_unixms, deleted)
VALUES(?, ?, ?, ?, ?, ?, ?, 0)`, out.ID, out.BoardID, out.Name, out.Position, out.CreatedBy, nowMs, nowMs); err != nil {
			return err
		}
		return appendEventTx(ctx, tx, nowMs, actorID, "column.create", "column", out.ID, map[string]any{
			"boardId":  boardID,
			"name":     out.Name,
			"position": pos,
		})
	})
	if err != nil {
		return model.Column{}, err
	}
	return out, nil
}

// Columns lists the live columns of a board in position order.
func (s *Store) Columns(ctx context.Context, boardID string) ([]model.Column, error) {
	return listColumns(ctx, s.db, boardID)
}

func listColumns(ctx context.Context, q queryer, boardID string) ([]model.Column, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+columnCols+` FROM board_columns WHERE board_id = ? AND deleted = 0 ORDER BY position ASC, id ASC`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Column{}
	for rows.Next() {
		c, err := scanColumn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Column(ctx context.Context, id string) (model.Column, error) {
	return columnByID(ctx, s.db, id)
}

func columnByID(ctx context.Context, q queryer, id string) (model.Column, error) {
	c, err := scanColumn(q.QueryRowContext(ctx, `SELECT `+columnCols+` FROM board_columns WHERE id = ? AND deleted = 0`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Column{}, NotFoundError{Kind: "column", ID: id}
	}
	return c, err
}

func (s *Store) RenameColumn(ctx context.Context, actorID, id, name string) (model.Column, error) {
	var out model.Column
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		c, err := columnByID(ctx, tx, id)
		if err != nil {
			return err
		}
		nowMs := s.nowMs()
		c.Name = strings.TrimSpace(name)
		c.UpdatedAt = fromUnixMs(nowMs)
		if _, err := tx.ExecContext(ctx, `UPDATE board_columns SET name = ?, updated_at_unixms = ? WHERE id = ?`, c.Name, nowMs, id); err != nil {
			return err
		}
		out = c
		return appendEventTx(ctx, tx, nowMs, actorID, "column.rename", "column", id, map[string]any{"name": c.Name})
	})
	return out, err
}

// MoveColumn places a column between two sibling columns of boardID.
// boardID must be the column's own board: columns never change boards.
func (s *Store) MoveColumn(ctx context.Context, actorID, columnID, boardID, beforeID, afterID string) (model.MoveResult, error) {
	var out model.MoveResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		c, err := columnByID(ctx, tx, columnID)
		if err != nil {
			return err
		}
		if boardID == "" {
			boardID = c.BoardID
		}
		ref := model.BoardContainer(boardID)
		if err := requireContainerTx(ctx, tx, ref); err != nil {
			return err
		}
		if c.BoardID != boardID {
			return NotFoundError{Kind: "column", ID: columnID, In: ref.String()}
		}
		set, err := siblingsOf(ref)
		if err != nil {
			return err
		}
		nowMs := s.nowMs()
		alloc, err := allocateTx(ctx, tx, set, columnID, beforeID, afterID, nowMs)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE board_columns SET position = ?, updated_at_unixms = ? WHERE id = ?`,
			alloc.Position, nowMs, columnID); err != nil {
			return err
		}
		out = model.MoveResult{
			ItemID:      columnID,
			Container:   ref,
			NewPosition: alloc.Position,
			Rebalanced:  alloc.Rebalanced,
			BoardIDs:    []string{boardID},
		}
		return appendEventTx(ctx, tx, nowMs, actorID, "column.move", "column", columnID, map[string]any{
			"boardId":    boardID,
			"beforeId":   beforeID,
			"afterId":    afterID,
			"position":   alloc.Position,
			"rebalanced": alloc.Rebalanced,
		})
	})
	if err != nil {
		return model.MoveResult{}, err
	}
	return out, nil
}

// DeleteColumn soft-deletes a column. Its tasks stay stored but leave the board view.
func (s *Store) DeleteColumn(ctx context.Context, actorID, id string) (model.Column, error) {
	var out model.Column
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		c, err := columnByID(ctx, tx, id)
		if err != nil {
			return err
		}
		nowMs := s.nowMs()
		if _, err := tx.ExecContext(ctx, `UPDATE board_columns SET deleted = 1, updated_at_unixms = ? WHERE id = ?`, nowMs, id); err != nil {
			return err
		}
		c.Deleted = true
		out = c
		return appendEventTx(ctx, tx, nowMs, actorID, "column.delete", "column", id, map[string]any{"boardId": c.BoardID})
	})
	return out, err
}
