package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"lanes-cli/internal/model"
)

const taskCols = `id, board_id, column_id, owner_actor_id, title, description, position, created_by, created_at_unixms, updated_at_unixms, deleted`

func scanTask(r rowScanner) (model.Task, error) {
	var (
		t            model.Task
		created, upd int64
		deleted      int
	)
	if err := r.Scan(&t.ID, &t.BoardID, &t.ColumnID, &t.OwnerActorID, &t.Title, &t.Description, &t.Position, &t.CreatedBy, &created, &upd, &deleted); err != nil {
		return model.Task{}, err
	}
	t.CreatedAt = fromUnixMs(created)
	t.UpdatedAt = fromUnixMs(upd)
	t.Deleted = deleted != 0
	return t, nil
}

func scanTasks(rows *sql.Rows) ([]model.Task, error) {
	defer rows.Close()
	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// NewTask describes a task to create. An empty ColumnID creates it in the actor's inbox.
type NewTask struct {
	Title       string
	Description string
	ColumnID    string
	BoardID     string
}

// CreateTask appends a task to a column, or puts it at the top of the actor's inbox.
func (s *Store) CreateTask(ctx context.Context, actorID string, in NewTask) (model.Task, error) {
	var out model.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		nowMs := s.nowMs()
		out = model.Task{
			ID:           uuid.NewString(),
			OwnerActorID: actorID,
			Title:        strings.TrimSpace(in.Title),
			Description:  in.Description,
			CreatedBy:    actorID,
			CreatedAt:    fromUnixMs(nowMs),
			UpdatedAt:    fromUnixMs(nowMs),
		}

		var (
			ref model.ContainerRef
			pos float64
		)
		if in.ColumnID == "" {
			ref = model.InboxContainer(actorID)
			set, err := siblingsOf(ref)
			if err != nil {
				return err
			}
			if pos, err = prependPositionTx(ctx, tx, set); err != nil {
				return err
			}
		} else {
			col, err := columnByID(ctx, tx, in.ColumnID)
			if err != nil {
				return err
			}
			if in.BoardID != "" && in.BoardID != col.BoardID {
				return NotFoundError{Kind: "column", ID: in.ColumnID, In: model.BoardContainer(in.BoardID).String()}
			}
			ref = model.ColumnContainer(col.ID)
			set, err := siblingsOf(ref)
			if err != nil {
				return err
			}
			if pos, err = appendPositionTx(ctx, tx, set); err != nil {
				return err
			}
			out.BoardID = col.BoardID
			out.ColumnID = col.ID
		}
		out.Position = pos

		if _, err := tx.ExecContext(ctx, `
INSERT INTO tasks(id, board_id, column_id, owner_actor_id, title, description, position, created_by, created_at_unixms, updated_at_unixms, deleted)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
			out.ID, out.BoardID, out.ColumnID, out.OwnerActorID, out.Title, out.Description, out.Position, out.CreatedBy, nowMs, nowMs); err != nil {
			return err
		}
		return appendEventTx(ctx, tx, nowMs, actorID, "task.create", "task", out.ID, map[string]any{
			"container": ref.String(),
			"title":     out.Title,
			"position":  pos,
		})
	})
	if err != nil {
		return model.Task{}, err
	}
	return out, nil
}

func (s *Store) Task(ctx context.Context, id string) (model.Task, error) {
	return taskByID(ctx, s.db, id)
}

func taskByID(ctx context.Context, q queryer, id string) (model.Task, error) {
	t, err := scanTask(q.QueryRowContext(ctx, `SELECT `+taskCols+` FROM tasks WHERE id = ? AND deleted = 0`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, NotFoundError{Kind: "task", ID: id}
	}
	return t, err
}

// Tasks lists the live tasks of a column or an inbox in position order.
func (s *Store) Tasks(ctx context.Context, ref model.ContainerRef) ([]model.Task, error) {
	if ref.Kind == model.ContainerBoard {
		return nil, errors.New("tasks live in columns or inboxes, not boards")
	}
	set, err := siblingsOf(ref)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskCols+` FROM tasks WHERE `+set.where+` ORDER BY position ASC, id ASC`, set.args...)
	if err != nil {
		return nil, err
	}
	return scanTasks(rows)
}

// listBoardTasks returns the tasks of every live column of a board, each column in position order.
func listBoardTasks(ctx context.Context, q queryer, boardID string) ([]model.Task, error) {
	rows, err := q.QueryContext(ctx, `
SELECT t.id, t.board_id, t.column_id, t.owner_actor_id, t.title, t.description, t.position,
       t.created_by, t.created_at_unixms, t.updated_at_unixms, t.deleted
FROM tasks t
JOIN board_columns c ON c.id = t.column_id AND c.deleted = 0
WHERE t.board_id = ? AND t.deleted = 0
ORDER BY t.column_id ASC, t.position ASC, t.id ASC`, boardID)
	if err != nil {
		return nil, err
	}
	return scanTasks(rows)
}

// TaskMove is a request to place a task between two neighbours of a
// destination container. An empty ColumnID targets the actor's inbox.
type TaskMove struct {
	TaskID   string
	ColumnID string
	BoardID  string
	BeforeID string
	AfterID  string
}

// MoveTask places a task in its destination and persists position and container together.
func (s *Store) MoveTask(ctx context.Context, actorID string, m TaskMove) (model.MoveResult, error) {
	var out model.MoveResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		t, err := taskByID(ctx, tx, m.TaskID)
		if err != nil {
			return err
		}
		if t.InInbox() && t.OwnerActorID != actorID {
			return OwnerOnlyError{ActorID: actorID, OwnerActorID: t.OwnerActorID, TaskID: t.ID}
		}

		var (
			ref     model.ContainerRef
			boardID string
			owner   = t.OwnerActorID
		)
		if m.ColumnID == "" {
			ref = model.InboxContainer(actorID)
			owner = actorID
		} else {
			col, err := columnByID(ctx, tx, m.ColumnID)
			if err != nil {
				return err
			}
			if m.BoardID != "" && m.BoardID != col.BoardID {
				return NotFoundError{Kind: "column", ID: m.ColumnID, In: model.BoardContainer(m.BoardID).String()}
			}
			ref = model.ColumnContainer(col.ID)
			boardID = col.BoardID
		}
		set, err := siblingsOf(ref)
		if err != nil {
			return err
		}

		nowMs := s.nowMs()
		alloc, err := allocateTx(ctx, tx, set, t.ID, m.BeforeID, m.AfterID, nowMs)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
UPDATE tasks SET position = ?, column_id = ?, board_id = ?, owner_actor_id = ?, updated_at_unixms = ?
WHERE id = ?`, alloc.Position, m.ColumnID, boardID, owner, nowMs, t.ID); err != nil {
			return err
		}

		out = model.MoveResult{
			ItemID:      t.ID,
			Container:   ref,
			NewPosition: alloc.Position,
			Rebalanced:  alloc.Rebalanced,
			BoardIDs:    affectedBoards(t.BoardID, boardID),
		}
		return appendEventTx(ctx, tx, nowMs, actorID, "task.move", "task", t.ID, map[string]any{
			"from":       taskContainer(t).String(),
			"to":         ref.String(),
			"beforeId":   m.BeforeID,
			"afterId":    m.AfterID,
			"position":   alloc.Position,
			"rebalanced": alloc.Rebalanced,
		})
	})
	if err != nil {
		return model.MoveResult{}, err
	}
	return out, nil
}

func (s *Store) RenameTask(ctx context.Context, actorID, id, title, description string) (model.Task, error) {
	var out model.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		t, err := taskByID(ctx, tx, id)
		if err != nil {
			return err
		}
		nowMs := s.nowMs()
		t.Title = strings.TrimSpace(title)
		t.Description = description
		t.UpdatedAt = fromUnixMs(nowMs)
		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks SET title = ?, description = ?, updated_at_unixms = ? WHERE id = ?`,
			t.Title, t.Description, nowMs, id); err != nil {
			return err
		}
		out = t
		return appendEventTx(ctx, tx, nowMs, actorID, "task.rename", "task", id, map[string]any{"title": t.Title})
	})
	return out, err
}

// DeleteTask soft-deletes a task. Sibling positions are left as they are.
func (s *Store) DeleteTask(ctx context.Context, actorID, id string) (model.Task, error) {
	var out model.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		t, err := taskByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if t.InInbox() && t.OwnerActorID != actorID {
			return OwnerOnlyError{ActorID: actorID, OwnerActorID: t.OwnerActorID, TaskID: t.ID}
		}
		nowMs := s.nowMs()
		if _, err := tx.ExecContext(ctx, `UPDATE tasks SET deleted = 1, updated_at_unixms = ? WHERE id = ?`, nowMs, id); err != nil {
			return err
		}
		t.Deleted = true
		out = t
		return appendEventTx(ctx, tx, nowMs, actorID, "task.delete", "task", id, map[string]any{
			"container": taskContainer(t).String(),
		})
	})
	return out, err
}

func taskContainer(t model.Task) model.ContainerRef {
	if t.InInbox() {
		return model.InboxContainer(t.OwnerActorID)
	}
	return model.ColumnContainer(t.ColumnID)
}

func affectedBoards(ids ...string) []string {
	var out []string
	seen := map[string]bool{}
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
