package board

import (
	"context"
	"fmt"

	"lanes-cli/internal/model"
)

// Confirmer sends move intents to the server.
type Confirmer interface {
	SwitchTask(ctx context.Context, taskID string, req model.SwitchTaskRequest) (model.SwitchResponse, error)
	SwitchColumn(ctx context.Context, columnID string, req model.SwitchColumnRequest) (model.SwitchResponse, error)
}

// Fetcher reads authoritative board state.
type Fetcher interface {
	Board(ctx context.Context, boardID string) (model.BoardSnapshot, error)
	Inbox(ctx context.Context) ([]model.Task, error)
}

type Remote interface {
	Confirmer
	Fetcher
}

// Confirmation is the outcome of one intent. On failure Fresh holds the
// server's current board when it could be fetched.
type Confirmation struct {
	Intent       Intent
	Position     float64
	Err          error
	Fresh        *Snapshot
	ReconcileErr error
}

// Confirm sends in and returns the key the server chose.
func Confirm(ctx context.Context, c Confirmer, boardID string, in Intent) (float64, error) {
	switch in.Subject.Kind {
	case SubjectColumn:
		res, err := c.SwitchColumn(ctx, in.Subject.ID, in.SwitchColumn(boardID))
		return res.NewPosition, err
	case SubjectTask:
		res, err := c.SwitchTask(ctx, in.Subject.ID, in.SwitchTask(boardID))
		return res.NewPosition, err
	default:
		return 0, fmt.Errorf("cannot confirm %s", in.Subject)
	}
}

// Reconcile fetches the board and the actor's inbox as a fresh snapshot.
func Reconcile(ctx context.Context, f Fetcher, boardID string) (Snapshot, error) {
	snap, err := f.Board(ctx, boardID)
	if err != nil {
		return Snapshot{}, err
	}
	inbox, err := f.Inbox(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if inbox == nil {
		inbox = []model.Task{}
	}
	return FromModel(snap, inbox), nil
}

// ConfirmOrReconcile sends in and, when the server refuses it or cannot be
// reached, fetches the authoritative board so the optimistic order can be replaced.
func ConfirmOrReconcile(ctx context.Context, r Remote, boardID string, in Intent) Confirmation {
	pos, err := Confirm(ctx, r, boardID, in)
	out := Confirmation{Intent: in, Position: pos, Err: err}
	if err == nil {
		return out
	}
	fresh, rerr := Reconcile(ctx, r, boardID)
	if rerr != nil {
		out.ReconcileErr = rerr
		return out
	}
	out.Fresh = &fresh
	return out
}

// Action turns a confirmation into the store update it calls for. A refused
// column move reloads the board; a refused task move replaces the lanes it touched.
func (c Confirmation) Action() (Action, bool) {
	if c.Err == nil {
		return SetPosition{Subject: c.Intent.Subject, Position: c.Position}, true
	}
	if c.Fresh == nil {
		return nil, false
	}
	if c.Intent.Subject.IsColumn() {
		return Load{Snapshot: *c.Fresh}, true
	}
	var lanes []Lane
	for _, l := range c.Fresh.Lanes {
		if l.ID == c.Intent.Origin || l.ID == c.Intent.Container {
			lanes = append(lanes, l)
		}
	}
	return ReplaceLanes{Lanes: lanes}, true
}
