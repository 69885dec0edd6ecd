package cli

import (
	"context"
	"errors"
	"io"
	"strings"

	"lanes-cli/internal/client"
	"lanes-cli/internal/model"
	"lanes-cli/internal/mutate"
	"lanes-cli/internal/store"
)

// backend is what the entity commands need. It is served either by a lanes
// server (client.Client) or directly by the local database.
type backend interface {
	Boards(ctx context.Context) ([]model.Board, error)
	Board(ctx context.Context, boardID string) (model.BoardSnapshot, error)
	Inbox(ctx context.Context) ([]model.Task, error)
	CreateBoard(ctx context.Context, name string) (model.Board, error)
	CreateColumn(ctx context.Context, boardID, name string) (model.Column, error)
	CreateTask(ctx context.Context, req model.CreateTaskRequest) (model.Task, error)
	RenameBoard(ctx context.Context, boardID, name string) (model.Board, error)
	RenameColumn(ctx context.Context, columnID, name string) (model.Column, error)
	UpdateTask(ctx context.Context, taskID string, req model.UpdateTaskRequest) (model.Task, error)
	SwitchTask(ctx context.Context, taskID string, req model.SwitchTaskRequest) (model.SwitchResponse, error)
	SwitchColumn(ctx context.Context, columnID string, req model.SwitchColumnRequest) (model.SwitchResponse, error)
	DeleteBoard(ctx context.Context, boardID string) error
	DeleteColumn(ctx context.Context, columnID string) (model.Column, error)
	DeleteTask(ctx context.Context, taskID string) (model.Task, error)
	Rebalance(ctx context.Context, ref model.ContainerRef) (int, error)
	Events(ctx context.Context, entityID string, limit int) ([]model.Event, error)
}

var _ backend = (*client.Client)(nil)
var _ backend = (*localBackend)(nil)

// openBackend picks the server when one is configured, the local database otherwise.
// The returned closer releases the database.
func openBackend(ctx context.Context, app *App) (backend, io.Closer, error) {
	if srv := strings.TrimSpace(app.Server); srv != "" {
		return client.New(srv, app.ActorID), io.NopCloser(nil), nil
	}
	svc, st, err := openLocal(ctx, app)
	if err != nil {
		return nil, nil, err
	}
	return &localBackend{svc: svc, actorID: app.ActorID}, st, nil
}

func openLocal(ctx context.Context, app *App) (*mutate.Service, *store.Store, error) {
	path, err := app.dbPath()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return mutate.New(st, mutate.WithLogger(app.newLogger(io.Discard))), st, nil
}

var errNoActor = errors.New("no actor; pass --actor, set LANES_ACTOR or run `lanes config set actor <id>`")

// localBackend runs commands in-process against the mutate service, as the
// configured actor.
type localBackend struct {
	svc     *mutate.Service
	actorID string
}

func (b *localBackend) actor() (string, error) {
	if strings.TrimSpace(b.actorID) == "" {
		return "", errNoActor
	}
	return b.actorID, nil
}

func (b *localBackend) Boards(ctx context.Context) ([]model.Board, error) {
	return b.svc.Boards(ctx)
}

func (b *localBackend) Board(ctx context.Context, boardID string) (model.BoardSnapshot, error) {
	return b.svc.Board(ctx, boardID)
}

func (b *localBackend) Inbox(ctx context.Context) ([]model.Task, error) {
	actorID, err := b.actor()
	if err != nil {
		return nil, err
	}
	return b.svc.Inbox(ctx, actorID)
}

func (b *localBackend) CreateBoard(ctx context.Context, name string) (model.Board, error) {
	actorID, err := b.actor()
	if err != nil {
		return model.Board{}, err
	}
	return b.svc.CreateBoard(ctx, actorID, model.CreateBoardRequest{Name: name})
}

func (b *localBackend) CreateColumn(ctx context.Context, boardID, name string) (model.Column, error) {
	actorID, err := b.actor()
	if err != nil {
		return model.Column{}, err
	}
	return b.svc.CreateColumn(ctx, actorID, model.CreateColumnRequest{BoardID: boardID, Name: name})
}

func (b *localBackend) CreateTask(ctx context.Context, req model.CreateTaskRequest) (model.Task, error) {
	actorID, err := b.actor()
	if err != nil {
		return model.Task{}, err
	}
	return b.svc.CreateTask(ctx, actorID, req)
}

func (b *localBackend) RenameBoard(ctx context.Context, boardID, name string) (model.Board, error) {
	actorID, err := b.actor()
	if err != nil {
		return model.Board{}, err
	}
	return b.svc.RenameBoard(ctx, actorID, boardID, model.RenameRequest{Name: name})
}

func (b *localBackend) RenameColumn(ctx context.Context, columnID, name string) (model.Column, error) {
	actorID, err := b.actor()
	if err != nil {
		return model.Column{}, err
	}
	return b.svc.RenameColumn(ctx, actorID, columnID, model.RenameRequest{Name: name})
}

func (b *localBackend) UpdateTask(ctx context.Context, taskID string, req model.UpdateTaskRequest) (model.Task, error) {
	actorID, err := b.actor()
	if err != nil {
		return model.Task{}, err
	}
	return b.svc.UpdateTask(ctx, actorID, taskID, req)
}

func (b *localBackend) SwitchTask(ctx context.Context, taskID string, req model.SwitchTaskRequest) (model.SwitchResponse, error) {
	actorID, err := b.actor()
	if err != nil {
		return model.SwitchResponse{}, err
	}
	res, err := b.svc.SwitchTaskPosition(ctx, actorID, taskID, req)
	if err != nil {
		return model.SwitchResponse{}, err
	}
	return model.SwitchResponse{Message: "Task position updated", NewPosition: res.NewPosition}, nil
}

func (b *localBackend) SwitchColumn(ctx context.Context, columnID string, req model.SwitchColumnRequest) (model.SwitchResponse, error) {
	actorID, err := b.actor()
	if err != nil {
		return model.SwitchResponse{}, err
	}
	res, err := b.svc.SwitchColumnPosition(ctx, actorID, columnID, req)
	if err != nil {
		return model.SwitchResponse{}, err
	}
	return model.SwitchResponse{Message: "Column position updated", NewPosition: res.NewPosition}, nil
}

func (b *localBackend) DeleteBoard(ctx context.Context, boardID string) error {
	actorID, err := b.actor()
	if err != nil {
		return err
	}
	return b.svc.DeleteBoard(ctx, actorID, boardID)
}

func (b *localBackend) DeleteColumn(ctx context.Context, columnID string) (model.Column, error) {
	actorID, err := b.actor()
	if err != nil {
		return model.Column{}, err
	}
	return b.svc.DeleteColumn(ctx, actorID, columnID)
}

func (b *localBackend) DeleteTask(ctx context.Context, taskID string) (model.Task, error) {
	actorID, err := b.actor()
	if err != nil {
		return model.Task{}, err
	}
	return b.svc.DeleteTask(ctx, actorID, taskID)
}

func (b *localBackend) Rebalance(ctx context.Context, ref model.ContainerRef) (int, error) {
	actorID, err := b.actor()
	if err != nil {
		return 0, err
	}
	if ref.Kind == model.ContainerInbox {
		ref.ID = actorID
	}
	return b.svc.Rebalance(ctx, actorID, ref)
}

func (b *localBackend) Events(ctx context.Context, entityID string, limit int) ([]model.Event, error) {
	return b.svc.Events(ctx, store.EventFilter{EntityID: strings.TrimSpace(entityID), Limit: limit})
}
