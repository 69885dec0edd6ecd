package mutate

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"lanes-cli/internal/model"
	"lanes-cli/internal/store"
)

func (s *Service) CreateBoard(ctx context.Context, actorID string, req model.CreateBoardRequest) (model.Board, error) {
	actorID, err := requireActor(actorID)
	if err != nil {
		return model.Board{}, err
	}
	name, err := requireName("name", req.Name)
	if err != nil {
		return model.Board{}, err
	}
	return s.store.CreateBoard(ctx, actorID, name)
}

func (s *Service) CreateColumn(ctx context.Context, actorID string, req model.CreateColumnRequest) (model.Column, error) {
	actorID, err := requireActor(actorID)
	if err != nil {
		return model.Column{}, err
	}
	boardID, err := requireID("boardId", req.BoardID)
	if err != nil {
		return model.Column{}, err
	}
	name, err := requireName("name", req.Name)
	if err != nil {
		return model.Column{}, err
	}
	c, err := s.store.CreateColumn(ctx, actorID, boardID, name)
	if err != nil {
		return model.Column{}, err
	}
	s.changed(ctx, c.BoardID)
	return c, nil
}

// CreateTask appends to a column, or prepends to the actor's inbox when no column is given.
func (s *Service) CreateTask(ctx context.Context, actorID string, req model.CreateTaskRequest) (t model.Task, err error) {
	ctx, span := s.startSpan(ctx, "task.create", attribute.String("lanes.column_id", req.ColumnID))
	defer func() { endSpan(span, err) }()

	if actorID, err = requireActor(actorID); err != nil {
		return model.Task{}, err
	}
	title, err := requireName("title", req.Title)
	if err != nil {
		return model.Task{}, err
	}
	columnID, err := optionalID("columnId", req.ColumnID)
	if err != nil {
		return model.Task{}, err
	}
	boardID, err := optionalID("boardId", req.BoardID)
	if err != nil {
		return model.Task{}, err
	}
	t, err = s.store.CreateTask(ctx, actorID, store.NewTask{
		Title:       title,
		Description: req.Description,
		ColumnID:    columnID,
		BoardID:     boardID,
	})
	if err != nil {
		return model.Task{}, err
	}
	s.changed(ctx, t.BoardID)
	return t, nil
}

func (s *Service) RenameBoard(ctx context.Context, actorID, boardID string, req model.RenameRequest) (model.Board, error) {
	actorID, err := requireActor(actorID)
	if err != nil {
		return model.Board{}, err
	}
	if boardID, err = requireID("boardId", boardID); err != nil {
		return model.Board{}, err
	}
	name, err := requireName("name", req.Name)
	if err != nil {
		return model.Board{}, err
	}
	b, err := s.store.RenameBoard(ctx, actorID, boardID, name)
	if err != nil {
		return model.Board{}, err
	}
	s.changed(ctx, b.ID)
	return b, nil
}

func (s *Service) RenameColumn(ctx context.Context, actorID, columnID string, req model.RenameRequest) (model.Column, error) {
	actorID, err := requireActor(actorID)
	if err != nil {
		return model.Column{}, err
	}
	if columnID, err = requireID("columnId", columnID); err != nil {
		return model.Column{}, err
	}
	name, err := requireName("name", req.Name)
	if err != nil {
		return model.Column{}, err
	}
	c, err := s.store.RenameColumn(ctx, actorID, columnID, name)
	if err != nil {
		return model.Column{}, err
	}
	s.changed(ctx, c.BoardID)
	return c, nil
}

func (s *Service) UpdateTask(ctx context.Context, actorID, taskID string, req model.UpdateTaskRequest) (model.Task, error) {
	actorID, err := requireActor(actorID)
	if err != nil {
		return model.Task{}, err
	}
	if taskID, err = requireID("taskId", taskID); err != nil {
		return model.Task{}, err
	}
	title, err := requireName("title", req.Title)
	if err != nil {
		return model.Task{}, err
	}
	t, err := s.store.RenameTask(ctx, actorID, taskID, title, req.Description)
	if err != nil {
		return model.Task{}, err
	}
	s.changed(ctx, t.BoardID)
	return t, nil
}

func (s *Service) DeleteBoard(ctx context.Context, actorID, boardID string) error {
	actorID, err := requireActor(actorID)
	if err != nil {
		return err
	}
	if boardID, err = requireID("boardId", boardID); err != nil {
		return err
	}
	if err := s.store.DeleteBoard(ctx, actorID, boardID); err != nil {
		return err
	}
	s.changed(ctx, boardID)
	return nil
}

func (s *Service) DeleteColumn(ctx context.Context, actorID, columnID string) (model.Column, error) {
	actorID, err := requireActor(actorID)
	if err != nil {
		return model.Column{}, err
	}
	if columnID, err = requireID("columnId", columnID); err != nil {
		return model.Column{}, err
	}
	c, err := s.store.DeleteColumn(ctx, actorID, columnID)
	if err != nil {
		return model.Column{}, err
	}
	s.changed(ctx, c.BoardID)
	return c, nil
}

func (s *Service) DeleteTask(ctx context.Context, actorID, taskID string) (model.Task, error) {
	actorID, err := requireActor(actorID)
	if err != nil {
		return model.Task{}, err
	}
	if taskID, err = requireID("taskId", taskID); err != nil {
		return model.Task{}, err
	}
	t, err := s.store.DeleteTask(ctx, actorID, taskID)
	if err != nil {
		return model.Task{}, err
	}
	s.changed(ctx, t.BoardID)
	return t, nil
}

func (s *Service) Boards(ctx context.Context) ([]model.Board, error) {
	return s.store.Boards(ctx)
}

// Board returns a board snapshot, served from the cache when one is configured.
func (s *Service) Board(ctx context.Context, boardID string) (model.BoardSnapshot, error) {
	boardID, err := requireID("boardId", boardID)
	if err != nil {
		return model.BoardSnapshot{}, err
	}
	return s.cache.BoardSnapshot(ctx, boardID)
}

// Inbox lists the actor's holding-area tasks, first first.
func (s *Service) Inbox(ctx context.Context, actorID string) ([]model.Task, error) {
	actorID, err := requireActor(actorID)
	if err != nil {
		return nil, err
	}
	return s.store.Tasks(ctx, model.InboxContainer(actorID))
}

func (s *Service) Events(ctx context.Context, f store.EventFilter) ([]model.Event, error) {
	if f.Limit < 0 {
		return nil, ValidationError{Field: "limit", Reason: "negative"}
	}
	return s.store.Events(ctx, f)
}

// Doctor checks every container and, with fix, rebalances the broken ones.
func (s *Service) Doctor(ctx context.Context, actorID string, fix bool) (store.DoctorReport, error) {
	actorID, err := requireActor(actorID)
	if err != nil {
		return store.DoctorReport{}, err
	}
	rep, err := s.store.Doctor(ctx, actorID, fix)
	if err != nil {
		return store.DoctorReport{}, err
	}
	if fix {
		var boards []string
		for _, it := range rep.Issues {
			if it.Fixed {
				boards = append(boards, s.boardOf(ctx, it.Container))
			}
		}
		s.changed(ctx, boards...)
	}
	return rep, nil
}
