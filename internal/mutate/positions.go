package mutate

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"lanes-cli/internal/model"
	"lanes-cli/internal/store"
)

// SwitchTaskPosition confirms a task move. An empty ColumnID moves the task
// into the acting user's inbox.
func (s *Service) SwitchTaskPosition(ctx context.Context, actorID, taskID string, req model.SwitchTaskRequest) (res model.MoveResult, err error) {
	ctx, span := s.startSpan(ctx, "position.switch_task",
		attribute.String("lanes.task_id", taskID),
		attribute.String("lanes.column_id", req.ColumnID),
	)
	defer func() {
		if err == nil {
			span.SetAttributes(
				attribute.Float64("lanes.position", res.NewPosition),
				attribute.Int("lanes.rebalanced", res.Rebalanced),
			)
		}
		endSpan(span, err)
	}()

	if actorID, err = requireActor(actorID); err != nil {
		return model.MoveResult{}, err
	}
	if taskID, err = requireID("taskId", taskID); err != nil {
		return model.MoveResult{}, err
	}
	columnID, err := optionalID("columnId", req.ColumnID)
	if err != nil {
		return model.MoveResult{}, err
	}
	boardID, err := optionalID("boardId", req.BoardID)
	if err != nil {
		return model.MoveResult{}, err
	}
	before, after, err := validateNeighbours(taskID, "beforeTaskId", req.BeforeTaskID, "afterTaskId", req.AfterTaskID)
	if err != nil {
		return model.MoveResult{}, err
	}

	res, err = s.store.MoveTask(ctx, actorID, store.TaskMove{
		TaskID:   taskID,
		ColumnID: columnID,
		BoardID:  boardID,
		BeforeID: before,
		AfterID:  after,
	})
	if err != nil {
		return model.MoveResult{}, err
	}
	s.logRebalance(res.Container, res.Rebalanced, "task.move")
	s.changed(ctx, res.BoardIDs...)
	return res, nil
}

// SwitchColumnPosition confirms a column move within its board.
func (s *Service) SwitchColumnPosition(ctx context.Context, actorID, columnID string, req model.SwitchColumnRequest) (res model.MoveResult, err error) {
	ctx, span := s.startSpan(ctx, "position.switch_column",
		attribute.String("lanes.column_id", columnID),
		attribute.String("lanes.board_id", req.BoardID),
	)
	defer func() {
		if err == nil {
			span.SetAttributes(
				attribute.Float64("lanes.position", res.NewPosition),
				attribute.Int("lanes.rebalanced", res.Rebalanced),
			)
		}
		endSpan(span, err)
	}()

	if actorID, err = requireActor(actorID); err != nil {
		return model.MoveResult{}, err
	}
	if columnID, err = requireID("columnId", columnID); err != nil {
		return model.MoveResult{}, err
	}
	boardID, err := requireID("boardId", req.BoardID)
	if err != nil {
		return model.MoveResult{}, err
	}
	before, after, err := validateNeighbours(columnID, "beforeColumnId", req.BeforeColumnID, "afterColumnId", req.AfterColumnID)
	if err != nil {
		return model.MoveResult{}, err
	}

	res, err = s.store.MoveColumn(ctx, actorID, columnID, boardID, before, after)
	if err != nil {
		return model.MoveResult{}, err
	}
	s.logRebalance(res.Container, res.Rebalanced, "column.move")
	s.changed(ctx, res.BoardIDs...)
	return res, nil
}

// Rebalance respaces one container on request.
func (s *Service) Rebalance(ctx context.Context, actorID string, ref model.ContainerRef) (n int, err error) {
	ctx, span := s.startSpan(ctx, "position.rebalance",
		attribute.String("lanes.container_kind", string(ref.Kind)),
		attribute.String("lanes.container_id", ref.ID),
	)
	defer func() {
		span.SetAttributes(attribute.Int("lanes.rebalanced", n))
		endSpan(span, err)
	}()

	if actorID, err = requireActor(actorID); err != nil {
		return 0, err
	}
	switch ref.Kind {
	case model.ContainerBoard, model.ContainerColumn:
		if ref.ID, err = requireID(string(ref.Kind)+"Id", ref.ID); err != nil {
			return 0, err
		}
	case model.ContainerInbox:
		if ref.ID, err = requireActor(ref.ID); err != nil {
			return 0, err
		}
	default:
		return 0, ValidationError{Field: "container", Reason: "unknown kind " + string(ref.Kind)}
	}

	n, err = s.store.Rebalance(ctx, actorID, ref)
	if err != nil {
		return 0, err
	}
	s.logRebalance(ref, n, "explicit")
	if n > 0 {
		s.changed(ctx, s.boardOf(ctx, ref))
	}
	return n, nil
}

func (s *Service) boardOf(ctx context.Context, ref model.ContainerRef) string {
	switch ref.Kind {
	case model.ContainerBoard:
		return ref.ID
	case model.ContainerColumn:
		if c, err := s.store.Column(ctx, ref.ID); err == nil {
			return c.BoardID
		}
	}
	return ""
}
