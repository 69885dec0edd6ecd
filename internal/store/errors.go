package store

import "fmt"

// NotFoundError reports a missing or deleted entity. In names the container
// the entity was expected in, when the lookup was container-scoped.
type NotFoundError struct {
	Kind string
	ID   string
	In   string
}

func (e NotFoundError) Error() string {
	if e.In != "" {
		return fmt.Sprintf("%s not found in %s: %s", e.Kind, e.In, e.ID)
	}
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ConflictError reports a move whose neighbours no longer describe the stored order.
type ConflictError struct {
	Reason string
}

func (e ConflictError) Error() string {
	return "conflict: " + e.Reason
}

// OwnerOnlyError reports an attempt to move a task out of another actor's inbox.
type OwnerOnlyError struct {
	ActorID      string
	OwnerActorID string
	TaskID       string
}

func (e OwnerOnlyError) Error() string {
	return fmt.Sprintf("permission denied: actor %s is not owner %s for task %s", e.ActorID, e.OwnerActorID, e.TaskID)
}
