package model

import "time"

type Board struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Deleted   bool      `json:"deleted,omitempty"`
}

type Column struct {
	ID       string  `json:"id"`
	BoardID  string  `json:"boardId"`
	Name     string  `json:"name"`
	Position float64 `json:"position"`

	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Deleted   bool      `json:"deleted,omitempty"`
}

// Task is an ordered work item. A task with an empty ColumnID sits in the
// holding area (inbox) of OwnerActorID and has no board.
type Task struct {
	ID           string  `json:"id"`
	BoardID      string  `json:"boardId,omitempty"`
	ColumnID     string  `json:"columnId,omitempty"`
	OwnerActorID string  `json:"ownerActorId"`
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	Position     float64 `json:"position"`

	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Deleted   bool      `json:"deleted,omitempty"`
}

// InInbox reports whether the task is parked in its owner's holding area.
func (t Task) InInbox() bool { return t.ColumnID == "" }

// ContainerKind names what an ordered container holds.
type ContainerKind string

const (
	// ContainerBoard orders the columns of a board.
	ContainerBoard ContainerKind = "board"
	// ContainerColumn orders the tasks of a column.
	ContainerColumn ContainerKind = "column"
	// ContainerInbox orders the unassigned tasks of one actor.
	ContainerInbox ContainerKind = "inbox"
)

// ContainerRef identifies one ordered sibling set. For ContainerInbox, ID is the owning actor id.
type ContainerRef struct {
	Kind ContainerKind `json:"kind"`
	ID   string        `json:"id"`
}

func BoardContainer(boardID string) ContainerRef   { return ContainerRef{Kind: ContainerBoard, ID: boardID} }
func ColumnContainer(columnID string) ContainerRef { return ContainerRef{Kind: ContainerColumn, ID: columnID} }
func InboxContainer(actorID string) ContainerRef   { return ContainerRef{Kind: ContainerInbox, ID: actorID} }

func (c ContainerRef) String() string {
	return string(c.Kind) + ":" + c.ID
}

// MoveIntent is a requested reorder expressed as the item's new neighbours.
// BeforeID is the item that should end up immediately before the moved item,
// AfterID the one immediately after it. Both empty means the container is empty.
type MoveIntent struct {
	ItemID    string       `json:"itemId"`
	BeforeID  string       `json:"beforeId,omitempty"`
	AfterID   string       `json:"afterId,omitempty"`
	Container ContainerRef `json:"container"`
}

// BoardSnapshot is a board with its live columns and their tasks, all in position order.
type BoardSnapshot struct {
	Board   Board             `json:"board"`
	Columns []ColumnWithTasks `json:"columns"`
}

type ColumnWithTasks struct {
	Column
	Tasks []Task `json:"tasks"`
}

type Event struct {
	ID         string    `json:"id"`
	TS         time.Time `json:"ts"`
	ActorID    string    `json:"actorId"`
	Type       string    `json:"type"`
	EntityKind string    `json:"entityKind"`
	EntityID   string    `json:"entityId"`
	Payload    any       `json:"payload"`
}
