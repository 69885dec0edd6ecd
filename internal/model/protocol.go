package model

// Wire shapes of the move confirmation protocol and the create endpoints.
// Empty strings stand for absent optional ids.

type SwitchColumnRequest struct {
	BeforeColumnID string `json:"beforeColumnId,omitempty"`
	AfterColumnID  string `json:"afterColumnId,omitempty"`
	BoardID        string `json:"boardId"`
}

// SwitchTaskRequest moves a task. An empty ColumnID places the task in the
// acting user's holding area.
type SwitchTaskRequest struct {
	BeforeTaskID string `json:"beforeTaskId,omitempty"`
	AfterTaskID  string `json:"afterTaskId,omitempty"`
	ColumnID     string `json:"columnId,omitempty"`
	BoardID      string `json:"boardId,omitempty"`
}

type SwitchResponse struct {
	Message     string  `json:"message"`
	NewPosition float64 `json:"newPosition"`
}

type CreateBoardRequest struct {
	Name string `json:"name"`
}

type CreateColumnRequest struct {
	BoardID string `json:"boardId"`
	Name    string `json:"name"`
}

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ColumnID    string `json:"columnId,omitempty"`
	BoardID     string `json:"boardId,omitempty"`
}

type RebalanceResponse struct {
	Message string `json:"message"`
	Updated int    `json:"updated"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// MoveResult is what the server learned while confirming a move.
type MoveResult struct {
	ItemID      string       `json:"itemId"`
	Container   ContainerRef `json:"container"`
	NewPosition float64      `json:"newPosition"`
	Rebalanced  int          `json:"rebalanced,omitempty"`
	BoardIDs    []string     `json:"-"`
}

type RenameRequest struct {
	Name string `json:"name"`
}

type UpdateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}
