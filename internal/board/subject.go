// Package board is the client side of board ordering: an optimistic snapshot
// owned by a single writer, the drag state machine that mutates it, the
// collision resolver that picks drop targets, and the reconciliation step
// that runs when the server refuses a move.
package board

// SubjectKind tells a dragged card from a dragged lane.
type SubjectKind uint8

const (
	SubjectTask SubjectKind = iota + 1
	SubjectColumn
)

func (k SubjectKind) String() string {
	switch k {
	case SubjectTask:
		return "task"
	case SubjectColumn:
		return "column"
	default:
		return "none"
	}
}

// Subject is what a drag session carries: exactly one task or one column.
type Subject struct {
	Kind SubjectKind
	ID   string
}

func Task(id string) Subject   { return Subject{Kind: SubjectTask, ID: id} }
func Column(id string) Subject { return Subject{Kind: SubjectColumn, ID: id} }

func (s Subject) IsZero() bool   { return s.Kind == 0 || s.ID == "" }
func (s Subject) IsColumn() bool { return s.Kind == SubjectColumn }

func (s Subject) String() string {
	if s.IsZero() {
		return "none"
	}
	return s.Kind.String() + ":" + s.ID
}
