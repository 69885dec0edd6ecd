package board

import (
	"lanes-cli/internal/model"
)

type State uint8

const (
	Idle State = iota
	// Pending is a press that has not yet travelled far enough to count as a drag.
	Pending
	Dragging
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Dragging:
		return "dragging"
	default:
		return "idle"
	}
}

// DefaultActivationDistance is how many cells the pointer must travel
// before a press becomes a drag.
const DefaultActivationDistance = 1

// Intent is a finished move, expressed as the subject's new neighbours.
// For columns, Origin and Container are the board id.
type Intent struct {
	Subject   Subject
	Origin    string
	Container string
	BeforeID  string
	AfterID   string
}

// CrossesLanes reports whether a task left the lane it started in.
func (i Intent) CrossesLanes() bool { return i.Origin != i.Container }

// MoveIntent is the wire-neutral form of the intent. actorID names the inbox owner.
func (i Intent) MoveIntent(actorID string) model.MoveIntent {
	ref := model.ColumnContainer(i.Container)
	switch {
	case i.Subject.IsColumn():
		ref = model.BoardContainer(i.Container)
	case i.Container == InboxLaneID:
		ref = model.InboxContainer(actorID)
	}
	return model.MoveIntent{ItemID: i.Subject.ID, BeforeID: i.BeforeID, AfterID: i.AfterID, Container: ref}
}

// SwitchTask builds the task request. The inbox lane is sent as an empty column.
func (i Intent) SwitchTask(boardID string) model.SwitchTaskRequest {
	req := model.SwitchTaskRequest{BeforeTaskID: i.BeforeID, AfterTaskID: i.AfterID, BoardID: boardID}
	if i.Container != InboxLaneID {
		req.ColumnID = i.Container
	}
	return req
}

func (i Intent) SwitchColumn(boardID string) model.SwitchColumnRequest {
	return model.SwitchColumnRequest{BeforeColumnID: i.BeforeID, AfterColumnID: i.AfterID, BoardID: boardID}
}

// Machine tracks one drag session at a time and applies its effects to a Store.
//
// Cross-lane moves are spliced into the store while dragging; reorders inside
// a lane, and all column reorders, are applied on drop. Cancel restores the
// snapshot taken when the drag started, undoing any cross-lane splice, so the
// board is never left half-moved.
type Machine struct {
	store      *Store
	resolver   Resolver
	activation int

	state   State
	subject Subject
	start   Point
	rect    Rect
	pointer Point
	target  Target
	before  Snapshot
}

func NewMachine(st *Store, activation int) *Machine {
	return &Machine{store: st, activation: activation}
}

func (m *Machine) State() State     { return m.state }
func (m *Machine) Subject() Subject { return m.subject }
func (m *Machine) Target() Target   { return m.target }
func (m *Machine) Dragging() bool   { return m.state == Dragging }

// Active is where the dragged subject is drawn now.
func (m *Machine) Active() Rect {
	return m.rect.Translate(m.pointer.X-m.start.X, m.pointer.Y-m.start.Y)
}

// Press starts a session on sub at p. rect is where sub is drawn.
func (m *Machine) Press(sub Subject, p Point, rect Rect) bool {
	if m.state != Idle || sub.IsZero() {
		return false
	}
	m.state = Pending
	m.subject = sub
	m.start = p
	m.pointer = p
	m.rect = rect
	m.target = Target{}
	return true
}

// Move handles one pointer tick. It reports whether the store changed.
func (m *Machine) Move(p Point, layout Layout) bool {
	switch m.state {
	case Idle:
		return false
	case Pending:
		dx, dy := p.X-m.start.X, p.Y-m.start.Y
		if dx*dx+dy*dy < m.activation*m.activation {
			return false
		}
		m.activate()
	}
	m.pointer = p

	t, ok := m.resolver.Resolve(m.subject, Geometry{Pointer: p, Active: m.Active()}, layout)
	if !ok {
		return false
	}
	m.target = t
	if m.subject.IsColumn() {
		return false
	}

	st := m.store.State()
	cur := st.LaneOf(m.subject.ID)
	if t.LaneID == "" || t.LaneID == cur || cur == "" {
		return false
	}
	dst := st.LaneIndex(t.LaneID)
	if dst < 0 {
		return false
	}
	idx := len(st.Lanes[dst].Cards)
	if t.Kind == TargetCard {
		if _, over, found := st.FindCard(t.ID); found {
			idx = over
			if cb, _, drawn := layout.card(t.ID); drawn && m.Active().centerBelow(cb.Rect) {
				idx++
			}
		}
	}
	m.store.Dispatch(MoveCard{CardID: m.subject.ID, LaneID: t.LaneID, Index: idx})
	m.resolver.MarkMoved()
	// The splice already put the card where the target asked; dropping now keeps it there.
	m.target = Target{Kind: TargetCard, ID: m.subject.ID, LaneID: t.LaneID}
	return true
}

func (m *Machine) activate() {
	m.before = m.store.State().Clone()
	m.resolver.Reset()
	m.state = Dragging
}

// Drop ends the session. It returns an intent when the subject ended up
// somewhere other than where it started.
func (m *Machine) Drop() (Intent, bool) {
	defer m.reset()
	if m.state != Dragging {
		return Intent{}, false
	}

	st := m.store.State()
	t := m.target
	switch {
	case m.subject.IsColumn():
		if t.Kind == TargetLane && t.ID != m.subject.ID {
			if idx := st.LaneIndex(t.ID); idx >= 0 {
				m.store.Dispatch(MoveLane{LaneID: m.subject.ID, Index: idx})
			}
		}
	case t.Kind == TargetCard && t.ID != m.subject.ID && t.LaneID == st.LaneOf(m.subject.ID):
		if _, over, ok := st.FindCard(t.ID); ok {
			m.store.Dispatch(MoveCard{CardID: m.subject.ID, LaneID: t.LaneID, Index: over})
		}
	}

	return Diff(m.before, m.store.State(), m.subject)
}

// Diff returns the intent that takes sub from its place in before to its
// place in after, or false when its neighbours did not change.
func Diff(before, after Snapshot, sub Subject) (Intent, bool) {
	container, b, a, ok := after.Neighbours(sub)
	if !ok {
		return Intent{}, false
	}
	was, wb, wa, _ := before.Neighbours(sub)
	if container == was && b == wb && a == wa {
		return Intent{}, false
	}
	return Intent{Subject: sub, Origin: was, Container: container, BeforeID: b, AfterID: a}, true
}

// Cancel abandons the session without an intent and restores the pre-drag snapshot.
func (m *Machine) Cancel() bool {
	defer m.reset()
	switch m.state {
	case Dragging:
		m.store.Dispatch(Load{Snapshot: m.before})
		return true
	case Pending:
		return true
	default:
		return false
	}
}

func (m *Machine) reset() {
	m.state = Idle
	m.subject = Subject{}
	m.target = Target{}
	m.before = Snapshot{}
	m.resolver.Reset()
}
