package board

import (
	"reflect"
	"testing"

	"lanes-cli/internal/model"
)

func TestDrag_CrossLaneSplice_ToEnd(t *testing.T) {
	st := NewStore(snap("c1:A,B", "c2:C,D"))
	m := NewMachine(st, DefaultActivationDistance)
	layout := gridLayout(st.State())

	if !m.Press(Task("A"), Point{X: 5, Y: 2}, mustRect(t, layout, Task("A"))) {
		t.Fatalf("press refused")
	}
	// Pointer over lane c2 below D; the card's centre is past D's.
	if !m.Move(Point{X: 30, Y: 12}, layout) {
		t.Fatalf("expected the move to splice A into c2")
	}
	assertCards(t, st.State(), "c1", "B")
	assertCards(t, st.State(), "c2", "C", "D", "A")

	// One more tick over the gap right after the splice must not snap back.
	layout = gridLayout(st.State())
	m.Move(Point{X: 21, Y: 30}, layout)
	assertCards(t, st.State(), "c2", "C", "D", "A")

	in, ok := m.Drop()
	if !ok {
		t.Fatalf("expected an intent")
	}
	want := Intent{Subject: Task("A"), Origin: "c1", Container: "c2", BeforeID: "D"}
	if in != want {
		t.Fatalf("expected %+v, got %+v", want, in)
	}
	if req := in.SwitchTask("b1"); req.ColumnID != "c2" || req.BeforeTaskID != "D" || req.AfterTaskID != "" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if m.State() != Idle {
		t.Fatalf("expected idle after drop, got %s", m.State())
	}
}

func TestDrag_ReorderWithinLane_AppliedOnDrop(t *testing.T) {
	st := NewStore(snap("c1:A,B,C"))
	m := NewMachine(st, DefaultActivationDistance)
	layout := gridLayout(st.State())

	m.Press(Task("C"), Point{X: 5, Y: 10}, mustRect(t, layout, Task("C")))
	m.Move(Point{X: 5, Y: 2}, layout)
	assertCards(t, st.State(), "c1", "A", "B", "C")
	if m.Target().ID != "A" {
		t.Fatalf("expected target A, got %+v", m.Target())
	}

	in, ok := m.Drop()
	if !ok {
		t.Fatalf("expected an intent")
	}
	assertCards(t, st.State(), "c1", "C", "A", "B")
	if in.Container != "c1" || in.BeforeID != "" || in.AfterID != "A" || in.CrossesLanes() {
		t.Fatalf("unexpected intent: %+v", in)
	}
}

func TestDrag_ColumnSwap_TodoDone(t *testing.T) {
	st := NewStore(snap("inbox:", "todo:", "done:"))
	m := NewMachine(st, DefaultActivationDistance)
	layout := gridLayout(st.State())

	m.Press(Column("done"), Point{X: 48, Y: 1}, mustRect(t, layout, Column("done")))
	m.Move(Point{X: 26, Y: 1}, layout)
	in, ok := m.Drop()
	if !ok {
		t.Fatalf("expected an intent")
	}
	if got := st.State().LaneIDs(); !reflect.DeepEqual(got, []string{"inbox", "done", "todo"}) {
		t.Fatalf("unexpected lane order: %v", got)
	}
	req := in.SwitchColumn("b1")
	if req.BeforeColumnID != "" || req.AfterColumnID != "todo" || req.BoardID != "b1" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if mi := in.MoveIntent("act-a"); mi.Container != model.BoardContainer("b1") || mi.ItemID != "done" {
		t.Fatalf("unexpected move intent: %+v", mi)
	}
}

func TestDrag_ShortPressIsAClick(t *testing.T) {
	st := NewStore(snap("c1:A,B"))
	m := NewMachine(st, 3)
	layout := gridLayout(st.State())

	m.Press(Task("A"), Point{X: 5, Y: 2}, mustRect(t, layout, Task("A")))
	if m.Move(Point{X: 6, Y: 3}, layout) {
		t.Fatalf("a short move must not change the store")
	}
	if m.State() != Pending {
		t.Fatalf("expected pending, got %s", m.State())
	}
	if _, ok := m.Drop(); ok {
		t.Fatalf("a click must not produce an intent")
	}
	if st.Version() != 0 {
		t.Fatalf("store changed on click")
	}
}

func TestDrag_DropInPlace_NoIntent(t *testing.T) {
	st := NewStore(snap("c1:A,B"))
	m := NewMachine(st, DefaultActivationDistance)
	layout := gridLayout(st.State())

	m.Press(Task("B"), Point{X: 5, Y: 6}, mustRect(t, layout, Task("B")))
	m.Move(Point{X: 7, Y: 6}, layout)
	if m.State() != Dragging {
		t.Fatalf("expected dragging, got %s", m.State())
	}
	if in, ok := m.Drop(); ok {
		t.Fatalf("expected no intent, got %+v", in)
	}
}

func TestDrag_CancelRestoresPreDragSnapshot(t *testing.T) {
	st := NewStore(snap("c1:A,B", "c2:C,D"))
	m := NewMachine(st, DefaultActivationDistance)
	layout := gridLayout(st.State())

	m.Press(Task("A"), Point{X: 5, Y: 2}, mustRect(t, layout, Task("A")))
	m.Move(Point{X: 30, Y: 12}, layout)
	assertCards(t, st.State(), "c2", "C", "D", "A")

	if !m.Cancel() {
		t.Fatalf("expected cancel to end the session")
	}
	assertCards(t, st.State(), "c1", "A", "B")
	assertCards(t, st.State(), "c2", "C", "D")
	if m.Cancel() {
		t.Fatalf("cancel while idle should report false")
	}
}

func TestDrag_PressWhileBusyRefused(t *testing.T) {
	st := NewStore(snap("c1:A,B"))
	m := NewMachine(st, DefaultActivationDistance)
	m.Press(Task("A"), Point{}, Rect{W: 1, H: 1})
	if m.Press(Task("B"), Point{}, Rect{W: 1, H: 1}) {
		t.Fatalf("a second press must be refused")
	}
	if m.Press(Subject{}, Point{}, Rect{}) {
		t.Fatalf("zero subject must be refused")
	}
}

func TestNudge(t *testing.T) {
	st := NewStore(snap("inbox:X", "c1:A,B", "c2:"))

	in, ok := Nudge(st, Task("A"), 0, 1)
	if !ok || in.BeforeID != "B" || in.AfterID != "" {
		t.Fatalf("unexpected nudge down: %+v %v", in, ok)
	}
	assertCards(t, st.State(), "c1", "B", "A")

	if _, ok := Nudge(st, Task("B"), 0, -1); ok {
		t.Fatalf("nudging the first card up must do nothing")
	}

	in, ok = Nudge(st, Task("A"), 1, 0)
	if !ok || in.Origin != "c1" || in.Container != "c2" || in.BeforeID != "" || in.AfterID != "" {
		t.Fatalf("unexpected nudge right: %+v %v", in, ok)
	}

	in, ok = Nudge(st, Task("B"), -1, 0)
	if !ok || in.Container != InboxLaneID || in.SwitchTask("b1").ColumnID != "" {
		t.Fatalf("unexpected nudge into inbox: %+v %v", in, ok)
	}
	assertCards(t, st.State(), InboxLaneID, "B", "X")

	if _, ok := Nudge(st, Column("c1"), -1, 0); ok {
		t.Fatalf("columns cannot move in front of the inbox")
	}
	in, ok = Nudge(st, Column("c1"), 1, 0)
	if !ok || in.BeforeID != "c2" || in.AfterID != "" {
		t.Fatalf("unexpected column nudge: %+v %v", in, ok)
	}
}
