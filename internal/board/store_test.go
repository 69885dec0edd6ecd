package board

import (
	"reflect"
	"testing"

	"lanes-cli/internal/model"
)

func TestReduce_DoesNotMutateInput(t *testing.T) {
	in := snap("c1:A,B", "c2:C")
	out := Reduce(in, MoveCard{CardID: "A", LaneID: "c2", Index: 0})
	assertCards(t, in, "c1", "A", "B")
	assertCards(t, in, "c2", "C")
	assertCards(t, out, "c1", "B")
	assertCards(t, out, "c2", "A", "C")
}

func TestMoveCard_SameLane_IndexAfterRemoval(t *testing.T) {
	s := Reduce(snap("c1:A,B,C"), MoveCard{CardID: "A", LaneID: "c1", Index: 2})
	assertCards(t, s, "c1", "B", "C", "A")
	s = Reduce(s, MoveCard{CardID: "A", LaneID: "c1", Index: 99})
	assertCards(t, s, "c1", "B", "C", "A")
	s = Reduce(s, MoveCard{CardID: "A", LaneID: "c1", Index: -4})
	assertCards(t, s, "c1", "A", "B", "C")
}

func TestMoveCard_UnknownIDs_NoChange(t *testing.T) {
	in := snap("c1:A")
	if got := Reduce(in, MoveCard{CardID: "Z", LaneID: "c1"}); got.String() != in.String() {
		t.Fatalf("unexpected change: %s", got)
	}
	if got := Reduce(in, MoveCard{CardID: "A", LaneID: "nope"}); got.String() != in.String() {
		t.Fatalf("unexpected change: %s", got)
	}
}

func TestMoveLane_FixedLaneStaysFirst(t *testing.T) {
	s := Reduce(snap("inbox:", "todo:", "done:"), MoveLane{LaneID: "done", Index: 0})
	if got := s.LaneIDs(); !reflect.DeepEqual(got, []string{"inbox", "done", "todo"}) {
		t.Fatalf("unexpected lanes: %v", got)
	}
	s = Reduce(s, MoveLane{LaneID: "inbox", Index: 2})
	if got := s.LaneIDs(); !reflect.DeepEqual(got, []string{"inbox", "done", "todo"}) {
		t.Fatalf("fixed lane moved: %v", got)
	}
}

func TestReplaceLanes_UndoesOptimisticSplice(t *testing.T) {
	optimistic := snap("c1:B", "c2:C,D,A", "c3:E")
	fresh := snap("c1:A,B", "c2:C,D")
	s := Reduce(optimistic, ReplaceLanes{Lanes: fresh.Lanes})
	assertCards(t, s, "c1", "A", "B")
	assertCards(t, s, "c2", "C", "D")
	assertCards(t, s, "c3", "E")
}

func TestReplaceLanes_DropsCardsFromUntouchedLanes(t *testing.T) {
	s := Reduce(snap("c1:A", "c2:"), ReplaceLanes{Lanes: snap("c2:A").Lanes})
	assertCards(t, s, "c1")
	assertCards(t, s, "c2", "A")
}

func TestSetPosition(t *testing.T) {
	s := Reduce(snap("c1:A"), SetPosition{Subject: Task("A"), Position: 1500})
	if s.Lanes[0].Cards[0].Position != 1500 {
		t.Fatalf("card position not recorded: %+v", s.Lanes[0].Cards[0])
	}
	s = Reduce(s, SetPosition{Subject: Column("c1"), Position: 500})
	if s.Lanes[0].Position != 500 {
		t.Fatalf("lane position not recorded: %+v", s.Lanes[0])
	}
}

func TestStore_DispatchCountsVersions(t *testing.T) {
	st := NewStore(snap("c1:A,B"))
	st.Dispatch(MoveCard{CardID: "B", LaneID: "c1", Index: 0})
	st.Dispatch(nil)
	if st.Version() != 2 {
		t.Fatalf("expected version 2, got %d", st.Version())
	}
	assertCards(t, st.State(), "c1", "B", "A")
}

func TestNeighbours(t *testing.T) {
	s := snap("inbox:X", "c1:A,B,C", "c2:")
	cases := []struct {
		sub                      Subject
		container, before, after string
	}{
		{Task("A"), "c1", "", "B"},
		{Task("B"), "c1", "A", "C"},
		{Task("C"), "c1", "B", ""},
		{Task("X"), InboxLaneID, "", ""},
		{Column("c1"), "b1", "", "c2"},
		{Column("c2"), "b1", "c1", ""},
	}
	for _, tc := range cases {
		container, before, after, ok := s.Neighbours(tc.sub)
		if !ok || container != tc.container || before != tc.before || after != tc.after {
			t.Fatalf("%s: got %q %q %q %v", tc.sub, container, before, after, ok)
		}
	}
	if _, _, _, ok := s.Neighbours(Task("missing")); ok {
		t.Fatalf("expected missing card to have no neighbours")
	}
}

func TestFromModel_InboxLaneFirst(t *testing.T) {
	ms := model.BoardSnapshot{
		Board: model.Board{ID: "b1"},
		Columns: []model.ColumnWithTasks{
			{Column: model.Column{ID: "c1", Name: "Todo", Position: 1000}, Tasks: []model.Task{{ID: "A", Title: "a", Position: 1000}}},
		},
	}
	s := FromModel(ms, []model.Task{{ID: "X", Title: "x"}})
	if got := s.LaneIDs(); !reflect.DeepEqual(got, []string{InboxLaneID, "c1"}) {
		t.Fatalf("unexpected lanes: %v", got)
	}
	if !s.Lanes[0].Fixed || s.Lanes[1].Fixed {
		t.Fatalf("only the inbox lane is fixed: %+v", s.Lanes)
	}
	if s.Lanes[1].Title != "Todo" || s.Lanes[1].Cards[0].Position != 1000 {
		t.Fatalf("unexpected column lane: %+v", s.Lanes[1])
	}

	if got := FromModel(ms, nil).LaneIDs(); !reflect.DeepEqual(got, []string{"c1"}) {
		t.Fatalf("nil inbox should add no lane, got %v", got)
	}
}
