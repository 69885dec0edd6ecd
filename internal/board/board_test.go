package board

import (
	"reflect"
	"strings"
	"testing"
)

// snap builds a snapshot from lane strings like "c1:A,B". A lane id of "inbox" is fixed.
func snap(lanes ...string) Snapshot {
	s := Snapshot{BoardID: "b1"}
	for _, def := range lanes {
		id, cards, _ := strings.Cut(def, ":")
		l := Lane{ID: id, Title: id, Fixed: id == InboxLaneID}
		for _, c := range strings.Split(cards, ",") {
			if c != "" {
				l.Cards = append(l.Cards, Card{ID: c, Title: c})
			}
		}
		s.Lanes = append(s.Lanes, l)
	}
	return s
}

// gridLayout draws lanes 20 cells wide with a 2 cell gap, cards 3 rows tall
// starting at row 1 with a blank row between them.
func gridLayout(s Snapshot) Layout {
	var out Layout
	for i, l := range s.Lanes {
		lb := LaneBox{ID: l.ID, Fixed: l.Fixed, Rect: Rect{X: i * 22, Y: 0, W: 20, H: 20}}
		for j, c := range l.Cards {
			lb.Cards = append(lb.Cards, CardBox{ID: c.ID, Rect: Rect{X: i*22 + 1, Y: 1 + 4*j, W: 18, H: 3}})
		}
		out.Lanes = append(out.Lanes, lb)
	}
	return out
}

func mustRect(t *testing.T, l Layout, sub Subject) Rect {
	t.Helper()
	r, ok := l.RectOf(sub)
	if !ok {
		t.Fatalf("%s not in layout", sub)
	}
	return r
}

func assertCards(t *testing.T, s Snapshot, laneID string, want ...string) {
	t.Helper()
	got := s.CardIDs(laneID)
	if len(want) == 0 {
		want = []string{}
	}
	if got == nil {
		got = []string{}
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("lane %s: expected %v, got %v (%s)", laneID, want, got, s)
	}
}
