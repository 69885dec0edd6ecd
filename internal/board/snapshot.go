package board

import (
	"strings"

	"lanes-cli/internal/model"
)

// InboxLaneID is the lane holding the acting user's unassigned tasks.
// It is always first and cannot be reordered.
const InboxLaneID = "inbox"

type Card struct {
	ID          string
	Title       string
	Description string
	Position    float64
}

type Lane struct {
	ID       string
	Title    string
	Position float64
	// Fixed lanes accept cards but are never drag subjects or column targets.
	Fixed bool
	Cards []Card
}

// Snapshot is the client's view of one board: lanes left to right, cards top
// to bottom. It is what gets rendered.
type Snapshot struct {
	BoardID string
	Title   string
	Lanes   []Lane
}

// FromModel builds a snapshot from a server board. A non-nil inbox adds the
// fixed inbox lane in front of the columns.
func FromModel(snap model.BoardSnapshot, inbox []model.Task) Snapshot {
	out := Snapshot{BoardID: snap.Board.ID, Title: snap.Board.Name}
	if inbox != nil {
		out.Lanes = append(out.Lanes, Lane{ID: InboxLaneID, Title: "Inbox", Fixed: true, Cards: cardsOf(inbox)})
	}
	for _, c := range snap.Columns {
		out.Lanes = append(out.Lanes, Lane{
			ID:       c.ID,
			Title:    c.Name,
			Position: c.Position,
			Cards:    cardsOf(c.Tasks),
		})
	}
	return out
}

func cardsOf(tasks []model.Task) []Card {
	out := make([]Card, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, Card{ID: t.ID, Title: t.Title, Description: t.Description, Position: t.Position})
	}
	return out
}

// Clone returns a deep copy; reducers never share card slices with their input.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{BoardID: s.BoardID, Title: s.Title, Lanes: make([]Lane, len(s.Lanes))}
	for i, l := range s.Lanes {
		l.Cards = append([]Card(nil), l.Cards...)
		out.Lanes[i] = l
	}
	return out
}

func (s Snapshot) LaneIndex(id string) int {
	for i := range s.Lanes {
		if s.Lanes[i].ID == id {
			return i
		}
	}
	return -1
}

// FindCard returns the lane and card index of a card.
func (s Snapshot) FindCard(id string) (lane, idx int, ok bool) {
	for li := range s.Lanes {
		for ci := range s.Lanes[li].Cards {
			if s.Lanes[li].Cards[ci].ID == id {
				return li, ci, true
			}
		}
	}
	return -1, -1, false
}

// LaneOf returns the lane id holding a card, or "".
func (s Snapshot) LaneOf(cardID string) string {
	li, _, ok := s.FindCard(cardID)
	if !ok {
		return ""
	}
	return s.Lanes[li].ID
}

func (s Snapshot) LaneIDs() []string {
	out := make([]string, 0, len(s.Lanes))
	for _, l := range s.Lanes {
		out = append(out, l.ID)
	}
	return out
}

func (s Snapshot) CardIDs(laneID string) []string {
	i := s.LaneIndex(laneID)
	if i < 0 {
		return nil
	}
	out := make([]string, 0, len(s.Lanes[i].Cards))
	for _, c := range s.Lanes[i].Cards {
		out = append(out, c.ID)
	}
	return out
}

// Neighbours reads the ids on either side of a subject in its current place.
// Column neighbours skip fixed lanes, which are not part of the board order.
func (s Snapshot) Neighbours(sub Subject) (container, before, after string, ok bool) {
	if sub.IsColumn() {
		var movable []string
		for _, l := range s.Lanes {
			if !l.Fixed {
				movable = append(movable, l.ID)
			}
		}
		before, after, ok = around(movable, sub.ID)
		return s.BoardID, before, after, ok
	}
	li, _, found := s.FindCard(sub.ID)
	if !found {
		return "", "", "", false
	}
	lane := s.Lanes[li]
	before, after, ok = around(s.CardIDs(lane.ID), sub.ID)
	return lane.ID, before, after, ok
}

func around(ids []string, id string) (before, after string, ok bool) {
	for i := range ids {
		if ids[i] != id {
			continue
		}
		if i > 0 {
			before = ids[i-1]
		}
		if i+1 < len(ids) {
			after = ids[i+1]
		}
		return before, after, true
	}
	return "", "", false
}

func (s Snapshot) String() string {
	var b strings.Builder
	for i, l := range s.Lanes {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(l.ID)
		b.WriteString("[")
		b.WriteString(strings.Join(s.CardIDs(l.ID), ","))
		b.WriteString("]")
	}
	return b.String()
}
