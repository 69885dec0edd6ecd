package board

// Action is one change to a Snapshot. Reduce applies it to a copy.
type Action interface {
	apply(s Snapshot) Snapshot
}

// Load replaces the whole snapshot. Used for the first fetch, for restoring
// the pre-drag state on cancel and for reconciling column order.
type Load struct {
	Snapshot Snapshot
}

// MoveCard puts a card into a lane at Index, counted after the card has been
// taken out of its current lane. Index is clamped to the lane.
type MoveCard struct {
	CardID string
	LaneID string
	Index  int
}

// MoveLane puts a movable lane at Index in the lane list. Fixed lanes keep
// their slots at the front.
type MoveLane struct {
	LaneID string
	Index  int
}

// SetPosition records the key the server confirmed for a subject.
type SetPosition struct {
	Subject  Subject
	Position float64
}

// ReplaceLanes swaps in authoritative lanes by id. Cards they hold are removed
// from every other lane first, so an optimistic cross-lane move is undone.
type ReplaceLanes struct {
	Lanes []Lane
}

func (a Load) apply(Snapshot) Snapshot { return a.Snapshot.Clone() }

func (a MoveCard) apply(s Snapshot) Snapshot {
	li, ci, ok := s.FindCard(a.CardID)
	dst := s.LaneIndex(a.LaneID)
	if !ok || dst < 0 {
		return s
	}
	card := s.Lanes[li].Cards[ci]
	src := s.Lanes[li].Cards
	s.Lanes[li].Cards = append(src[:ci:ci], src[ci+1:]...)

	cards := s.Lanes[dst].Cards
	idx := clamp(a.Index, 0, len(cards))
	next := make([]Card, 0, len(cards)+1)
	next = append(next, cards[:idx]...)
	next = append(next, card)
	next = append(next, cards[idx:]...)
	s.Lanes[dst].Cards = next
	return s
}

func (a MoveLane) apply(s Snapshot) Snapshot {
	from := s.LaneIndex(a.LaneID)
	if from < 0 || s.Lanes[from].Fixed {
		return s
	}
	lane := s.Lanes[from]
	rest := append(s.Lanes[:from:from], s.Lanes[from+1:]...)

	fixed := 0
	for fixed < len(rest) && rest[fixed].Fixed {
		fixed++
	}
	idx := clamp(a.Index, fixed, len(rest))
	next := make([]Lane, 0, len(s.Lanes))
	next = append(next, rest[:idx]...)
	next = append(next, lane)
	next = append(next, rest[idx:]...)
	s.Lanes = next
	return s
}

func (a SetPosition) apply(s Snapshot) Snapshot {
	if a.Subject.IsColumn() {
		if i := s.LaneIndex(a.Subject.ID); i >= 0 {
			s.Lanes[i].Position = a.Position
		}
		return s
	}
	if li, ci, ok := s.FindCard(a.Subject.ID); ok {
		s.Lanes[li].Cards[ci].Position = a.Position
	}
	return s
}

func (a ReplaceLanes) apply(s Snapshot) Snapshot {
	incoming := map[string]bool{}
	replaced := map[string]Lane{}
	for _, l := range a.Lanes {
		replaced[l.ID] = l
		for _, c := range l.Cards {
			incoming[c.ID] = true
		}
	}
	for i := range s.Lanes {
		if l, ok := replaced[s.Lanes[i].ID]; ok {
			l.Fixed = s.Lanes[i].Fixed
			l.Cards = append([]Card(nil), l.Cards...)
			s.Lanes[i] = l
			continue
		}
		kept := s.Lanes[i].Cards[:0:0]
		for _, c := range s.Lanes[i].Cards {
			if !incoming[c.ID] {
				kept = append(kept, c)
			}
		}
		s.Lanes[i].Cards = kept
	}
	return s
}

// Reduce applies a to a copy of s.
func Reduce(s Snapshot, a Action) Snapshot {
	if a == nil {
		return s
	}
	return a.apply(s.Clone())
}

// Store owns the optimistic snapshot. Every change goes through Dispatch.
// A Store is not safe for concurrent use; it belongs to the UI loop.
type Store struct {
	state   Snapshot
	version uint64
}

func NewStore(s Snapshot) *Store {
	return &Store{state: s.Clone()}
}

// Dispatch applies a and returns the new state.
func (st *Store) Dispatch(a Action) Snapshot {
	st.state = Reduce(st.state, a)
	st.version++
	return st.state
}

// State returns the current snapshot. Callers must treat it as read-only.
func (st *Store) State() Snapshot { return st.state }

// Version counts dispatched actions.
func (st *Store) Version() uint64 { return st.version }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
