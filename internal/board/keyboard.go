package board

// Nudge moves sub one slot from the keyboard: dx steps across lanes, dy
// within a lane. It returns the intent to confirm, or false when the move
// would leave the board or change nothing.
func Nudge(st *Store, sub Subject, dx, dy int) (Intent, bool) {
	s := st.State()
	if _, _, _, ok := s.Neighbours(sub); !ok {
		return Intent{}, false
	}

	if sub.IsColumn() {
		from := s.LaneIndex(sub.ID)
		to := from + dx
		if dx == 0 || to < 0 || to >= len(s.Lanes) || s.Lanes[to].Fixed {
			return Intent{}, false
		}
		st.Dispatch(MoveLane{LaneID: sub.ID, Index: to})
	} else {
		li, ci, _ := s.FindCard(sub.ID)
		switch {
		case dx != 0:
			to := li + dx
			if to < 0 || to >= len(s.Lanes) {
				return Intent{}, false
			}
			st.Dispatch(MoveCard{CardID: sub.ID, LaneID: s.Lanes[to].ID, Index: ci})
		case dy != 0:
			to := ci + dy
			if to < 0 || to >= len(s.Lanes[li].Cards) {
				return Intent{}, false
			}
			st.Dispatch(MoveCard{CardID: sub.ID, LaneID: s.Lanes[li].ID, Index: to})
		default:
			return Intent{}, false
		}
	}

	return Diff(s, st.State(), sub)
}
