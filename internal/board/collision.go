package board

type TargetKind uint8

const (
	TargetLane TargetKind = iota + 1
	TargetCard
)

// Target is a drop target. LaneID is the lane itself or the lane holding the card.
type Target struct {
	Kind   TargetKind
	ID     string
	LaneID string
}

func (t Target) IsZero() bool { return t.Kind == 0 }

// Geometry is the pointer and the dragged subject's current rectangle.
type Geometry struct {
	Pointer Point
	Active  Rect
}

type candidate struct {
	target Target
	rect   Rect
}

// Resolver picks at most one drop target per tick. It remembers the last good
// target and a one-shot flag set right after a cross-lane splice.
type Resolver struct {
	last          Target
	recentlyMoved bool
}

// Reset forgets state from a previous drag session.
func (r *Resolver) Reset() { *r = Resolver{} }

// MarkMoved arms the fallback for the next Resolve call only.
func (r *Resolver) MarkMoved() { r.recentlyMoved = true }

// Last is the most recent target Resolve returned.
func (r *Resolver) Last() Target { return r.last }

// Resolve returns the drop target for sub under g. Results depend only on the
// inputs and the resolver state; ties go to the lower id.
func (r *Resolver) Resolve(sub Subject, g Geometry, layout Layout) (Target, bool) {
	moved := r.recentlyMoved
	r.recentlyMoved = false

	if sub.IsColumn() {
		var lanes []candidate
		for _, lb := range layout.Lanes {
			if lb.Fixed {
				continue
			}
			lanes = append(lanes, candidate{target: Target{Kind: TargetLane, ID: lb.ID, LaneID: lb.ID}, rect: lb.Rect})
		}
		if t, ok := closestCenter(lanes, g.Active); ok {
			r.last = t
			return t, true
		}
		return r.fallback(sub, layout, false)
	}

	all := candidatesOf(layout)
	t, ok := pointerWithin(all, g.Pointer)
	if !ok {
		t, ok = rectIntersection(all, g.Active)
	}
	if ok && t.Kind == TargetLane {
		if lb, found := layout.lane(t.ID); found && len(lb.Cards) > 0 {
			cards := make([]candidate, 0, len(lb.Cards))
			for _, cb := range lb.Cards {
				cards = append(cards, candidate{target: Target{Kind: TargetCard, ID: cb.ID, LaneID: lb.ID}, rect: cb.Rect})
			}
			if ct, found := closestCenter(cards, g.Active); found {
				t = ct
			}
		}
	}
	if ok {
		r.last = t
		return t, true
	}
	return r.fallback(sub, layout, moved)
}

func (r *Resolver) fallback(sub Subject, layout Layout, moved bool) (Target, bool) {
	if moved && !sub.IsColumn() {
		_, laneID, _ := layout.card(sub.ID)
		r.last = Target{Kind: TargetCard, ID: sub.ID, LaneID: laneID}
		return r.last, true
	}
	if r.last.IsZero() {
		return Target{}, false
	}
	return r.last, true
}

func candidatesOf(layout Layout) []candidate {
	var out []candidate
	for _, lb := range layout.Lanes {
		out = append(out, candidate{target: Target{Kind: TargetLane, ID: lb.ID, LaneID: lb.ID}, rect: lb.Rect})
		for _, cb := range lb.Cards {
			out = append(out, candidate{target: Target{Kind: TargetCard, ID: cb.ID, LaneID: lb.ID}, rect: cb.Rect})
		}
	}
	return out
}

// pointerWithin prefers the smallest rectangle containing p, so a card wins
// over the lane around it.
func pointerWithin(cands []candidate, p Point) (Target, bool) {
	var (
		best  candidate
		found bool
	)
	for _, c := range cands {
		if !c.rect.Contains(p) {
			continue
		}
		if !found || c.rect.Area() < best.rect.Area() ||
			(c.rect.Area() == best.rect.Area() && c.target.ID < best.target.ID) {
			best, found = c, true
		}
	}
	return best.target, found
}

// rectIntersection prefers the candidate covering the largest share of its own area.
func rectIntersection(cands []candidate, active Rect) (Target, bool) {
	var (
		best  candidate
		bestN int
		bestD int
		found bool
	)
	for _, c := range cands {
		n := active.Intersection(c.rect)
		if n == 0 {
			continue
		}
		// Compare n/area across candidates without floats.
		d := c.rect.Area()
		better := !found || n*bestD > bestN*d ||
			(n*bestD == bestN*d && c.target.ID < best.target.ID)
		if better {
			best, bestN, bestD, found = c, n, d, true
		}
	}
	return best.target, found
}

func closestCenter(cands []candidate, active Rect) (Target, bool) {
	var (
		best  candidate
		bestD int
		found bool
	)
	for _, c := range cands {
		d := active.centerDist2(c.rect)
		if !found || d < bestD || (d == bestD && c.target.ID < best.target.ID) {
			best, bestD, found = c, d, true
		}
	}
	return best.target, found
}
