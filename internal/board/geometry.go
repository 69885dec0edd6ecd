package board

// Point and Rect are in screen cells.
type Point struct {
	X, Y int
}

type Rect struct {
	X, Y, W, H int
}

func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

func (r Rect) Contains(p Point) bool {
	return !r.Empty() && p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Intersection returns the overlapping area of r and o.
func (r Rect) Intersection(o Rect) int {
	w := min(r.X+r.W, o.X+o.W) - max(r.X, o.X)
	h := min(r.Y+r.H, o.Y+o.H) - max(r.Y, o.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

func (r Rect) Intersects(o Rect) bool { return r.Intersection(o) > 0 }

func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.W * r.H
}

// centerDist2 is the squared distance between the centres of r and o, in
// doubled coordinates so odd sizes stay integral.
func (r Rect) centerDist2(o Rect) int {
	dx := (2*r.X + r.W) - (2*o.X + o.W)
	dy := (2*r.Y + r.H) - (2*o.Y + o.H)
	return dx*dx + dy*dy
}

// Layout is where each lane and card was last drawn.
type Layout struct {
	Lanes []LaneBox
}

type LaneBox struct {
	ID    string
	Fixed bool
	Rect  Rect
	Cards []CardBox
}

type CardBox struct {
	ID   string
	Rect Rect
}

func (l Layout) lane(id string) (LaneBox, bool) {
	for _, lb := range l.Lanes {
		if lb.ID == id {
			return lb, true
		}
	}
	return LaneBox{}, false
}

// card returns a card box and the lane it is drawn in.
func (l Layout) card(id string) (CardBox, string, bool) {
	for _, lb := range l.Lanes {
		for _, cb := range lb.Cards {
			if cb.ID == id {
				return cb, lb.ID, true
			}
		}
	}
	return CardBox{}, "", false
}

// RectOf returns where a subject was last drawn.
func (l Layout) RectOf(sub Subject) (Rect, bool) {
	if sub.IsColumn() {
		lb, ok := l.lane(sub.ID)
		return lb.Rect, ok
	}
	cb, _, ok := l.card(sub.ID)
	return cb.Rect, ok
}

// HitTest returns the card or lane under p, cards first.
func (l Layout) HitTest(p Point) (Target, bool) {
	for _, lb := range l.Lanes {
		for _, cb := range lb.Cards {
			if cb.Rect.Contains(p) {
				return Target{Kind: TargetCard, ID: cb.ID, LaneID: lb.ID}, true
			}
		}
	}
	for _, lb := range l.Lanes {
		if lb.Rect.Contains(p) {
			return Target{Kind: TargetLane, ID: lb.ID, LaneID: lb.ID}, true
		}
	}
	return Target{}, false
}

// centerBelow reports whether r's centre sits lower than o's.
func (r Rect) centerBelow(o Rect) bool {
	return 2*r.Y+r.H > 2*o.Y+o.H
}
