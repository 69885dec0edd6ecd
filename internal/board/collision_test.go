package board

import "testing"

func TestResolve_Deterministic(t *testing.T) {
	layout := gridLayout(snap("c1:A,B", "c2:C,D"))
	g := Geometry{Pointer: Point{X: 30, Y: 12}, Active: Rect{X: 26, Y: 11, W: 18, H: 3}}

	var first Target
	for i := 0; i < 20; i++ {
		var r Resolver
		got, ok := r.Resolve(Task("A"), g, layout)
		if !ok {
			t.Fatalf("expected a target")
		}
		if i == 0 {
			first = got
			continue
		}
		if got != first {
			t.Fatalf("run %d: %+v != %+v", i, got, first)
		}
	}
	if first.ID != "D" || first.LaneID != "c2" {
		t.Fatalf("expected the lane to narrow to D, got %+v", first)
	}
}

func TestResolve_PointerOverCardBeatsLane(t *testing.T) {
	layout := gridLayout(snap("c1:A,B"))
	var r Resolver
	got, ok := r.Resolve(Task("A"), Geometry{Pointer: Point{X: 5, Y: 6}, Active: Rect{X: 1, Y: 5, W: 18, H: 3}}, layout)
	if !ok || got.Kind != TargetCard || got.ID != "B" {
		t.Fatalf("expected card B, got %+v", got)
	}
}

func TestResolve_EmptyLaneIsTarget(t *testing.T) {
	layout := gridLayout(snap("c1:A", "c2:"))
	var r Resolver
	got, ok := r.Resolve(Task("A"), Geometry{Pointer: Point{X: 30, Y: 10}, Active: Rect{X: 25, Y: 9, W: 18, H: 3}}, layout)
	if !ok || got.Kind != TargetLane || got.ID != "c2" {
		t.Fatalf("expected lane c2, got %+v", got)
	}
}

func TestResolve_FallsBackToRectIntersection(t *testing.T) {
	layout := gridLayout(snap("c1:A", "c2:"))
	var r Resolver
	// Pointer below every lane; the dragged card still overlaps c2.
	got, ok := r.Resolve(Task("A"), Geometry{Pointer: Point{X: 30, Y: 40}, Active: Rect{X: 23, Y: 18, W: 18, H: 3}}, layout)
	if !ok || got.ID != "c2" {
		t.Fatalf("expected c2 by intersection, got %+v", got)
	}
}

func TestResolve_ColumnSubject_SkipsFixedLanesAndCards(t *testing.T) {
	layout := gridLayout(snap("inbox:X", "todo:A", "done:"))
	var r Resolver
	// Active sits right on top of the inbox lane.
	got, ok := r.Resolve(Column("done"), Geometry{Pointer: Point{X: 2, Y: 2}, Active: Rect{X: 0, Y: 0, W: 20, H: 20}}, layout)
	if !ok || got.Kind != TargetLane || got.ID != "todo" {
		t.Fatalf("expected todo, got %+v", got)
	}
}

func TestResolve_RecentlyMoved_TargetsSelfOnce(t *testing.T) {
	layout := gridLayout(snap("c1:B", "c2:C,D,A"))
	nowhere := Geometry{Pointer: Point{X: 200, Y: 200}, Active: Rect{X: 200, Y: 200, W: 1, H: 1}}

	var r Resolver
	if _, ok := r.Resolve(Task("A"), nowhere, layout); ok {
		t.Fatalf("expected no target without history")
	}

	if _, ok := r.Resolve(Task("A"), Geometry{Pointer: Point{X: 5, Y: 2}, Active: Rect{X: 1, Y: 1, W: 18, H: 3}}, layout); !ok {
		t.Fatalf("expected a target over B")
	}
	got, _ := r.Resolve(Task("A"), nowhere, layout)
	if got.ID != "B" {
		t.Fatalf("expected the last good target B, got %+v", got)
	}

	r.MarkMoved()
	got, ok := r.Resolve(Task("A"), nowhere, layout)
	if !ok || got.ID != "A" || got.LaneID != "c2" {
		t.Fatalf("expected the dragged card itself, got %+v", got)
	}
	// The flag is one-shot, but the self target is now the last good one.
	got, _ = r.Resolve(Task("A"), nowhere, layout)
	if got.ID != "A" {
		t.Fatalf("expected last target A, got %+v", got)
	}
}

func TestRect_Geometry(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 4, H: 4}
	if !r.Contains(Point{X: 3, Y: 3}) || r.Contains(Point{X: 4, Y: 0}) {
		t.Fatalf("contains is half-open")
	}
	if n := r.Intersection(Rect{X: 2, Y: 2, W: 4, H: 4}); n != 4 {
		t.Fatalf("expected overlap 4, got %d", n)
	}
	if r.Intersects(Rect{X: 4, Y: 0, W: 2, H: 2}) {
		t.Fatalf("touching edges do not intersect")
	}
	if (Rect{W: 0, H: 5}).Contains(Point{}) {
		t.Fatalf("empty rect contains nothing")
	}
}
