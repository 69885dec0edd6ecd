package store

import (
	"context"
	"testing"

	"lanes-cli/internal/model"
)

func TestCheckKeys_TiedNeighbours_Error(t *testing.T) {
	ref := model.ColumnContainer("c")
	issues := CheckKeys(ref, []Keyed{{ID: "a", Position: 1000}, {ID: "b", Position: 1000}})
	if len(issues) != 1 || issues[0].Code != "tied_positions" || issues[0].ItemID != "b" {
		t.Fatalf("unexpected issues: %+v", issues)
	}
}

func TestCheckKeys_Spaced_NoIssues(t *testing.T) {
	issues := CheckKeys(model.BoardContainer("b"), []Keyed{{ID: "a", Position: 1000}, {ID: "b", Position: 2000}})
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestDoctor_Fix_RebalancesTiedColumn(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	b := mustBoard(t, s, "B")
	col := mustColumn(t, s, b.ID, "Todo")
	x := mustTask(t, s, col.ID, "x")
	y := mustTask(t, s, col.ID, "y")
	setTaskPosition(t, s, x.ID, 10)
	setTaskPosition(t, s, y.ID, 10)

	rep, err := s.Doctor(ctx, testActor, false)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if !rep.HasErrors() {
		t.Fatalf("expected errors, got %+v", rep)
	}
	if rep.Containers != 2 {
		t.Fatalf("expected board + column containers, got %d", rep.Containers)
	}

	rep, err = s.Doctor(ctx, testActor, true)
	if err != nil {
		t.Fatalf("doctor fix: %v", err)
	}
	if rep.HasErrors() {
		t.Fatalf("expected fixed report, got %+v", rep)
	}
	rep, err = s.Doctor(ctx, testActor, false)
	if err != nil {
		t.Fatalf("doctor recheck: %v", err)
	}
	if len(rep.Issues) != 0 {
		t.Fatalf("expected clean report after fix, got %+v", rep.Issues)
	}
}
