package store

import (
	"context"
	"fmt"

	"lanes-cli/internal/model"
)

type DoctorIssueLevel string

const (
	DoctorIssueLevelError DoctorIssueLevel = "error"
	DoctorIssueLevelWarn  DoctorIssueLevel = "warn"
)

type DoctorIssue struct {
	Level     DoctorIssueLevel   `json:"level"`
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	Container model.ContainerRef `json:"container"`
	ItemID    string             `json:"itemId,omitempty"`
	Fixed     bool               `json:"fixed,omitempty"`
}

type DoctorReport struct {
	Containers int           `json:"containers"`
	Issues     []DoctorIssue `json:"issues"`
}

func (r DoctorReport) HasErrors() bool {
	for _, it := range r.Issues {
		if it.Level == DoctorIssueLevelError && !it.Fixed {
			return true
		}
	}
	return false
}

// CheckKeys reports order problems in one container's keys, which must
// already be sorted by (position, id).
func CheckKeys(ref model.ContainerRef, keys []Keyed) []DoctorIssue {
	var issues []DoctorIssue
	for i := 1; i < len(keys); i++ {
		prev, cur := keys[i-1], keys[i]
		if PositionsTied(prev.Position, cur.Position) {
			issues = append(issues, DoctorIssue{
				Level:     DoctorIssueLevelError,
				Code:      "tied_positions",
				Message:   fmt.Sprintf("%s and %s share position %g", prev.ID, cur.ID, cur.Position),
				Container: ref,
				ItemID:    cur.ID,
			})
		}
	}
	if n := len(keys); n > 0 && keys[0].Position <= 0 {
		issues = append(issues, DoctorIssue{
			Level:     DoctorIssueLevelWarn,
			Code:      "non_positive_position",
			Message:   fmt.Sprintf("%s starts at %g", keys[0].ID, keys[0].Position),
			Container: ref,
			ItemID:    keys[0].ID,
		})
	}
	return issues
}

// Doctor checks every container. With fix, containers that have errors are rebalanced.
func (s *Store) Doctor(ctx context.Context, actorID string, fix bool) (DoctorReport, error) {
	refs, err := s.containers(ctx)
	if err != nil {
		return DoctorReport{}, err
	}
	rep := DoctorReport{Containers: len(refs), Issues: []DoctorIssue{}}
	for _, ref := range refs {
		set, err := siblingsOf(ref)
		if err != nil {
			return DoctorReport{}, err
		}
		keys, err := loadKeys(ctx, s.db, set)
		if err != nil {
			return DoctorReport{}, err
		}
		issues := CheckKeys(ref, keys)
		if fix && hasErrors(issues) {
			if _, err := s.Rebalance(ctx, actorID, ref); err != nil {
				return DoctorReport{}, err
			}
			for i := range issues {
				issues[i].Fixed = true
			}
		}
		rep.Issues = append(rep.Issues, issues...)
	}
	return rep, nil
}

func hasErrors(issues []DoctorIssue) bool {
	for _, it := range issues {
		if it.Level == DoctorIssueLevelError {
			return true
		}
	}
	return false
}

// containers lists every live ordered container: boards, columns and inboxes.
func (s *Store) containers(ctx context.Context) ([]model.ContainerRef, error) {
	var out []model.ContainerRef
	queries := []struct {
		kind model.ContainerKind
		sql  string
	}{
		{model.ContainerBoard, `SELECT id FROM boards WHERE deleted = 0 ORDER BY id`},
		{model.ContainerColumn, `SELECT c.id FROM board_columns c JOIN boards b ON b.id = c.board_id AND b.deleted = 0 WHERE c.deleted = 0 ORDER BY c.id`},
		{model.ContainerInbox, `SELECT DISTINCT owner_actor_id FROM tasks WHERE column_id = '' AND deleted = 0 ORDER BY owner_actor_id`},
	}
	for _, q := range queries {
		rows, err := s.db.QueryContext(ctx, q.sql)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, err
			}
			out = append(out, model.ContainerRef{Kind: q.kind, ID: id})
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
