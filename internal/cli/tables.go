package cli

import (
	"strconv"
	"time"

	"lanes-cli/internal/model"
)

// Named slices give list results a table rendering while marshalling to the
// same JSON as the plain slice.

type boardRows []model.Board

func (r boardRows) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(r))
	for _, b := range r {
		rows = append(rows, []string{b.ID, b.Name, b.CreatedBy, b.UpdatedAt.UTC().Format(time.RFC3339)})
	}
	return []string{"ID", "NAME", "CREATED BY", "UPDATED"}, rows
}

type columnRows []model.ColumnWithTasks

func (r columnRows) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(r))
	for _, c := range r {
		rows = append(rows, []string{c.ID, c.Name, formatPosition(c.Position), strconv.Itoa(len(c.Tasks))})
	}
	return []string{"ID", "NAME", "POSITION", "TASKS"}, rows
}

type taskRows []model.Task

func (r taskRows) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(r))
	for _, t := range r {
		rows = append(rows, []string{t.ID, t.Title, t.ColumnID, formatPosition(t.Position)})
	}
	return []string{"ID", "TITLE", "COLUMN", "POSITION"}, rows
}

type eventRows []model.Event

func (r eventRows) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(r))
	for _, e := range r {
		rows = append(rows, []string{e.TS.UTC().Format(time.RFC3339), e.ActorID, e.Type, e.EntityKind, e.EntityID})
	}
	return []string{"TS", "ACTOR", "TYPE", "KIND", "ENTITY"}, rows
}

func formatPosition(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
