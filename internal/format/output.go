package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Tabler is implemented by results that have a tabular rendering.
type Tabler interface {
	Table() (headers []string, rows [][]string)
}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - table
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "table":
		return WriteTable(w, v)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteTable renders a Tabler as a bordered table. A {"data": ...} envelope is
// unwrapped first. Values without a tabular form fall back to indented JSON.
func WriteTable(w io.Writer, v any) error {
	if m, ok := v.(map[string]any); ok {
		if d, ok := m["data"]; ok {
			v = d
		}
	}
	t, ok := v.(Tabler)
	if !ok {
		return WriteJSON(w, v, true)
	}
	headers, rows := t.Table()
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}
