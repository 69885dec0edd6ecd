package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lanes-cli/internal/board"
)

// focus is the keyboard selection. An empty CardID selects the lane header.
type focus struct {
	LaneID string
	CardID string
}

type boardView struct {
	snap    board.Snapshot
	focus   focus
	grabbed board.Subject
	target  board.Target
}

const laneGap = 2

// renderBoard draws the lanes side by side starting at screen row top and
// returns where each lane and card landed, for mouse hit testing.
func renderBoard(v boardView, top, width, height int) (string, board.Layout) {
	width, height = max(width, 0), max(height, 0)
	n := len(v.snap.Lanes)
	if n == 0 {
		return normalizePane(styleMuted().Render("(no columns)"), width, height), board.Layout{}
	}
	colW := max((width-laneGap*(n-1))/n, 12)
	innerW := max(colW-2, 0)

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Background(colorControlBg)
	headerFocusStyle := lipgloss.NewStyle().Bold(true).Foreground(colorSelectedFg).Background(colorSelectedBg)
	headerHotStyle := lipgloss.NewStyle().Bold(true).Foreground(colorAccentFg).Background(colorAccent)
	cardStyle := lipgloss.NewStyle().Width(colW).Padding(0, 1)
	cardFocusStyle := cardStyle.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	cardGrabStyle := cardStyle.Foreground(colorAccentFg).Background(colorAccent).Bold(true)

	var layout board.Layout
	rendered := make([]string, 0, n)
	for i, lane := range v.snap.Lanes {
		x := i * (colW + laneGap)
		lb := board.LaneBox{ID: lane.ID, Fixed: lane.Fixed, Rect: board.Rect{X: x, Y: top, W: colW, H: height}}

		head := truncateText(fmt.Sprintf("%s (%d)", lane.Title, len(lane.Cards)), colW)
		hs := headerStyle
		switch {
		case v.grabbed == board.Column(lane.ID):
			hs = headerHotStyle
		case v.target.Kind == board.TargetLane && v.target.ID == lane.ID && v.grabbed.IsColumn():
			hs = headerHotStyle
		case v.focus.LaneID == lane.ID && v.focus.CardID == "":
			hs = headerFocusStyle
		}
		if lane.Fixed {
			hs = hs.Italic(true)
		}
		lines := []string{hs.Width(colW).Render(head)}

		if len(lane.Cards) == 0 {
			lines = append(lines, styleMuted().Render("(empty)"))
		} else {
			lines = append(lines, "")
		}
		for j, c := range lane.Cards {
			prefix := "  "
			if v.target.Kind == board.TargetCard && v.target.ID == c.ID && v.grabbed != board.Task(c.ID) {
				prefix = "▸ "
			}
			title := c.Title
			if strings.TrimSpace(title) == "" {
				title = "(untitled)"
			}
			st := cardStyle
			switch {
			case v.grabbed == board.Task(c.ID):
				st = cardGrabStyle
			case v.focus.CardID == c.ID:
				st = cardFocusStyle
			}
			card := strings.Split(st.Render(strings.Join(wrapText(title, innerW, prefix, "  "), "\n")), "\n")
			lb.Cards = append(lb.Cards, board.CardBox{ID: c.ID, Rect: board.Rect{X: x, Y: top + len(lines), W: colW, H: len(card)}})
			lines = append(lines, card...)
			if j < len(lane.Cards)-1 {
				lines = append(lines, styleMuted().Render(" "+strings.Repeat("─", innerW)+" "))
			}
		}
		layout.Lanes = append(layout.Lanes, lb)
		rendered = append(rendered, normalizePane(strings.Join(lines, "\n"), colW, height))
	}

	// JoinHorizontal has no spacing option, so gaps are joined in explicitly.
	out := rendered[0]
	sep := strings.Repeat(" ", laneGap)
	for i := 1; i < len(rendered); i++ {
		out = lipgloss.JoinHorizontal(lipgloss.Top, out, sep, rendered[i])
	}
	return normalizePane(out, width, height), layout
}
