package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to exactly width columns (ANSI-aware) and, when
// height > 0, exactly height lines, so lipgloss.JoinHorizontal stays aligned.
func normalizePane(s string, width, height int) string {
	width = max(width, 0)
	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i, ln := range lines {
		w := xansi.StringWidth(ln)
		if w > width {
			ln = truncateText(ln, width)
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}
	return strings.Join(lines, "\n")
}

func truncateText(s string, width int) string {
	switch {
	case width <= 0:
		return ""
	case xansi.StringWidth(s) <= width:
		return s
	case width == 1:
		return xansi.Cut(s, 0, 1)
	default:
		return xansi.Cut(s, 0, width-1) + "…"
	}
}

// wrapText word-wraps plain text to maxW cells. Words wider than a line are
// hard-cut. The first line gets firstPrefix, the rest contPrefix.
func wrapText(s string, maxW int, firstPrefix, contPrefix string) []string {
	s = strings.TrimSpace(s)
	if maxW <= 0 {
		return []string{""}
	}
	if s == "" {
		return []string{firstPrefix}
	}
	firstAvail := max(maxW-xansi.StringWidth(firstPrefix), 1)
	contAvail := max(maxW-xansi.StringWidth(contPrefix), 1)

	var lines []string
	prefix, avail := firstPrefix, firstAvail
	cur, curW := "", 0
	flush := func() {
		lines = append(lines, prefix+cur)
		prefix, avail = contPrefix, contAvail
		cur, curW = "", 0
	}
	for _, w := range strings.Fields(s) {
		ww := xansi.StringWidth(w)
		if cur != "" && curW+1+ww <= avail {
			cur += " " + w
			curW += 1 + ww
			continue
		}
		if cur != "" {
			flush()
		}
		for ww > avail {
			lines = append(lines, prefix+xansi.Cut(w, 0, avail))
			w = xansi.Cut(w, avail, ww)
			ww = xansi.StringWidth(w)
			prefix, avail = contPrefix, contAvail
		}
		cur, curW = w, ww
	}
	if cur != "" || len(lines) == 0 {
		flush()
	}
	return lines
}
