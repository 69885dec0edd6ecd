package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the interactive board until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	if strings.TrimSpace(opts.BoardID) == "" {
		return errors.New("board id is required")
	}
	if opts.Remote == nil {
		return errors.New("remote is required")
	}
	applyColorProfilePreference()
	applyThemePreference(opts.Theme)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	m := newAppModel(ctx, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
