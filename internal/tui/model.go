package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"lanes-cli/internal/board"
)

// Remote is the server as the board client sees it.
type Remote interface {
	board.Remote
	Subscribe(ctx context.Context, boardID string) (<-chan struct{}, error)
}

type Options struct {
	BoardID string
	Remote  Remote
	// Logger receives move and reconcile entries. The terminal is owned by
	// the UI, so the default discards them.
	Logger *log.Logger
	Theme  string
}

type loadedMsg struct {
	snap board.Snapshot
	err  error
}

type confirmedMsg struct{ conf board.Confirmation }

type subscribedMsg struct {
	ch  <-chan struct{}
	err error
}

type (
	boardChangedMsg struct{}
	feedClosedMsg   struct{}
)

// grabState is a keyboard move in progress.
type grabState struct {
	subject board.Subject
	before  board.Snapshot
}

const detailHeight = 8

type appModel struct {
	ctx    context.Context
	opts   Options
	logger *log.Logger

	store *board.Store
	drag  *board.Machine
	keys  keyMap
	help  help.Model

	width, height int
	rendered      string
	layout        board.Layout

	focus     focus
	grab      *grabState
	detail    bool
	loaded    bool
	notice    string
	noticeErr bool

	// inflight counts unconfirmed moves. Remote changes seen meanwhile mark
	// the board stale and are fetched once the session and moves settle.
	inflight  int
	stale     bool
	deferred  []board.Action
	changesCh <-chan struct{}
}

func newAppModel(ctx context.Context, opts Options) *appModel {
	logger := opts.Logger
	if logger == nil {
		logger = log.New()
		logger.SetOutput(io.Discard)
	}
	st := board.NewStore(board.Snapshot{BoardID: opts.BoardID})
	return &appModel{
		ctx:    ctx,
		opts:   opts,
		logger: logger,
		store:  st,
		drag:   board.NewMachine(st, board.DefaultActivationDistance),
		keys:   defaultKeyMap(),
		help:   help.New(),
		width:  80,
		height: 24,
	}
}

func (m *appModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.subscribe())
}

func (m *appModel) fetch() tea.Cmd {
	ctx, remote, boardID := m.ctx, m.opts.Remote, m.opts.BoardID
	return func() tea.Msg {
		snap, err := board.Reconcile(ctx, remote, boardID)
		return loadedMsg{snap: snap, err: err}
	}
}

func (m *appModel) subscribe() tea.Cmd {
	ctx, remote, boardID := m.ctx, m.opts.Remote, m.opts.BoardID
	return func() tea.Msg {
		ch, err := remote.Subscribe(ctx, boardID)
		return subscribedMsg{ch: ch, err: err}
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return feedClosedMsg{}
		}
		return boardChangedMsg{}
	}
}

func (m *appModel) confirm(in board.Intent) tea.Cmd {
	m.inflight++
	m.logger.WithFields(log.Fields{
		"subject":   in.Subject.String(),
		"origin":    in.Origin,
		"container": in.Container,
		"before":    in.BeforeID,
		"after":     in.AfterID,
	}).Debug("tui.move")
	ctx, remote, boardID := m.ctx, m.opts.Remote, m.opts.BoardID
	return func() tea.Msg {
		return confirmedMsg{conf: board.ConfirmOrReconcile(ctx, remote, boardID, in)}
	}
}

func (m *appModel) busy() bool {
	return m.drag.State() != board.Idle || m.grab != nil
}

// apply dispatches a, or holds it until the current drag or grab ends so a
// remote update never yanks the board out from under the pointer.
func (m *appModel) apply(a board.Action) {
	if m.busy() {
		m.deferred = append(m.deferred, a)
		return
	}
	m.store.Dispatch(a)
}

// endSession releases the actions held during a drag or grab. When the
// session produced a move they predate it, so instead of replaying them the
// board is marked stale and fetched again once the move settles.
func (m *appModel) endSession(moved bool) tea.Cmd {
	if moved && len(m.deferred) > 0 {
		m.stale = true
	} else {
		for _, a := range m.deferred {
			m.store.Dispatch(a)
		}
	}
	m.deferred = nil
	return m.maybeRefetch()
}

func (m *appModel) maybeRefetch() tea.Cmd {
	if !m.stale || m.busy() || m.inflight > 0 {
		return nil
	}
	m.stale = false
	return m.fetch()
}

func (m *appModel) setNotice(err bool, format string, args ...any) {
	m.notice = fmt.Sprintf(format, args...)
	m.noticeErr = err
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width

	case loadedMsg:
		if msg.err != nil {
			m.setNotice(true, "load failed: %v", msg.err)
			break
		}
		m.loaded = true
		m.apply(board.Load{Snapshot: msg.snap})

	case confirmedMsg:
		m.inflight--
		cmd = m.handleConfirmed(msg.conf)

	case subscribedMsg:
		if msg.err != nil {
			m.logger.WithError(msg.err).Warn("tui.subscribe")
			m.setNotice(true, "live updates unavailable: %v", msg.err)
			break
		}
		cmd = waitForChange(msg.ch)
		m.changesCh = msg.ch

	case boardChangedMsg:
		m.stale = true
		cmd = batch(m.maybeRefetch(), waitForChange(m.changesCh))

	case feedClosedMsg:
		m.changesCh = nil
		if m.ctx.Err() == nil {
			m.setNotice(true, "live updates disconnected (r to reload)")
		}

	case tea.MouseMsg:
		cmd = m.handleMouse(msg)

	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}
	m.clampFocus()
	m.relayout()
	return m, cmd
}

func (m *appModel) handleConfirmed(conf board.Confirmation) tea.Cmd {
	entry := m.logger.WithField("subject", conf.Intent.Subject.String())
	if conf.Err == nil {
		entry.WithField("position", conf.Position).Debug("tui.move.confirmed")
	} else {
		entry.WithError(conf.Err).Warn("tui.move.refused")
		switch {
		case conf.Fresh != nil:
			m.setNotice(true, "move not saved: %v (board reloaded)", conf.Err)
		case conf.ReconcileErr != nil:
			m.setNotice(true, "move not saved: %v (reload failed: %v)", conf.Err, conf.ReconcileErr)
		}
	}
	if a, ok := conf.Action(); ok {
		m.apply(a)
	}
	return m.maybeRefetch()
}

func (m *appModel) subjectAt(p board.Point) (board.Subject, board.Rect, bool) {
	hit, ok := m.layout.HitTest(p)
	if !ok {
		return board.Subject{}, board.Rect{}, false
	}
	if hit.Kind == board.TargetCard {
		sub := board.Task(hit.ID)
		r, _ := m.layout.RectOf(sub)
		return sub, r, true
	}
	for _, lb := range m.layout.Lanes {
		if lb.ID == hit.ID && !lb.Fixed && p.Y == lb.Rect.Y {
			return board.Column(lb.ID), lb.Rect, true
		}
	}
	return board.Subject{}, board.Rect{}, false
}

func (m *appModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	p := board.Point{X: msg.X, Y: msg.Y}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || m.grab != nil {
			return nil
		}
		if hit, ok := m.layout.HitTest(p); ok {
			m.focus = focus{LaneID: hit.LaneID}
			if hit.Kind == board.TargetCard {
				m.focus.CardID = hit.ID
			}
		}
		if sub, r, ok := m.subjectAt(p); ok {
			m.drag.Press(sub, p, r)
		}
	case tea.MouseActionMotion:
		m.drag.Move(p, m.layout)
	case tea.MouseActionRelease:
		var cmds []tea.Cmd
		in, ok := m.drag.Drop()
		if ok {
			cmds = append(cmds, m.confirm(in))
		}
		cmds = append(cmds, m.endSession(ok))
		return batch(cmds...)
	}
	return nil
}

func (m *appModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		switch {
		case m.drag.State() != board.Idle:
			m.drag.Cancel()
			m.setNotice(false, "drag cancelled")
			return m.endSession(false)
		case m.grab != nil:
			m.store.Dispatch(board.Load{Snapshot: m.grab.before})
			m.grab = nil
			m.setNotice(false, "move cancelled")
			return m.endSession(false)
		case m.detail:
			m.detail = false
		}
		return nil

	case m.grab != nil:
		return m.handleGrabKey(msg)

	case key.Matches(msg, m.keys.Grab):
		sub := m.focusedSubject()
		if sub.IsZero() {
			return nil
		}
		m.grab = &grabState{subject: sub, before: m.store.State().Clone()}
		m.setNotice(false, "moving %s: arrows to move, space or enter to drop, esc to cancel", sub.Kind)

	case key.Matches(msg, m.keys.Confirm), key.Matches(msg, m.keys.Detail):
		m.detail = !m.detail && m.focus.CardID != ""

	case key.Matches(msg, m.keys.Refresh):
		m.stale = false
		return m.fetch()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		m.moveFocus(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.moveFocus(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.moveFocus(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.moveFocus(1, 0)
	}
	return nil
}

func (m *appModel) handleGrabKey(msg tea.KeyMsg) tea.Cmd {
	sub := m.grab.subject
	switch {
	case key.Matches(msg, m.keys.Grab), key.Matches(msg, m.keys.Confirm):
		in, ok := board.Diff(m.grab.before, m.store.State(), sub)
		m.grab = nil
		m.notice = ""
		var cmds []tea.Cmd
		if ok {
			cmds = append(cmds, m.confirm(in))
		}
		cmds = append(cmds, m.endSession(ok))
		return batch(cmds...)
	case key.Matches(msg, m.keys.Up):
		board.Nudge(m.store, sub, 0, -1)
	case key.Matches(msg, m.keys.Down):
		board.Nudge(m.store, sub, 0, 1)
	case key.Matches(msg, m.keys.Left):
		board.Nudge(m.store, sub, -1, 0)
	case key.Matches(msg, m.keys.Right):
		board.Nudge(m.store, sub, 1, 0)
	}
	if sub.IsColumn() {
		m.focus = focus{LaneID: sub.ID}
	} else {
		m.focus = focus{LaneID: m.store.State().LaneOf(sub.ID), CardID: sub.ID}
	}
	return nil
}

func (m *appModel) focusedSubject() board.Subject {
	if m.focus.CardID != "" {
		return board.Task(m.focus.CardID)
	}
	s := m.store.State()
	if i := s.LaneIndex(m.focus.LaneID); i >= 0 && !s.Lanes[i].Fixed {
		return board.Column(m.focus.LaneID)
	}
	return board.Subject{}
}

func (m *appModel) moveFocus(dx, dy int) {
	s := m.store.State()
	li := s.LaneIndex(m.focus.LaneID)
	if li < 0 {
		return
	}
	ci := -1
	if m.focus.CardID != "" {
		_, ci, _ = s.FindCard(m.focus.CardID)
	}
	if dx != 0 {
		li = clampInt(li+dx, 0, len(s.Lanes)-1)
		ci = min(ci, len(s.Lanes[li].Cards)-1)
	}
	if dy != 0 {
		ci = clampInt(ci+dy, -1, len(s.Lanes[li].Cards)-1)
	}
	m.focus = focus{LaneID: s.Lanes[li].ID}
	if ci >= 0 {
		m.focus.CardID = s.Lanes[li].Cards[ci].ID
	}
}

// clampFocus keeps the selection on something that exists, following a card
// by id when it changed lanes.
func (m *appModel) clampFocus() {
	s := m.store.State()
	if len(s.Lanes) == 0 {
		m.focus = focus{}
		return
	}
	if m.focus.CardID != "" {
		if lane := s.LaneOf(m.focus.CardID); lane != "" {
			m.focus.LaneID = lane
			return
		}
		m.focus.CardID = ""
	}
	if s.LaneIndex(m.focus.LaneID) < 0 {
		m.focus = focus{LaneID: s.Lanes[0].ID}
	}
}

func (m *appModel) footerHeight() int {
	h := 2
	if m.help.ShowAll {
		h = 5
	}
	if m.detail {
		h += detailHeight
	}
	return h
}

func (m *appModel) relayout() {
	v := boardView{snap: m.store.State(), focus: m.focus, target: m.drag.Target()}
	switch {
	case m.grab != nil:
		v.grabbed = m.grab.subject
	case m.drag.Dragging():
		v.grabbed = m.drag.Subject()
	}
	m.rendered, m.layout = renderBoard(v, 1, m.width, max(m.height-1-m.footerHeight(), 1))
}

func (m *appModel) View() string {
	s := m.store.State()
	title := lipgloss.NewStyle().Bold(true).Render(strings.TrimSpace(s.Title))
	if !m.loaded {
		title = styleMuted().Render("loading…")
	}
	if m.inflight > 0 {
		title += styleMuted().Render(fmt.Sprintf("  saving %d…", m.inflight))
	}

	parts := []string{normalizePane(title, m.width, 1), m.rendered}
	if m.detail {
		parts = append(parts, m.detailView())
	}
	notice := m.notice
	if m.noticeErr {
		notice = lipgloss.NewStyle().Foreground(colorErrorFg).Render(notice)
	}
	parts = append(parts, normalizePane(notice, m.width, 1), m.help.View(m.keys))
	return strings.Join(parts, "\n")
}

func (m *appModel) detailView() string {
	s := m.store.State()
	li, ci, ok := s.FindCard(m.focus.CardID)
	if !ok {
		return normalizePane("", m.width, detailHeight)
	}
	c := s.Lanes[li].Cards[ci]
	body := renderMarkdown(c.Description, m.width-2)
	if body == "" {
		body = styleMuted().Render("(no description)")
	}
	head := lipgloss.NewStyle().Bold(true).Render(c.Title)
	return normalizePane(head+"\n"+body, m.width, detailHeight)
}

// batch drops nil commands and skips the wrapper for a single one.
func batch(cmds ...tea.Cmd) tea.Cmd {
	var out []tea.Cmd
	for _, c := range cmds {
		if c != nil {
			out = append(out, c)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return tea.Batch(out...)
	}
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
