package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/leadflow/internal/app"
	"github.com/hylla/leadflow/internal/domain"
	"github.com/hylla/leadflow/internal/notify"
)

// Service represents the lead operations the board drives.
type Service interface {
	Board(context.Context) ([]app.BoardColumn, error)
	CreateLead(context.Context, domain.LeadInput) (domain.Lead, error)
	MoveLead(context.Context, string, domain.Status) (app.MoveResult, error)
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeAddLead
	modeLeadInfo
	modeGrab
)

// Model represents model data used by this package.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int
	err    error

	status string

	help help.Model
	keys keyMap

	board            BoardConfig
	sidebarCollapsed bool
	notifier         *notify.Renderer
	copyText         func(string) error
	markdown         *markdownRenderer
	events           <-chan domain.LeadEvent

	columns        []app.BoardColumn
	selectedColumn int
	selectedLead   int
	pendingFocusID string

	mode inputMode
	drag dragState

	formInputs     []textinput.Model
	formFocus      int
	formErrors     map[string]string
	formSubmitting bool

	infoLeadID string

	toast        notify.Notification
	toastVisible bool
	toastSeq     int
}

// boardLoadedMsg carries message data through update handling.
type boardLoadedMsg struct {
	columns []app.BoardColumn
	err     error
}

// leadCreatedMsg carries the add-lead outcome.
type leadCreatedMsg struct {
	lead domain.Lead
	err  error
}

// leadMovedMsg carries the status-change outcome.
type leadMovedMsg struct {
	result app.MoveResult
	target domain.Status
	err    error
}

// remoteEventMsg carries one change published by another process.
type remoteEventMsg struct {
	event  domain.LeadEvent
	closed bool
}

// toastExpiredMsg hides the toast it was scheduled for.
type toastExpiredMsg struct {
	seq int
}

// clipboardMsg reports a clipboard write.
type clipboardMsg struct {
	text string
	err  error
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:      svc,
		status:   "loading...",
		help:     h,
		keys:     newKeyMap(),
		board:    DefaultBoardConfig(),
		notifier: notify.MustDefault(),
		copyText: clipboard.WriteAll,
		markdown: &markdownRenderer{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	if m.events == nil {
		return m.loadBoard
	}
	return tea.Batch(m.loadBoard, m.waitForEvent)
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.columns = msg.columns
		if m.pendingFocusID != "" {
			m.focusLeadByID(m.pendingFocusID)
			m.pendingFocusID = ""
		}
		m.clampSelections()
		if m.mode == modeLeadInfo {
			if _, ok := m.leadByID(m.infoLeadID); !ok {
				m.mode = modeNone
				m.infoLeadID = ""
			}
		}
		if m.status == "" || m.status == "loading..." || m.status == "reloading..." {
			m.status = "ready"
		}
		return m, nil

	case leadCreatedMsg:
		return m.handleLeadCreated(msg)

	case leadMovedMsg:
		return m.handleLeadMoved(msg)

	case remoteEventMsg:
		if msg.closed {
			m.events = nil
			return m, nil
		}
		return m, tea.Batch(m.loadBoard, m.waitForEvent)

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toastVisible = false
		}
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
			return m, nil
		}
		m.status = "copied " + msg.text
		return m, nil

	case tea.KeyPressMsg:
		switch m.mode {
		case modeAddLead:
			return m.handleFormKey(msg)
		case modeLeadInfo:
			return m.handleInfoKey(msg)
		case modeGrab:
			return m.handleGrabKey(msg)
		default:
			return m.handleNormalModeKey(msg)
		}

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	default:
		return m, nil
	}
}

// loadBoard loads the partitioned board.
func (m Model) loadBoard() tea.Msg {
	columns, err := m.svc.Board(context.Background())
	return boardLoadedMsg{columns: columns, err: err}
}

// waitForEvent blocks until the next remote change.
func (m Model) waitForEvent() tea.Msg {
	event, ok := <-m.events
	return remoteEventMsg{event: event, closed: !ok}
}

// handleNormalModeKey handles board navigation keys.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		if m.help.ShowAll {
			m.status = "help"
		} else {
			m.status = "ready"
		}
		return m, nil
	case msg.String() == "esc":
		if m.help.ShowAll {
			m.help.ShowAll = false
			m.status = "ready"
		}
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadBoard
	case key.Matches(msg, m.keys.moveLeft):
		if m.selectedColumn > 0 {
			m.selectedColumn--
			m.selectedLead = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		if m.selectedColumn < len(m.columns)-1 {
			m.selectedColumn++
			m.selectedLead = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		if m.selectedLead < len(m.currentColumnLeads())-1 {
			m.selectedLead++
		}
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.selectedLead > 0 {
			m.selectedLead--
		}
		return m, nil
	case key.Matches(msg, m.keys.addLead):
		return m, m.startLeadForm()
	case key.Matches(msg, m.keys.grab):
		lead, ok := m.selectedLeadInColumn()
		if !ok {
			m.status = "no lead selected"
			return m, nil
		}
		m.drag = dragState{leadID: lead.ID, from: lead.Status, over: lead.Status, hovering: true}
		m.mode = modeGrab
		m.status = "moving " + lead.Name + ": h/l choose column • enter drop • esc cancel"
		return m, nil
	case key.Matches(msg, m.keys.leadInfo):
		lead, ok := m.selectedLeadInColumn()
		if !ok {
			m.status = "no lead selected"
			return m, nil
		}
		m.mode = modeLeadInfo
		m.infoLeadID = lead.ID
		m.status = "lead info"
		return m, nil
	case key.Matches(msg, m.keys.moveLeadLeft):
		return m.moveSelectedLead(-1)
	case key.Matches(msg, m.keys.moveLeadRight):
		return m.moveSelectedLead(1)
	case key.Matches(msg, m.keys.toggleSidebar):
		if !m.board.ShowSidebar {
			m.status = "sidebar disabled in config"
			return m, nil
		}
		m.sidebarCollapsed = !m.sidebarCollapsed
		return m, nil
	case key.Matches(msg, m.keys.copyEmail):
		lead, ok := m.selectedLeadInColumn()
		if !ok {
			m.status = "no lead selected"
			return m, nil
		}
		return m, m.copyEmailCmd(lead.Email)
	default:
		return m, nil
	}
}

// handleInfoKey handles keys while the detail overlay is open.
func (m Model) handleInfoKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.copyEmail):
		lead, ok := m.leadByID(m.infoLeadID)
		if !ok {
			return m, nil
		}
		return m, m.copyEmailCmd(lead.Email)
	case msg.String() == "esc", msg.String() == "q", key.Matches(msg, m.keys.leadInfo):
		m.mode = modeNone
		m.infoLeadID = ""
		m.status = "ready"
		return m, nil
	default:
		return m, nil
	}
}

// moveSelectedLead moves the selected lead one column left or right.
func (m Model) moveSelectedLead(delta int) (tea.Model, tea.Cmd) {
	lead, ok := m.selectedLeadInColumn()
	if !ok {
		m.status = "no lead selected"
		return m, nil
	}
	target := int(lead.Status) + delta
	if target < 0 || target >= len(domain.Statuses()) {
		m.status = lead.Name + " is already in " + lead.Status.Title()
		return m, nil
	}
	return m, m.moveLeadCmd(lead.ID, domain.Status(target))
}

// moveLeadCmd reports one release to the service.
func (m Model) moveLeadCmd(leadID string, target domain.Status) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		result, err := svc.MoveLead(context.Background(), leadID, target)
		return leadMovedMsg{result: result, target: target, err: err}
	}
}

// handleLeadMoved applies a completed status change.
func (m Model) handleLeadMoved(msg leadMovedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = "move failed: " + msg.err.Error()
		return m, m.loadBoard
	}
	if !msg.result.Applied {
		m.status = "lead no longer exists"
		return m, m.loadBoard
	}
	lead := msg.result.Lead
	m.pendingFocusID = lead.ID
	if msg.result.FromStatus == msg.target {
		m.status = lead.Name + " stays in " + msg.target.Title()
		return m, m.loadBoard
	}
	n, err := m.notifier.Moved(lead, msg.result.FromStatus)
	if err != nil {
		n = notify.PlainMoved(lead, msg.result.FromStatus)
	}
	m.status = "moved " + lead.Name
	return m, tea.Batch(m.loadBoard, m.showToast(n))
}

// showToast displays one notification and schedules its removal.
func (m *Model) showToast(n notify.Notification) tea.Cmd {
	m.toastSeq++
	m.toast = n
	m.toastVisible = true
	if m.board.ToastDuration <= 0 {
		return nil
	}
	seq := m.toastSeq
	return tea.Tick(m.board.ToastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// copyEmailCmd writes one address to the clipboard.
func (m Model) copyEmailCmd(email string) tea.Cmd {
	write := m.copyText
	return func() tea.Msg {
		if strings.TrimSpace(email) == "" {
			return clipboardMsg{err: errors.New("lead has no email")}
		}
		return clipboardMsg{text: email, err: write(email)}
	}
}

// clampSelections clamps selections.
func (m *Model) clampSelections() {
	if len(m.columns) == 0 {
		m.selectedColumn = 0
		m.selectedLead = 0
		return
	}
	m.selectedColumn = clamp(m.selectedColumn, 0, len(m.columns)-1)
	m.selectedLead = clamp(m.selectedLead, 0, max(0, len(m.currentColumnLeads())-1))
}

// currentColumnLeads returns the leads of the selected column.
func (m Model) currentColumnLeads() []domain.Lead {
	if len(m.columns) == 0 {
		return nil
	}
	return m.columns[clamp(m.selectedColumn, 0, len(m.columns)-1)].Leads
}

// selectedLeadInColumn returns the lead under the cursor.
func (m Model) selectedLeadInColumn() (domain.Lead, bool) {
	leads := m.currentColumnLeads()
	if len(leads) == 0 {
		return domain.Lead{}, false
	}
	return leads[clamp(m.selectedLead, 0, len(leads)-1)], true
}

// focusLeadByID moves the cursor onto the given lead.
func (m *Model) focusLeadByID(leadID string) {
	for colIdx, column := range m.columns {
		for leadIdx, lead := range column.Leads {
			if lead.ID == leadID {
				m.selectedColumn = colIdx
				m.selectedLead = leadIdx
				return
			}
		}
	}
}

// leadByID finds one lead on the loaded board.
func (m Model) leadByID(leadID string) (domain.Lead, bool) {
	for _, column := range m.columns {
		for _, lead := range column.Leads {
			if lead.ID == leadID {
				return lead, true
			}
		}
	}
	return domain.Lead{}, false
}

// leadCount returns the number of leads on the board.
func (m Model) leadCount() int {
	return app.Count(m.columns)
}

// modeLabel names the current mode for the header.
func (m Model) modeLabel() string {
	switch m.mode {
	case modeAddLead:
		return "add lead"
	case modeLeadInfo:
		return "lead info"
	case modeGrab:
		return "moving"
	}
	if m.drag.active() {
		return "dragging"
	}
	return fmt.Sprintf("%d leads", m.leadCount())
}
