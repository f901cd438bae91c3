package tui

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/hylla/leadflow/internal/domain"
)

// dragState tracks one card in flight. Nothing is mutated until release.
type dragState struct {
	leadID   string
	from     domain.Status
	over     domain.Status
	hovering bool
	mouse    bool
}

// active reports whether a card is picked up.
func (d dragState) active() bool {
	return d.leadID != ""
}

// accepts reports whether the column with status s is the current drop target.
func (d dragState) accepts(s domain.Status) bool {
	return d.active() && d.hovering && d.over == s
}

// handleMouseClick picks up the card under the pointer.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone || msg.Button != tea.MouseLeft {
		return m, nil
	}
	colIdx, ok := m.columnAt(msg.X)
	if !ok {
		return m, nil
	}
	m.selectedColumn = colIdx
	leadIdx, ok := m.leadAt(colIdx, msg.Y)
	if !ok {
		m.selectedLead = 0
		m.clampSelections()
		return m, nil
	}
	m.selectedLead = leadIdx
	lead := m.columns[colIdx].Leads[leadIdx]
	m.drag = dragState{leadID: lead.ID, from: lead.Status, over: lead.Status, hovering: true, mouse: true}
	m.status = "dragging " + lead.Name
	return m, nil
}

// handleMouseMotion updates the hovered column while dragging.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.drag.active() || !m.drag.mouse {
		return m, nil
	}
	colIdx, ok := m.columnAt(msg.X)
	m.drag.hovering = ok
	if ok {
		m.drag.over = m.columns[colIdx].Status
	}
	return m, nil
}

// handleMouseRelease drops the card on the column under the pointer.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.drag.active() || !m.drag.mouse {
		return m, nil
	}
	colIdx, ok := m.columnAt(msg.X)
	if !ok {
		m.drag = dragState{}
		m.status = "drop cancelled"
		return m, nil
	}
	return m.release(m.columns[colIdx].Status)
}

// handleMouseWheel moves the cursor inside the selected column.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		if m.selectedLead > 0 {
			m.selectedLead--
		}
	case tea.MouseWheelDown:
		if m.selectedLead < len(m.currentColumnLeads())-1 {
			m.selectedLead++
		}
	}
	return m, nil
}

// handleGrabKey steers a keyboard-held card.
func (m Model) handleGrabKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	last := domain.Status(len(domain.Statuses()) - 1)
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancel):
		m.mode = modeNone
		m.drag = dragState{}
		m.status = "move cancelled"
		return m, nil
	case key.Matches(msg, m.keys.moveLeft):
		if m.drag.over > 0 {
			m.drag.over--
		}
		m.drag.hovering = true
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		if m.drag.over < last {
			m.drag.over++
		}
		m.drag.hovering = true
		return m, nil
	case key.Matches(msg, m.keys.drop):
		m.mode = modeNone
		return m.release(m.drag.over)
	default:
		return m, nil
	}
}

// release ends the drag and reports (status, lead id) to the service.
func (m Model) release(target domain.Status) (tea.Model, tea.Cmd) {
	leadID := m.drag.leadID
	m.drag = dragState{}
	if leadID == "" {
		return m, nil
	}
	return m, m.moveLeadCmd(leadID, target)
}
