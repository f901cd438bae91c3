package tui

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/leadflow/internal/app"
	"github.com/hylla/leadflow/internal/domain"
)

// boardTop is the first screen row of the sidebar and columns: header plus spacer.
const boardTop = 2

// activeNavHref marks the sidebar entry for the board itself.
const activeNavHref = "/leads"

// palette colors shared across the board.
var (
	accentColor   = lipgloss.Color("62")
	mutedColor    = lipgloss.Color("241")
	dimColor      = lipgloss.Color("239")
	dropColor     = lipgloss.Color("212")
	selectedColor = lipgloss.Color("212")
	errorColor    = lipgloss.Color("203")
)

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		v := tea.NewView("error: " + m.err.Error() + "\n\npress r to retry • q quit\n")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}
	if !m.ready {
		v := tea.NewView("loading...")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dimColor)

	header := titleStyle.Render("leadflow") + "  " + domain.NavGroupLabel + " › Leads"
	header += statusStyle.Render("  [" + m.modeLabel() + "]")

	bodyHeight := m.bodyHeight()
	body := m.renderBoard(bodyHeight)
	if m.board.ShowSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(bodyHeight), body)
	}

	statusLine := ""
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		statusLine = statusStyle.Render(m.status)
	}
	sections := []string{header, "", body, m.renderToastLine(), statusLine}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(mutedColor).
		BorderTop(true).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	fullContent := content + "\n" + helpLine

	overlay := m.renderModeOverlay(m.width - 8)
	if m.help.ShowAll {
		overlay = m.renderHelpOverlay(m.width - 8)
	}
	if overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}

	view := tea.NewView(fullContent)
	view.MouseMode = tea.MouseModeCellMotion
	view.AltScreen = true
	return view
}

// renderSidebar renders the static navigation list.
func (m Model) renderSidebar(height int) string {
	groupStyle := lipgloss.NewStyle().Bold(true).Foreground(mutedColor)
	itemStyle := lipgloss.NewStyle().Foreground(mutedColor)
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)

	width := 18
	lines := []string{groupStyle.Render(domain.NavGroupLabel)}
	if m.sidebarCollapsed {
		width = 5
		lines = []string{groupStyle.Render("≡")}
	}
	lines = append(lines, "")
	for _, item := range domain.NavItems() {
		text := item.Icon
		if !m.sidebarCollapsed {
			text += " " + item.Label
		}
		if item.Href == activeNavHref {
			lines = append(lines, activeStyle.Render(text))
			continue
		}
		lines = append(lines, itemStyle.Render(text))
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(dimColor).
		MarginRight(1).
		Render(fitLines(strings.Join(lines, "\n"), max(1, height)))
}

// renderBoard renders the five status columns side by side.
func (m Model) renderBoard(height int) string {
	if len(m.columns) == 0 {
		return lipgloss.NewStyle().Foreground(mutedColor).Render("no columns")
	}
	colWidth := m.columnWidth()
	innerHeight := max(1, height-2)
	views := make([]string, 0, len(m.columns))
	for colIdx, column := range m.columns {
		views = append(views, m.renderColumn(colIdx, column, colWidth, innerHeight))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// columnStyle returns the bordered column frame.
func columnStyle(width int, border color.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		MarginRight(1).
		Width(width)
}

// renderColumn renders one column header and its visible cards.
func (m Model) renderColumn(colIdx int, column app.BoardColumn, width, innerHeight int) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	header := fmt.Sprintf("%s (%d)", column.Title, len(column.Leads))
	accepting := m.drag.accepts(column.Status)
	if accepting {
		header += " ⇣"
	}
	lines := []string{titleStyle.Render(truncate(header, max(1, width-2)))}

	if len(column.Leads) == 0 {
		lines = append(lines, emptyStyle.Render("(empty)"))
	} else {
		top := m.scrollTop(colIdx)
		end := min(len(column.Leads), top+m.visibleCards())
		for leadIdx := top; leadIdx < end; leadIdx++ {
			lead := column.Leads[leadIdx]
			selected := colIdx == m.selectedColumn && leadIdx == m.selectedLead
			lines = append(lines, m.renderLeadCard(lead, max(8, width-4), selected, lead.ID == m.drag.leadID))
		}
		if hidden := len(column.Leads) - end; hidden > 0 {
			lines = append(lines, emptyStyle.Render(fmt.Sprintf("+%d more", hidden)))
		}
	}

	border := dimColor
	switch {
	case accepting:
		border = dropColor
	case colIdx == m.selectedColumn && !m.drag.active():
		border = accentColor
	}
	return columnStyle(width, border).Render(fitLines(strings.Join(lines, "\n"), innerHeight))
}

// renderLeadCard renders one fixed-height lead card.
func (m Model) renderLeadCard(lead domain.Lead, width int, selected, inFlight bool) string {
	nameStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	subStyle := lipgloss.NewStyle().Foreground(mutedColor)
	badgeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238")).Padding(0, 1)

	inner := max(4, width-4)
	// The name wins; the source badge (two cells of padding) takes what is left.
	const minBadge = 3
	name := truncate(lead.Name, min(len([]rune(lead.Name)), max(3, inner-minBadge-1)))
	header := nameStyle.Render(name)
	if sourceWidth := inner - lipgloss.Width(name) - 1 - 2; sourceWidth > 0 && lead.Source != "" {
		header += " " + badgeStyle.Render(truncate(lead.Source, sourceWidth))
	}
	lines := []string{
		header,
		subStyle.Render(truncate(lead.Email, inner)),
		subStyle.Render(truncate(lead.Phone, inner)),
		subStyle.Render(formatCreated(lead.CreatedAt)),
	}
	if m.board.ShowAssignee {
		assignee := ""
		if lead.Assigned() {
			assignee = "Assigned to: " + lead.AssignedTo
		}
		lines = append(lines, subStyle.Render(truncate(assignee, inner)))
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(width)
	switch {
	case inFlight:
		style = style.BorderForeground(dropColor).Faint(true)
	case selected:
		style = style.BorderForeground(selectedColor)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// renderToastLine renders the current notification, if any.
func (m Model) renderToastLine() string {
	if !m.toastVisible {
		return ""
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("✔ " + m.toast.Title)
	desc := lipgloss.NewStyle().Foreground(mutedColor).Render(m.toast.Description)
	return title + "  " + desc
}

// renderModeOverlay renders the add-lead form or lead detail.
func (m Model) renderModeOverlay(maxWidth int) string {
	boxWidth := clamp(maxWidth, 36, 72)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1).
		Width(boxWidth)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	hintStyle := lipgloss.NewStyle().Foreground(mutedColor)

	switch m.mode {
	case modeAddLead:
		labelStyle := lipgloss.NewStyle().Foreground(mutedColor)
		focusLabelStyle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
		errStyle := lipgloss.NewStyle().Foreground(errorColor)
		lines := []string{titleStyle.Render("Add lead"), ""}
		for idx, field := range leadFormFields {
			if idx >= len(m.formInputs) {
				break
			}
			label := labelStyle.Render(field.label)
			if idx == m.formFocus {
				label = focusLabelStyle.Render(field.label)
			}
			lines = append(lines, label, m.formInputs[idx].View())
			if msg := m.formErrors[field.key]; msg != "" {
				lines = append(lines, errStyle.Render(msg))
			}
		}
		lines = append(lines, "", hintStyle.Render("tab next field • enter save • esc cancel"))
		return box.Render(strings.Join(lines, "\n"))

	case modeLeadInfo:
		lead, ok := m.leadByID(m.infoLeadID)
		if !ok {
			return ""
		}
		rendered := m.markdown.render(leadMarkdown(lead), boxWidth-4)
		lines := []string{rendered, "", hintStyle.Render("y copy email • esc close")}
		return box.Render(strings.Join(lines, "\n"))
	}
	return ""
}

// renderHelpOverlay renders the expanded key reference.
func (m Model) renderHelpOverlay(maxWidth int) string {
	helpBubble := m.help
	helpBubble.ShowAll = true
	helpBubble.SetWidth(clamp(maxWidth, 40, 96))
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Leadflow Help"),
		"",
		helpBubble.View(m.keys),
		"",
		lipgloss.NewStyle().Foreground(mutedColor).Render("drag a card with the mouse, or grab it with space"),
		lipgloss.NewStyle().Foreground(mutedColor).Render("press ? or esc to close"),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// formatCreated formats a card's creation date.
func formatCreated(at time.Time) string {
	if at.IsZero() {
		return "-"
	}
	return at.Local().Format("2006-01-02")
}

// bodyHeight returns the height shared by the sidebar and columns.
func (m Model) bodyHeight() int {
	// header, spacer, toast, status, help line with its top border
	const chrome = boardTop + 2 + 2
	return max(12, m.height-chrome)
}

// cardHeight returns the rendered height of every card.
func (m Model) cardHeight() int {
	lines := 4
	if m.board.ShowAssignee {
		lines++
	}
	return lines + 2
}

// visibleCards returns how many cards fit in one column.
func (m Model) visibleCards() int {
	// column border top/bottom and the header line
	return max(1, (m.bodyHeight()-3)/m.cardHeight())
}

// scrollTop returns the first visible card of a column.
func (m Model) scrollTop(colIdx int) int {
	if colIdx != m.selectedColumn {
		return 0
	}
	visible := m.visibleCards()
	if m.selectedLead >= visible {
		return m.selectedLead - visible + 1
	}
	return 0
}

// sidebarWidth returns the rendered sidebar width, zero when hidden.
func (m Model) sidebarWidth() int {
	if !m.board.ShowSidebar {
		return 0
	}
	return lipgloss.Width(m.renderSidebar(1))
}

// columnWidth returns column width.
func (m Model) columnWidth() int {
	return m.columnWidthFor(m.width - m.sidebarWidth())
}

// columnWidthFor returns column width for.
func (m Model) columnWidthFor(boardWidth int) int {
	n := max(1, len(m.columns))
	w := 26
	if boardWidth > 0 {
		// Per-column overhead: left/right border (2), horizontal padding (2), margin-right (1)
		const colOverhead = 5
		if candidate := (boardWidth - n*colOverhead) / n; candidate > 0 {
			w = candidate
		}
	}
	return clamp(w, 18, 40)
}

// columnOuterWidth returns the rendered width of one column including its margin.
func (m Model) columnOuterWidth() int {
	return lipgloss.Width(columnStyle(m.columnWidth(), dimColor).Render(""))
}

// columnAt maps a screen column to a board column index.
func (m Model) columnAt(x int) (int, bool) {
	if len(m.columns) == 0 {
		return 0, false
	}
	left := m.sidebarWidth()
	width := m.columnOuterWidth()
	if x < left || width <= 0 {
		return 0, false
	}
	idx := (x - left) / width
	if idx >= len(m.columns) {
		return 0, false
	}
	return idx, true
}

// leadAt maps a screen row inside a column to a lead index.
func (m Model) leadAt(colIdx, y int) (int, bool) {
	if colIdx < 0 || colIdx >= len(m.columns) {
		return 0, false
	}
	row := y - boardTop - 2
	if row < 0 {
		return 0, false
	}
	slot := row / m.cardHeight()
	if slot >= m.visibleCards() {
		return 0, false
	}
	idx := m.scrollTop(colIdx) + slot
	if idx >= len(m.columns[colIdx].Leads) {
		return 0, false
	}
	return idx, true
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
