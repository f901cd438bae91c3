package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/leadflow/internal/app"
	"github.com/hylla/leadflow/internal/domain"
)

type moveCall struct {
	leadID string
	status domain.Status
}

type fakeService struct {
	leads   []domain.Lead
	moves   []moveCall
	err     error
	nextID  int
	created []domain.Lead
}

func newFakeService(leads ...domain.Lead) *fakeService {
	return &fakeService{leads: append([]domain.Lead(nil), leads...)}
}

func seededFakeService() *fakeService {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	seed := app.DefaultSeed()
	for i := range seed {
		seed[i].CreatedAt = now
	}
	return newFakeService(seed...)
}

func (f *fakeService) Board(context.Context) ([]app.BoardColumn, error) {
	if f.err != nil {
		return nil, f.err
	}
	return app.Partition(f.leads), nil
}

func (f *fakeService) CreateLead(_ context.Context, in domain.LeadInput) (domain.Lead, error) {
	f.nextID++
	lead, err := domain.NewLead(fmt.Sprintf("new-%d", f.nextID), in, time.Date(2026, 2, 22, 9, 0, 0, 0, time.UTC))
	if err != nil {
		return domain.Lead{}, err
	}
	f.leads = append(f.leads, lead)
	f.created = append(f.created, lead)
	return lead, nil
}

func (f *fakeService) MoveLead(_ context.Context, leadID string, status domain.Status) (app.MoveResult, error) {
	f.moves = append(f.moves, moveCall{leadID: leadID, status: status})
	for idx, lead := range f.leads {
		if lead.ID != leadID {
			continue
		}
		moved, err := lead.WithStatus(status)
		if err != nil {
			return app.MoveResult{}, err
		}
		next := append([]domain.Lead(nil), f.leads...)
		next[idx] = moved
		f.leads = next
		return app.MoveResult{Lead: moved, FromStatus: lead.Status, Applied: true}, nil
	}
	return app.MoveResult{}, nil
}

func (f *fakeService) lead(id string) domain.Lead {
	for _, lead := range f.leads {
		if lead.ID == id {
			return lead
		}
	}
	return domain.Lead{}
}

func testBoardConfig() BoardConfig {
	return BoardConfig{ShowSidebar: true, ShowAssignee: true}
}

func loadReadyModel(t *testing.T, m Model) Model {
	t.Helper()
	return applyMsg(t, applyCmd(t, m, m.Init()), tea.WindowSizeMsg{Width: 160, Height: 40})
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return applyCmd(t, out, cmd)
}

func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	out := m
	queue := []tea.Cmd{cmd}
	for i := 0; i < 16 && len(queue) > 0; i++ {
		current := queue[0]
		queue = queue[1:]
		if current == nil {
			continue
		}
		msg := current()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		updated, next := out.Update(msg)
		casted, ok := updated.(Model)
		if !ok {
			t.Fatalf("expected Model, got %T", updated)
		}
		out = casted
		queue = append(queue, next)
	}
	return out
}

// typeText feeds runes to the focused input without running cursor commands.
func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		updated, _ := m.Update(keyRune(r))
		m = updated.(Model)
	}
	return m
}

func keyRune(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestModelLoadAndNavigation(t *testing.T) {
	m := loadReadyModel(t, NewModel(seededFakeService(), WithBoardConfig(testBoardConfig())))

	if len(m.columns) != 5 || m.leadCount() != 2 {
		t.Fatalf("unexpected loaded board: %#v", m.columns)
	}
	if m.status != "ready" {
		t.Fatalf("status = %q, want ready", m.status)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyRight})
	if m.selectedColumn != 1 {
		t.Fatalf("expected selectedColumn=1, got %d", m.selectedColumn)
	}
	lead, ok := m.selectedLeadInColumn()
	if !ok || lead.ID != "2" {
		t.Fatalf("expected lead 2 selected, got %#v", lead)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyLeft})
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyLeft})
	if m.selectedColumn != 0 {
		t.Fatalf("expected selectedColumn=0, got %d", m.selectedColumn)
	}
}

func TestModelKeyboardGrabMovesLead(t *testing.T) {
	svc := seededFakeService()
	m := loadReadyModel(t, NewModel(svc, WithBoardConfig(testBoardConfig())))

	m = applyMsg(t, m, keyRune('l'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	if m.mode != modeGrab || m.drag.leadID != "2" {
		t.Fatalf("expected lead 2 grabbed, got mode=%d drag=%#v", m.mode, m.drag)
	}
	m = applyMsg(t, m, keyRune('l'))
	if !m.drag.accepts(domain.StatusNegotiating) {
		t.Fatalf("expected negotiating hover, got %#v", m.drag)
	}
	if len(svc.moves) != 0 {
		t.Fatalf("hover must not mutate, got %#v", svc.moves)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if len(svc.moves) != 1 || svc.moves[0] != (moveCall{leadID: "2", status: domain.StatusNegotiating}) {
		t.Fatalf("unexpected moves %#v", svc.moves)
	}
	got := svc.lead("2")
	if got.Status != domain.StatusNegotiating || got.Name != "Sarah Johnson" || got.AssignedTo != "Alice Cooper" {
		t.Fatalf("unexpected moved lead %#v", got)
	}
	if m.mode != modeNone || m.drag.active() {
		t.Fatalf("expected drag cleared, got mode=%d drag=%#v", m.mode, m.drag)
	}
	if m.selectedColumn != 2 || len(m.columns[1].Leads) != 0 {
		t.Fatalf("expected focus to follow the lead, column=%d", m.selectedColumn)
	}
	if !m.toastVisible || m.toast.Description != "Sarah Johnson moved from Contacted to Negotiating." {
		t.Fatalf("unexpected toast %#v", m.toast)
	}
}

func TestModelGrabCancel(t *testing.T) {
	svc := seededFakeService()
	m := loadReadyModel(t, NewModel(svc, WithBoardConfig(testBoardConfig())))

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	m = applyMsg(t, m, keyRune('l'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.mode != modeNone || m.drag.active() || len(svc.moves) != 0 {
		t.Fatalf("expected cancelled grab, mode=%d moves=%#v", m.mode, svc.moves)
	}
}

func TestModelBracketMovesOneColumn(t *testing.T) {
	svc := seededFakeService()
	m := loadReadyModel(t, NewModel(svc, WithBoardConfig(testBoardConfig())))

	m = applyMsg(t, m, keyRune(']'))
	if got := svc.lead("1").Status; got != domain.StatusContacted {
		t.Fatalf("expected lead 1 contacted, got %s", got)
	}
	if len(m.columns[1].Leads) != 2 || m.columns[1].Leads[0].ID != "1" {
		t.Fatalf("expected insertion order kept in contacted, got %#v", m.columns[1].Leads)
	}

	m = applyMsg(t, m, keyRune('['))
	m = applyMsg(t, m, keyRune('['))
	if got := svc.lead("1").Status; got != domain.StatusNew {
		t.Fatalf("expected lead 1 back in new, got %s", got)
	}
	if len(svc.moves) != 2 || !strings.Contains(m.status, "already in New Leads") {
		t.Fatalf("expected boundary to stop the move, moves=%#v status=%q", svc.moves, m.status)
	}
}

func TestModelMouseDragAndDrop(t *testing.T) {
	svc := seededFakeService()
	m := loadReadyModel(t, NewModel(svc, WithBoardConfig(testBoardConfig())))

	left := m.sidebarWidth()
	colWidth := m.columnOuterWidth()
	cardY := boardTop + 3

	m = applyMsg(t, m, tea.MouseClickMsg{X: left + 2, Y: cardY, Button: tea.MouseLeft})
	if m.drag.leadID != "1" || !m.drag.mouse {
		t.Fatalf("expected pick-up of lead 1, got %#v", m.drag)
	}
	m = applyMsg(t, m, tea.MouseMotionMsg{X: left + 3*colWidth + 2, Y: cardY, Button: tea.MouseLeft})
	if !m.drag.accepts(domain.StatusWon) {
		t.Fatalf("expected won column to accept, got %#v", m.drag)
	}
	if !strings.Contains(viewText(m), "Won (0) ⇣") {
		t.Fatal("expected hovered column header to signal acceptance")
	}
	if len(svc.moves) != 0 {
		t.Fatalf("hover must not mutate, got %#v", svc.moves)
	}
	m = applyMsg(t, m, tea.MouseReleaseMsg{X: left + 3*colWidth + 2, Y: cardY, Button: tea.MouseLeft})

	if got := svc.lead("1").Status; got != domain.StatusWon {
		t.Fatalf("expected lead 1 won, got %s", got)
	}
	if m.drag.active() || len(m.columns[3].Leads) != 1 {
		t.Fatalf("unexpected board after drop: drag=%#v won=%#v", m.drag, m.columns[3].Leads)
	}
}

func TestModelMouseReleaseOutsideBoardCancels(t *testing.T) {
	svc := seededFakeService()
	m := loadReadyModel(t, NewModel(svc, WithBoardConfig(testBoardConfig())))

	left := m.sidebarWidth()
	m = applyMsg(t, m, tea.MouseClickMsg{X: left + 2, Y: boardTop + 3, Button: tea.MouseLeft})
	m = applyMsg(t, m, tea.MouseMotionMsg{X: 1, Y: boardTop + 3, Button: tea.MouseLeft})
	if m.drag.hovering {
		t.Fatalf("expected no drop target over the sidebar, got %#v", m.drag)
	}
	m = applyMsg(t, m, tea.MouseReleaseMsg{X: 1, Y: boardTop + 3, Button: tea.MouseLeft})
	if m.drag.active() || len(svc.moves) != 0 || m.status != "drop cancelled" {
		t.Fatalf("expected cancelled drop, drag=%#v moves=%#v status=%q", m.drag, svc.moves, m.status)
	}
}

func TestModelMouseSameColumnDrop(t *testing.T) {
	svc := seededFakeService()
	m := loadReadyModel(t, NewModel(svc, WithBoardConfig(testBoardConfig())))

	left := m.sidebarWidth()
	m = applyMsg(t, m, tea.MouseClickMsg{X: left + 2, Y: boardTop + 3, Button: tea.MouseLeft})
	m = applyMsg(t, m, tea.MouseReleaseMsg{X: left + 4, Y: boardTop + 6, Button: tea.MouseLeft})

	if len(svc.moves) != 1 || svc.moves[0].status != domain.StatusNew {
		t.Fatalf("expected one same-column move, got %#v", svc.moves)
	}
	if m.toastVisible || !strings.Contains(m.status, "stays in New Leads") {
		t.Fatalf("unexpected same-column feedback toast=%v status=%q", m.toastVisible, m.status)
	}
	if m.columns[0].Leads[0].ID != "1" || len(m.columns[0].Leads) != 1 {
		t.Fatalf("expected unchanged column, got %#v", m.columns[0].Leads)
	}
}

func TestModelDropOfVanishedLeadIsNoop(t *testing.T) {
	svc := seededFakeService()
	m := loadReadyModel(t, NewModel(svc, WithBoardConfig(testBoardConfig())))

	left := m.sidebarWidth()
	m = applyMsg(t, m, tea.MouseClickMsg{X: left + 2, Y: boardTop + 3, Button: tea.MouseLeft})
	svc.leads = svc.leads[1:]
	m = applyMsg(t, m, tea.MouseReleaseMsg{X: left + 2*m.columnOuterWidth() + 2, Y: boardTop + 3, Button: tea.MouseLeft})

	if m.status != "lead no longer exists" || m.leadCount() != 1 {
		t.Fatalf("expected silent no-op, status=%q count=%d", m.status, m.leadCount())
	}
}

func TestModelClickEmptyAreaSelectsColumn(t *testing.T) {
	m := loadReadyModel(t, NewModel(seededFakeService(), WithBoardConfig(testBoardConfig())))
	x := m.sidebarWidth() + 4*m.columnOuterWidth() + 2
	m = applyMsg(t, m, tea.MouseClickMsg{X: x, Y: boardTop + 3, Button: tea.MouseLeft})
	if m.selectedColumn != 4 || m.drag.active() {
		t.Fatalf("expected lost column selected without drag, column=%d drag=%#v", m.selectedColumn, m.drag)
	}
}

func TestModelAddLeadValidationKeepsModalOpen(t *testing.T) {
	svc := seededFakeService()
	m := loadReadyModel(t, NewModel(svc, WithBoardConfig(testBoardConfig())))

	m = applyMsg(t, m, keyRune('n'))
	if m.mode != modeAddLead || len(m.formInputs) != 4 {
		t.Fatalf("expected add-lead form, mode=%d inputs=%d", m.mode, len(m.formInputs))
	}
	m = typeText(t, m, "A")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	m = typeText(t, m, "not-an-email")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	m = typeText(t, m, "11999990000")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	m = typeText(t, m, "Referral")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if m.mode != modeAddLead {
		t.Fatalf("expected modal to stay open, mode=%d", m.mode)
	}
	if len(svc.leads) != 2 {
		t.Fatalf("expected collection unchanged, got %d leads", len(svc.leads))
	}
	if m.formErrors[domain.FieldName] != "name must be at least 2 characters" || m.formErrors[domain.FieldEmail] != "invalid email address" {
		t.Fatalf("unexpected form errors %#v", m.formErrors)
	}
	if _, ok := m.formErrors[domain.FieldPhone]; ok {
		t.Fatalf("phone should be valid, got %#v", m.formErrors)
	}
	if m.formFocus != leadFieldName {
		t.Fatalf("expected focus on first invalid field, got %d", m.formFocus)
	}
	if view := viewText(m); !strings.Contains(view, "invalid email address") {
		t.Fatal("expected inline email error in view")
	}
}

func TestModelAddLeadSuccess(t *testing.T) {
	svc := seededFakeService()
	m := loadReadyModel(t, NewModel(svc, WithBoardConfig(testBoardConfig())))

	m = applyMsg(t, m, keyRune('a'))
	for idx, value := range []string{"Carlos Dias", "carlos@example.com", "11999990000", "Referral"} {
		if idx > 0 {
			m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
		}
		m = typeText(t, m, value)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if m.mode != modeNone || m.formInputs != nil || m.formErrors != nil {
		t.Fatalf("expected closed and cleared form, mode=%d", m.mode)
	}
	if len(svc.created) != 1 {
		t.Fatalf("expected one created lead, got %#v", svc.created)
	}
	created := svc.created[0]
	if created.Name != "Carlos Dias" || created.Status != domain.StatusNew || created.AssignedTo != "" {
		t.Fatalf("unexpected created lead %#v", created)
	}
	newCol := m.columns[0].Leads
	if len(newCol) != 2 || newCol[1].ID != created.ID {
		t.Fatalf("expected new lead appended last in New Leads, got %#v", newCol)
	}
	if m.selectedColumn != 0 || m.selectedLead != 1 {
		t.Fatalf("expected cursor on new lead, got %d/%d", m.selectedColumn, m.selectedLead)
	}
	if !m.toastVisible || m.toast.Description != "Carlos Dias was added to New Leads." {
		t.Fatalf("unexpected toast %#v", m.toast)
	}
	if !strings.Contains(viewText(m), "Lead added") {
		t.Fatal("expected toast in view")
	}
}

func TestModelAddLeadIgnoresRepeatedEnterWhileSaving(t *testing.T) {
	svc := seededFakeService()
	m := loadReadyModel(t, NewModel(svc, WithBoardConfig(testBoardConfig())))

	m = applyMsg(t, m, keyRune('a'))
	for idx, value := range []string{"Carlos Dias", "carlos@example.com", "11999990000", "Referral"} {
		if idx > 0 {
			m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
		}
		m = typeText(t, m, value)
	}

	updated, submit := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	m = updated.(Model)
	if submit == nil || m.status != "saving..." {
		t.Fatalf("expected submit command, status=%q", m.status)
	}
	updated, again := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	m = updated.(Model)
	if again != nil {
		t.Fatal("expected second enter ignored while saving")
	}

	m = applyCmd(t, m, submit)
	if len(svc.created) != 1 {
		t.Fatalf("expected exactly one created lead, got %d", len(svc.created))
	}
	if m.mode != modeNone || m.formSubmitting {
		t.Fatalf("expected form closed and idle, mode=%d submitting=%v", m.mode, m.formSubmitting)
	}
}

func TestModelAddLeadCancel(t *testing.T) {
	svc := seededFakeService()
	m := loadReadyModel(t, NewModel(svc, WithBoardConfig(testBoardConfig())))

	m = applyMsg(t, m, keyRune('n'))
	m = typeText(t, m, "Bia")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.mode != modeNone || m.formInputs != nil || len(svc.created) != 0 {
		t.Fatalf("expected cancelled form, mode=%d created=%d", m.mode, len(svc.created))
	}
}

func TestModelAddLeadStorageError(t *testing.T) {
	m := loadReadyModel(t, NewModel(seededFakeService(), WithBoardConfig(testBoardConfig())))
	m = applyMsg(t, m, keyRune('n'))
	m = applyMsg(t, m, leadCreatedMsg{err: errors.New("disk full")})
	if m.mode != modeAddLead || m.status != "add lead failed: disk full" {
		t.Fatalf("unexpected state mode=%d status=%q", m.mode, m.status)
	}
}

func TestModelToastExpires(t *testing.T) {
	cfg := testBoardConfig()
	cfg.ToastDuration = time.Millisecond
	m := loadReadyModel(t, NewModel(seededFakeService(), WithBoardConfig(cfg)))

	m = applyMsg(t, m, keyRune(']'))
	if m.toastVisible {
		t.Fatal("expected toast to expire after its tick")
	}

	m.toastVisible = true
	m.toastSeq = 5
	m = applyMsg(t, m, toastExpiredMsg{seq: 4})
	if !m.toastVisible {
		t.Fatal("stale expiry must not hide a newer toast")
	}
}

func TestModelSidebarToggle(t *testing.T) {
	m := loadReadyModel(t, NewModel(seededFakeService(), WithBoardConfig(testBoardConfig())))

	view := viewText(m)
	for _, label := range []string{"CRM", "Dashboard", "Leads", "Messages", "Reports", "Settings"} {
		if !strings.Contains(view, label) {
			t.Fatalf("expected sidebar label %q", label)
		}
	}
	expanded := m.sidebarWidth()

	m = applyMsg(t, m, keyRune('b'))
	if !m.sidebarCollapsed {
		t.Fatal("expected collapsed sidebar")
	}
	if view := viewText(m); strings.Contains(view, "Dashboard") || !strings.Contains(view, "⌂") {
		t.Fatal("expected icon-only sidebar")
	}
	if m.sidebarWidth() >= expanded {
		t.Fatalf("expected narrower sidebar, got %d >= %d", m.sidebarWidth(), expanded)
	}

	hidden := loadReadyModel(t, NewModel(seededFakeService(), WithBoardConfig(BoardConfig{ShowAssignee: true})))
	if hidden.sidebarWidth() != 0 || strings.Contains(viewText(hidden), "Dashboard") {
		t.Fatal("expected no sidebar when disabled")
	}
}

func TestModelLeadInfoAndCopyEmail(t *testing.T) {
	var copied string
	m := loadReadyModel(t, NewModel(
		seededFakeService(),
		WithBoardConfig(testBoardConfig()),
		WithClipboard(func(text string) error {
			copied = text
			return nil
		}),
	))

	m = applyMsg(t, m, keyRune('i'))
	if m.mode != modeLeadInfo || m.infoLeadID != "1" {
		t.Fatalf("expected lead info for 1, mode=%d id=%q", m.mode, m.infoLeadID)
	}
	if overlay := m.renderModeOverlay(m.width - 8); overlay == "" {
		t.Fatal("expected rendered detail overlay")
	}
	m = applyMsg(t, m, keyRune('y'))
	if copied != "john@example.com" || m.status != "copied john@example.com" {
		t.Fatalf("unexpected copy result copied=%q status=%q", copied, m.status)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.mode != modeNone {
		t.Fatalf("expected overlay closed, mode=%d", m.mode)
	}

	failing := loadReadyModel(t, NewModel(
		seededFakeService(),
		WithClipboard(func(string) error { return errors.New("no clipboard") }),
	))
	failing = applyMsg(t, failing, keyRune('y'))
	if failing.status != "copy failed: no clipboard" {
		t.Fatalf("unexpected status %q", failing.status)
	}
}

func TestModelErrorViewAndReload(t *testing.T) {
	svc := seededFakeService()
	svc.err = errors.New("db down")
	m := loadReadyModel(t, NewModel(svc))
	if m.err == nil || !strings.Contains(viewText(m), "error: db down") {
		t.Fatalf("expected error view, err=%v", m.err)
	}
	svc.err = nil
	m = applyMsg(t, m, keyRune('r'))
	if m.err != nil || m.leadCount() != 2 {
		t.Fatalf("expected recovered board, err=%v count=%d", m.err, m.leadCount())
	}
}

func TestModelReloadsOnRemoteEvents(t *testing.T) {
	svc := seededFakeService()
	events := make(chan domain.LeadEvent, 1)
	m := loadReadyModel(t, NewModel(svc))
	m.events = events
	if NewModel(svc, WithEvents(events)).events == nil {
		t.Fatal("expected WithEvents to set the stream")
	}

	lead, err := domain.NewLead("3", domain.LeadInput{Name: "Bia Costa", Email: "bia@example.com", Phone: "11988887777", Source: "Referral"}, time.Now())
	if err != nil {
		t.Fatalf("NewLead() error = %v", err)
	}
	svc.leads = append(svc.leads, lead)
	events <- domain.LeadEvent{Operation: domain.ChangeOperationCreate, LeadID: lead.ID, Lead: lead}
	close(events)

	m = applyCmd(t, m, m.waitForEvent)
	if m.leadCount() != 3 {
		t.Fatalf("expected reload after remote event, got %d leads", m.leadCount())
	}
	if m.events != nil {
		t.Fatal("expected closed event stream to be dropped")
	}
}

func TestModelQuitKey(t *testing.T) {
	m := loadReadyModel(t, NewModel(seededFakeService()))
	_, cmd := m.Update(keyRune('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestModelHelpOverlay(t *testing.T) {
	m := loadReadyModel(t, NewModel(seededFakeService()))
	m = applyMsg(t, m, keyRune('?'))
	if !m.help.ShowAll || !strings.Contains(viewText(m), "Leadflow Help") {
		t.Fatal("expected help overlay")
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.help.ShowAll {
		t.Fatal("expected help closed")
	}
}

func TestRenderLeadCardFixedHeight(t *testing.T) {
	m := NewModel(seededFakeService(), WithBoardConfig(testBoardConfig()))
	seed := app.DefaultSeed()
	plain := m.renderLeadCard(seed[0], 30, false, false)
	assigned := m.renderLeadCard(seed[1], 30, true, false)
	if lipgloss.Height(plain) != m.cardHeight() || lipgloss.Height(assigned) != m.cardHeight() {
		t.Fatalf("card heights %d/%d, want %d", lipgloss.Height(plain), lipgloss.Height(assigned), m.cardHeight())
	}
	if !strings.Contains(assigned, "Assigned to: Alice Cooper") || strings.Contains(plain, "Assigned to") {
		t.Fatal("expected assignee line only on assigned leads")
	}
	if !strings.Contains(plain, "john@example.com") || !strings.Contains(plain, "(555) 123-4567") {
		t.Fatal("expected contact details on the card")
	}

	noAssignee := NewModel(seededFakeService(), WithBoardConfig(BoardConfig{}))
	if got := lipgloss.Height(noAssignee.renderLeadCard(seed[1], 30, false, false)); got != noAssignee.cardHeight() || got != 6 {
		t.Fatalf("card height without assignee = %d", got)
	}
}

func TestRenderLeadCardKeepsNameOverSource(t *testing.T) {
	m := NewModel(seededFakeService(), WithBoardConfig(testBoardConfig()))
	seed := app.DefaultSeed()
	for _, lead := range seed {
		card := m.renderLeadCard(lead, 23, false, false)
		if !strings.Contains(card, lead.Name) {
			t.Fatalf("expected full name %q on narrow card, got %q", lead.Name, card)
		}
		if strings.Contains(card, lead.Source) {
			t.Fatalf("expected source %q truncated on narrow card, got %q", lead.Source, card)
		}
	}

	wide := m.renderLeadCard(seed[0], 40, false, false)
	if !strings.Contains(wide, "John Smith") || !strings.Contains(wide, "Facebook Ads") {
		t.Fatalf("expected name and source on wide card, got %q", wide)
	}

	long := seed[0]
	long.Name = "Maximiliano Fernandes de Albuquerque"
	card := m.renderLeadCard(long, 23, false, false)
	if lipgloss.Height(card) != m.cardHeight() || !strings.Contains(card, "…") {
		t.Fatalf("expected long name truncated within card, got %q", card)
	}
}

func TestLeadAtOutsideCards(t *testing.T) {
	m := loadReadyModel(t, NewModel(seededFakeService(), WithBoardConfig(testBoardConfig())))
	if _, ok := m.leadAt(0, boardTop); ok {
		t.Fatal("column border row must not hit a card")
	}
	if _, ok := m.leadAt(0, boardTop+2+m.cardHeight()); ok {
		t.Fatal("row below the only card must not hit")
	}
	if idx, ok := m.leadAt(0, boardTop+2); !ok || idx != 0 {
		t.Fatalf("expected first card, got %d %v", idx, ok)
	}
	if _, ok := m.columnAt(m.sidebarWidth() + 5*m.columnOuterWidth() + 1); ok {
		t.Fatal("expected no column past the board")
	}
}

func TestLeadMarkdown(t *testing.T) {
	lead := app.DefaultSeed()[1]
	lead.Source = "Ads | Search"
	md := leadMarkdown(lead)
	for _, want := range []string{"# Sarah Johnson", "**Contacted**", `Ads \| Search`, "Alice Cooper", "`2`"} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in %q", want, md)
		}
	}
	if !strings.Contains(leadMarkdown(app.DefaultSeed()[0]), "_unassigned_") {
		t.Fatal("expected unassigned marker")
	}
}

func TestHelpers(t *testing.T) {
	if clamp(5, 0, 3) != 3 || clamp(-1, 0, 3) != 0 || clamp(2, 3, 1) != 3 {
		t.Fatal("unexpected clamp results")
	}
	if truncate("abcdef", 4) != "abc…" || truncate("ab", 4) != "ab" || truncate("ab", 0) != "" {
		t.Fatal("unexpected truncate results")
	}
	if got := fitLines("a\nb\nc", 2); got != "a\n…" {
		t.Fatalf("fitLines() = %q", got)
	}
	if got := fitLines("a", 3); got != "a\n\n" {
		t.Fatalf("fitLines() = %q", got)
	}
	if formatCreated(time.Time{}) != "-" {
		t.Fatal("expected dash for zero time")
	}
}

func viewText(m Model) string {
	return fmt.Sprint(m.View().Content)
}
