package tui

import (
	"context"
	"errors"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/hylla/leadflow/internal/domain"
	"github.com/hylla/leadflow/internal/notify"
)

// leadFormField describes one add-lead input.
type leadFormField struct {
	key         string
	label       string
	placeholder string
	limit       int
}

// leadFormFields stores add-lead form fields in display and validation order.
var leadFormFields = []leadFormField{
	{key: domain.FieldName, label: "Name", placeholder: "full name", limit: 120},
	{key: domain.FieldEmail, label: "Email", placeholder: "name@example.com", limit: 160},
	{key: domain.FieldPhone, label: "Phone", placeholder: "(11) 99999-0000", limit: 40},
	{key: domain.FieldSource, label: "Source", placeholder: "Facebook Ads, Referral, ...", limit: 80},
}

// add-lead form field indexes.
const (
	leadFieldName = iota
	leadFieldEmail
	leadFieldPhone
	leadFieldSource
)

// newModalInput constructs one modal text input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// startLeadForm opens an empty add-lead modal.
func (m *Model) startLeadForm() tea.Cmd {
	m.mode = modeAddLead
	m.formErrors = nil
	m.formInputs = make([]textinput.Model, 0, len(leadFormFields))
	for _, field := range leadFormFields {
		m.formInputs = append(m.formInputs, newModalInput("", field.placeholder, "", field.limit))
	}
	m.status = "new lead"
	return m.focusLeadFormField(leadFieldName)
}

// focusLeadFormField focuses one form input.
func (m *Model) focusLeadFormField(idx int) tea.Cmd {
	if len(m.formInputs) == 0 {
		return nil
	}
	idx = clamp(idx, 0, len(m.formInputs)-1)
	m.formFocus = idx
	for i := range m.formInputs {
		m.formInputs[i].Blur()
	}
	return m.formInputs[idx].Focus()
}

// closeLeadForm discards the modal and its values.
func (m *Model) closeLeadForm() {
	m.mode = modeNone
	m.formInputs = nil
	m.formFocus = 0
	m.formErrors = nil
	m.formSubmitting = false
}

// leadFormInput collects the submitted values verbatim.
func (m Model) leadFormInput() domain.LeadInput {
	value := func(idx int) string {
		if idx >= len(m.formInputs) {
			return ""
		}
		return m.formInputs[idx].Value()
	}
	return domain.LeadInput{
		Name:   value(leadFieldName),
		Email:  value(leadFieldEmail),
		Phone:  value(leadFieldPhone),
		Source: value(leadFieldSource),
	}
}

// handleFormKey handles keys while the add-lead modal is open.
func (m Model) handleFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.closeLeadForm()
		m.status = "cancelled"
		return m, nil
	case "tab", "down":
		return m, m.focusLeadFormField((m.formFocus + 1) % len(m.formInputs))
	case "shift+tab", "up":
		return m, m.focusLeadFormField((m.formFocus - 1 + len(m.formInputs)) % len(m.formInputs))
	case "enter":
		if m.formSubmitting {
			return m, nil
		}
		m.formSubmitting = true
		m.status = "saving..."
		return m, m.createLeadCmd(m.leadFormInput())
	}
	var cmd tea.Cmd
	m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
	return m, cmd
}

// createLeadCmd submits the form to the service.
func (m Model) createLeadCmd(in domain.LeadInput) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		lead, err := svc.CreateLead(context.Background(), in)
		return leadCreatedMsg{lead: lead, err: err}
	}
}

// handleLeadCreated closes the modal on success or shows field errors.
func (m Model) handleLeadCreated(msg leadCreatedMsg) (tea.Model, tea.Cmd) {
	m.formSubmitting = false
	if msg.err != nil {
		var verr *domain.ValidationError
		if errors.As(msg.err, &verr) {
			m.formErrors = verr.Map()
			m.status = "fix the highlighted fields"
			if len(verr.Fields) > 0 {
				for idx, field := range leadFormFields {
					if field.key == verr.Fields[0].Field {
						return m, m.focusLeadFormField(idx)
					}
				}
			}
			return m, nil
		}
		m.status = "add lead failed: " + msg.err.Error()
		return m, nil
	}
	m.closeLeadForm()
	m.pendingFocusID = msg.lead.ID
	m.status = "added " + msg.lead.Name
	n, err := m.notifier.Created(msg.lead)
	if err != nil {
		n = notify.PlainCreated(msg.lead)
	}
	return m, tea.Batch(m.loadBoard, m.showToast(n))
}
