// Package notify renders the short confirmation messages shown after a lead
// is added or moved. Messages are Liquid templates so operators can reword
// them from config.
package notify

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hylla/leadflow/internal/domain"
	"github.com/osteele/liquid"
)

// Notification is a transient confirmation.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Templates holds the Liquid sources for each notification.
type Templates struct {
	CreatedTitle string
	CreatedBody  string
	MovedTitle   string
	MovedBody    string
}

// DefaultTemplates returns the built-in wording.
func DefaultTemplates() Templates {
	return Templates{
		CreatedTitle: "Lead added",
		CreatedBody:  "{{ lead.name }} was added to {{ lead.status | status_title }}.",
		MovedTitle:   "Lead moved",
		MovedBody:    "{{ lead.name }} moved from {{ from | status_title }} to {{ to | status_title }}.",
	}
}

// withDefaults fills blank templates from DefaultTemplates.
func (t Templates) withDefaults() Templates {
	def := DefaultTemplates()
	if strings.TrimSpace(t.CreatedTitle) == "" {
		t.CreatedTitle = def.CreatedTitle
	}
	if strings.TrimSpace(t.CreatedBody) == "" {
		t.CreatedBody = def.CreatedBody
	}
	if strings.TrimSpace(t.MovedTitle) == "" {
		t.MovedTitle = def.MovedTitle
	}
	if strings.TrimSpace(t.MovedBody) == "" {
		t.MovedBody = def.MovedBody
	}
	return t
}

// Renderer renders notifications from parsed templates.
type Renderer struct {
	engine    *liquid.Engine
	templates Templates
	cache     sync.Map // source -> *liquid.Template
}

// New parses every template up front so config mistakes surface at startup.
func New(t Templates) (*Renderer, error) {
	engine := liquid.NewEngine()
	engine.RegisterFilter("status_title", func(raw string) string {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return raw
		}
		return status.Title()
	})
	r := &Renderer{engine: engine, templates: t.withDefaults()}
	for name, src := range map[string]string{
		"created_title": r.templates.CreatedTitle,
		"created_body":  r.templates.CreatedBody,
		"moved_title":   r.templates.MovedTitle,
		"moved_body":    r.templates.MovedBody,
	} {
		if _, err := r.parse(src); err != nil {
			return nil, fmt.Errorf("parse notification template %s: %w", name, err)
		}
	}
	return r, nil
}

// MustDefault returns a renderer over DefaultTemplates.
func MustDefault() *Renderer {
	r, err := New(DefaultTemplates())
	if err != nil {
		panic(err)
	}
	return r
}

// Created renders the confirmation for a newly added lead.
func (r *Renderer) Created(lead domain.Lead) (Notification, error) {
	bindings := map[string]any{"lead": leadBindings(lead)}
	return r.render(r.templates.CreatedTitle, r.templates.CreatedBody, bindings)
}

// Moved renders the confirmation for a status change.
func (r *Renderer) Moved(lead domain.Lead, from domain.Status) (Notification, error) {
	bindings := map[string]any{
		"lead": leadBindings(lead),
		"from": from.String(),
		"to":   lead.Status.String(),
	}
	return r.render(r.templates.MovedTitle, r.templates.MovedBody, bindings)
}

func (r *Renderer) render(titleSrc, bodySrc string, bindings map[string]any) (Notification, error) {
	title, err := r.renderOne(titleSrc, bindings)
	if err != nil {
		return Notification{}, err
	}
	body, err := r.renderOne(bodySrc, bindings)
	if err != nil {
		return Notification{}, err
	}
	return Notification{Title: strings.TrimSpace(title), Description: strings.TrimSpace(body)}, nil
}

func (r *Renderer) renderOne(src string, bindings map[string]any) (string, error) {
	tpl, err := r.parse(src)
	if err != nil {
		return "", err
	}
	out, renderErr := tpl.RenderString(bindings)
	if renderErr != nil {
		return "", fmt.Errorf("render notification: %w", renderErr)
	}
	return out, nil
}

func (r *Renderer) parse(src string) (*liquid.Template, error) {
	if cached, ok := r.cache.Load(src); ok {
		return cached.(*liquid.Template), nil
	}
	tpl, err := r.engine.ParseString(src)
	if err != nil {
		return nil, err
	}
	r.cache.Store(src, tpl)
	return tpl, nil
}

func leadBindings(lead domain.Lead) map[string]any {
	return map[string]any{
		"id":          lead.ID,
		"name":        lead.Name,
		"email":       lead.Email,
		"phone":       lead.Phone,
		"status":      lead.Status.String(),
		"source":      lead.Source,
		"assigned_to": lead.AssignedTo,
	}
}

// PlainCreated is the untemplated create confirmation, used when a configured
// template fails to render.
func PlainCreated(lead domain.Lead) Notification {
	return Notification{
		Title:       "Lead added",
		Description: lead.Name + " was added to " + lead.Status.Title() + ".",
	}
}

// PlainMoved is the untemplated move confirmation.
func PlainMoved(lead domain.Lead, from domain.Status) Notification {
	return Notification{
		Title:       "Lead moved",
		Description: lead.Name + " moved from " + from.Title() + " to " + lead.Status.Title() + ".",
	}
}
