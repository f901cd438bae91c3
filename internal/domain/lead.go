package domain

import (
	"strings"
	"time"
)

// Lead is a prospective customer tracked through the pipeline.
type Lead struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Status     Status    `json:"status"`
	Source     string    `json:"source"`
	AssignedTo string    `json:"assigned_to,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// LeadInput holds the fields submitted by the add-lead form.
type LeadInput struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Source string `json:"source"`
}

// NewLead validates in and builds a lead in the new stage.
func NewLead(id string, in LeadInput, now time.Time) (Lead, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Lead{}, ErrInvalidID
	}
	if err := ValidateLeadInput(in); err != nil {
		return Lead{}, err
	}
	return Lead{
		ID:        id,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Status:    StatusNew,
		Source:    in.Source,
		CreatedAt: now.UTC(),
	}, nil
}

// WithStatus returns a copy of l in the given stage. Every other field is kept.
func (l Lead) WithStatus(status Status) (Lead, error) {
	if !status.Valid() {
		return Lead{}, ErrInvalidStatus
	}
	l.Status = status
	return l, nil
}

// Assigned reports whether someone owns the lead.
func (l Lead) Assigned() bool {
	return strings.TrimSpace(l.AssignedTo) != ""
}
