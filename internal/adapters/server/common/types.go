// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"

	"github.com/hylla/leadflow/internal/app"
	"github.com/hylla/leadflow/internal/domain"
	"github.com/hylla/leadflow/internal/notify"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrServiceUnavailable reports a missing backing service.
var ErrServiceUnavailable = errors.New("lead service unavailable")

// LeadService is the surface both transports expose.
type LeadService interface {
	Board(context.Context) (BoardSnapshot, error)
	ListLeads(context.Context) ([]domain.Lead, error)
	CreateLead(context.Context, CreateLeadRequest) (CreateLeadResult, error)
	MoveLead(context.Context, MoveLeadRequest) (MoveLeadResult, error)
	Nav() NavSnapshot
}

// BoardSnapshot is the partitioned board plus its total.
type BoardSnapshot struct {
	Columns []app.BoardColumn `json:"columns"`
	Total   int               `json:"total"`
}

// CreateLeadRequest carries the add-lead form.
type CreateLeadRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Source string `json:"source"`
}

// CreateLeadResult is the created lead and its confirmation.
type CreateLeadResult struct {
	Lead         domain.Lead         `json:"lead"`
	Notification notify.Notification `json:"notification"`
}

// MoveLeadRequest drops one lead onto a status column.
type MoveLeadRequest struct {
	LeadID string `json:"lead_id"`
	Status string `json:"status"`
}

// MoveLeadResult reports whether the drop changed anything.
type MoveLeadResult struct {
	Applied      bool                 `json:"applied"`
	Lead         *domain.Lead         `json:"lead,omitempty"`
	FromStatus   string               `json:"from_status,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

// NavSnapshot is the static sidebar.
type NavSnapshot struct {
	Group string           `json:"group"`
	Items []domain.NavItem `json:"items"`
}
