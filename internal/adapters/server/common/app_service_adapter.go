package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hylla/leadflow/internal/app"
	"github.com/hylla/leadflow/internal/domain"
	"github.com/hylla/leadflow/internal/notify"
)

// Notifier renders confirmation messages for completed changes.
type Notifier interface {
	Created(lead domain.Lead) (notify.Notification, error)
	Moved(lead domain.Lead, from domain.Status) (notify.Notification, error)
}

// AppServiceAdapter maps transport contracts onto app.Service.
type AppServiceAdapter struct {
	service  *app.Service
	renderer Notifier
}

// NewAppServiceAdapter builds one adapter; a nil renderer uses the default templates.
func NewAppServiceAdapter(service *app.Service, renderer Notifier) *AppServiceAdapter {
	if renderer == nil {
		renderer = notify.MustDefault()
	}
	return &AppServiceAdapter{service: service, renderer: renderer}
}

// Board returns the partitioned board.
func (a *AppServiceAdapter) Board(ctx context.Context) (BoardSnapshot, error) {
	if err := a.ready(); err != nil {
		return BoardSnapshot{}, err
	}
	cols, err := a.service.Board(ctx)
	if err != nil {
		return BoardSnapshot{}, fmt.Errorf("load board: %w", err)
	}
	return BoardSnapshot{Columns: cols, Total: app.Count(cols)}, nil
}

// ListLeads returns every lead in insertion order.
func (a *AppServiceAdapter) ListLeads(ctx context.Context) ([]domain.Lead, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	leads, err := a.service.ListLeads(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

// CreateLead validates and appends a lead. Validation failures are returned as
// *domain.ValidationError so transports can report every field.
func (a *AppServiceAdapter) CreateLead(ctx context.Context, in CreateLeadRequest) (CreateLeadResult, error) {
	if err := a.ready(); err != nil {
		return CreateLeadResult{}, err
	}
	lead, err := a.service.CreateLead(ctx, domain.LeadInput{
		Name:   in.Name,
		Email:  in.Email,
		Phone:  in.Phone,
		Source: in.Source,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return CreateLeadResult{}, err
		}
		return CreateLeadResult{}, fmt.Errorf("create lead: %w", err)
	}
	// The lead is stored; a template failure only costs the custom wording.
	n, err := a.renderer.Created(lead)
	if err != nil {
		n = notify.PlainCreated(lead)
	}
	return CreateLeadResult{Lead: lead, Notification: n}, nil
}

// MoveLead resolves one drop. Unknown ids report Applied=false.
func (a *AppServiceAdapter) MoveLead(ctx context.Context, in MoveLeadRequest) (MoveLeadResult, error) {
	if err := a.ready(); err != nil {
		return MoveLeadResult{}, err
	}
	leadID := strings.TrimSpace(in.LeadID)
	if leadID == "" {
		return MoveLeadResult{}, fmt.Errorf("lead_id is required: %w", ErrInvalidRequest)
	}
	status, err := domain.ParseStatus(in.Status)
	if err != nil {
		return MoveLeadResult{}, errors.Join(ErrInvalidRequest, err)
	}
	res, err := a.service.MoveLead(ctx, leadID, status)
	if err != nil {
		return MoveLeadResult{}, fmt.Errorf("move lead: %w", err)
	}
	if !res.Applied {
		return MoveLeadResult{}, nil
	}
	n, err := a.renderer.Moved(res.Lead, res.FromStatus)
	if err != nil {
		n = notify.PlainMoved(res.Lead, res.FromStatus)
	}
	lead := res.Lead
	return MoveLeadResult{
		Applied:      true,
		Lead:         &lead,
		FromStatus:   res.FromStatus.String(),
		Notification: &n,
	}, nil
}

// Nav returns the static sidebar.
func (a *AppServiceAdapter) Nav() NavSnapshot {
	return NavSnapshot{Group: domain.NavGroupLabel, Items: domain.NavItems()}
}

func (a *AppServiceAdapter) ready() error {
	if a == nil || a.service == nil {
		return ErrServiceUnavailable
	}
	return nil
}
