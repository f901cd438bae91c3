package app

import (
	"context"

	"github.com/hylla/leadflow/internal/domain"
)

// Repository stores the lead collection in insertion order.
type Repository interface {
	ListLeads(context.Context) ([]domain.Lead, error)
	GetLead(context.Context, string) (domain.Lead, error)
	CreateLead(context.Context, domain.Lead) error
	UpdateLead(context.Context, domain.Lead) error
}

// Publisher receives one event per successful collection change.
type Publisher interface {
	Publish(context.Context, domain.LeadEvent) error
}

// Logger is the structured logger surface the service needs.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}
