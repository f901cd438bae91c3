// Package memory keeps the lead collection in process memory.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/hylla/leadflow/internal/app"
	"github.com/hylla/leadflow/internal/domain"
)

// Repository is an ordered in-memory lead store. Every write replaces the
// backing slice so readers never observe a half-applied change.
type Repository struct {
	mu    sync.RWMutex
	leads []domain.Lead
}

// New returns an empty repository.
func New() *Repository {
	return &Repository{}
}

// ListLeads returns a copy of the collection in insertion order.
func (r *Repository) ListLeads(context.Context) ([]domain.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Lead, len(r.leads))
	copy(out, r.leads)
	return out, nil
}

// GetLead returns one lead or app.ErrNotFound.
func (r *Repository) GetLead(_ context.Context, id string) (domain.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx := r.indexOf(id); idx >= 0 {
		return r.leads[idx], nil
	}
	return domain.Lead{}, app.ErrNotFound
}

// CreateLead appends lead.
func (r *Repository) CreateLead(_ context.Context, lead domain.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(lead.ID) >= 0 {
		return fmt.Errorf("%w: %s", app.ErrDuplicateID, lead.ID)
	}
	next := make([]domain.Lead, len(r.leads), len(r.leads)+1)
	copy(next, r.leads)
	r.leads = append(next, lead)
	return nil
}

// UpdateLead replaces the lead with the same id, keeping its position.
func (r *Repository) UpdateLead(_ context.Context, lead domain.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(lead.ID)
	if idx < 0 {
		return app.ErrNotFound
	}
	next := make([]domain.Lead, len(r.leads))
	copy(next, r.leads)
	next[idx] = lead
	r.leads = next
	return nil
}

func (r *Repository) indexOf(id string) int {
	for i, lead := range r.leads {
		if lead.ID == id {
			return i
		}
	}
	return -1
}
