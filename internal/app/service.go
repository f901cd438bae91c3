package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/leadflow/internal/domain"
)

// IDGenerator returns unique identifiers for new leads.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// ServiceConfig holds optional service collaborators.
type ServiceConfig struct {
	Publisher Publisher
	Logger    Logger
}

// Service owns the lead collection and its status-change protocol.
type Service struct {
	repo      Repository
	idGen     IDGenerator
	clock     Clock
	publisher Publisher
	logger    Logger
}

// MoveResult reports the outcome of one drop.
type MoveResult struct {
	Lead       domain.Lead   `json:"lead"`
	FromStatus domain.Status `json:"from_status"`
	Applied    bool          `json:"applied"`
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:      repo,
		idGen:     idGen,
		clock:     clock,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
	}
}

// ListLeads lists the full collection in insertion order.
func (s *Service) ListLeads(ctx context.Context) ([]domain.Lead, error) {
	return s.repo.ListLeads(ctx)
}

// Board lists the collection and partitions it by status.
func (s *Service) Board(ctx context.Context) ([]BoardColumn, error) {
	leads, err := s.repo.ListLeads(ctx)
	if err != nil {
		return nil, err
	}
	return Partition(leads), nil
}

// CreateLead validates the form input and appends a new lead in the new stage.
func (s *Service) CreateLead(ctx context.Context, in domain.LeadInput) (domain.Lead, error) {
	if err := domain.ValidateLeadInput(in); err != nil {
		return domain.Lead{}, err
	}
	lead, err := domain.NewLead(s.idGen(), in, s.clock())
	if err != nil {
		return domain.Lead{}, err
	}
	if err := s.repo.CreateLead(ctx, lead); err != nil {
		return domain.Lead{}, err
	}
	s.publish(ctx, domain.LeadEvent{
		Operation:  domain.ChangeOperationCreate,
		LeadID:     lead.ID,
		FromStatus: lead.Status,
		ToStatus:   lead.Status,
		Lead:       lead,
		OccurredAt: lead.CreatedAt,
	})
	return lead, nil
}

// MoveLead resolves one drop of leadID onto the status column. An unknown id is
// a no-op: the collection is left as is and Applied is false.
func (s *Service) MoveLead(ctx context.Context, leadID string, status domain.Status) (MoveResult, error) {
	if !status.Valid() {
		return MoveResult{}, domain.ErrInvalidStatus
	}
	leadID = strings.TrimSpace(leadID)
	if leadID == "" {
		return MoveResult{}, nil
	}
	lead, err := s.repo.GetLead(ctx, leadID)
	if errors.Is(err, ErrNotFound) {
		return MoveResult{}, nil
	}
	if err != nil {
		return MoveResult{}, err
	}
	from := lead.Status
	moved, err := lead.WithStatus(status)
	if err != nil {
		return MoveResult{}, err
	}
	if err := s.repo.UpdateLead(ctx, moved); err != nil {
		if errors.Is(err, ErrNotFound) {
			return MoveResult{}, nil
		}
		return MoveResult{}, err
	}
	s.publish(ctx, domain.LeadEvent{
		Operation:  domain.ChangeOperationMove,
		LeadID:     moved.ID,
		FromStatus: from,
		ToStatus:   moved.Status,
		Lead:       moved,
		OccurredAt: s.clock().UTC(),
	})
	return MoveResult{Lead: moved, FromStatus: from, Applied: true}, nil
}

// EnsureSeed inserts seed leads when the collection is empty and returns how many were added.
func (s *Service) EnsureSeed(ctx context.Context, seed []domain.Lead) (int, error) {
	existing, err := s.repo.ListLeads(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	return s.ImportLeads(ctx, seed)
}

// ImportLeads appends leads whose ids are not already present. Missing ids are
// generated and a zero CreatedAt is set to now.
func (s *Service) ImportLeads(ctx context.Context, leads []domain.Lead) (int, error) {
	existing, err := s.repo.ListLeads(ctx)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(existing)+len(leads))
	for _, lead := range existing {
		seen[lead.ID] = struct{}{}
	}
	now := s.clock().UTC()
	added := 0
	for idx, lead := range leads {
		lead.ID = strings.TrimSpace(lead.ID)
		if lead.ID == "" {
			lead.ID = s.idGen()
		}
		if lead.ID == "" {
			return added, fmt.Errorf("import lead %d: %w", idx, domain.ErrInvalidID)
		}
		if !lead.Status.Valid() {
			return added, fmt.Errorf("import lead %q: %w", lead.ID, domain.ErrInvalidStatus)
		}
		if strings.TrimSpace(lead.Name) == "" {
			return added, fmt.Errorf("import lead %q: name is required", lead.ID)
		}
		if _, ok := seen[lead.ID]; ok {
			continue
		}
		if lead.CreatedAt.IsZero() {
			lead.CreatedAt = now
		}
		lead.CreatedAt = lead.CreatedAt.UTC()
		if err := s.repo.CreateLead(ctx, lead); err != nil {
			return added, fmt.Errorf("import lead %q: %w", lead.ID, err)
		}
		seen[lead.ID] = struct{}{}
		added++
	}
	return added, nil
}

// publish forwards one event; failures are logged and never fail the mutation.
func (s *Service) publish(ctx context.Context, event domain.LeadEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("lead event publish failed", "operation", event.Operation, "lead_id", event.LeadID, "err", err)
	}
}
