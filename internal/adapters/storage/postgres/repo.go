// Package postgres stores leads in a shared PostgreSQL database through sqlx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/leadflow/internal/app"
	"github.com/hylla/leadflow/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Repository is a sqlx-backed lead store.
type Repository struct {
	db *sqlx.DB
}

// leadRow mirrors one leads row.
type leadRow struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Email      string    `db:"email"`
	Phone      string    `db:"phone"`
	Status     string    `db:"status"`
	Source     string    `db:"source"`
	AssignedTo string    `db:"assigned_to"`
	CreatedAt  time.Time `db:"created_at"`
}

// Open connects with dsn and migrates the schema.
func Open(ctx context.Context, dsn string) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := New(db)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// New wraps an existing connection without migrating.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Close closes the pool.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Migrate creates the leads table when missing.
func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS leads (
			seq BIGSERIAL PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'new',
			source TEXT NOT NULL DEFAULT '',
			assigned_to TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	return nil
}

// ListLeads lists every lead in insertion order.
func (r *Repository) ListLeads(ctx context.Context) ([]domain.Lead, error) {
	var rows []leadRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, email, phone, status, source, assigned_to, created_at
		FROM leads
		ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Lead, 0, len(rows))
	for _, row := range rows {
		lead, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, lead)
	}
	return out, nil
}

// GetLead returns one lead or app.ErrNotFound.
func (r *Repository) GetLead(ctx context.Context, id string) (domain.Lead, error) {
	var row leadRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, name, email, phone, status, source, assigned_to, created_at
		FROM leads
		WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lead{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, err
	}
	return row.toDomain()
}

// CreateLead appends a lead.
func (r *Repository) CreateLead(ctx context.Context, lead domain.Lead) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO leads (id, name, email, phone, status, source, assigned_to, created_at)
		VALUES (:id, :name, :email, :phone, :status, :source, :assigned_to, :created_at)`, fromDomain(lead))
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%w: %s", app.ErrDuplicateID, lead.ID)
	}
	return err
}

// UpdateLead replaces a lead in place.
func (r *Repository) UpdateLead(ctx context.Context, lead domain.Lead) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE leads
		SET name = :name, email = :email, phone = :phone, status = :status,
		    source = :source, assigned_to = :assigned_to, created_at = :created_at
		WHERE id = :id`, fromDomain(lead))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

func fromDomain(lead domain.Lead) leadRow {
	return leadRow{
		ID:         lead.ID,
		Name:       lead.Name,
		Email:      lead.Email,
		Phone:      lead.Phone,
		Status:     lead.Status.String(),
		Source:     lead.Source,
		AssignedTo: lead.AssignedTo,
		CreatedAt:  lead.CreatedAt.UTC(),
	}
}

func (row leadRow) toDomain() (domain.Lead, error) {
	status, err := domain.ParseStatus(row.Status)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("decode leads.status for %q: %w", row.ID, err)
	}
	return domain.Lead{
		ID:         row.ID,
		Name:       row.Name,
		Email:      row.Email,
		Phone:      row.Phone,
		Status:     status,
		Source:     row.Source,
		AssignedTo: row.AssignedTo,
		CreatedAt:  row.CreatedAt.UTC(),
	}, nil
}
