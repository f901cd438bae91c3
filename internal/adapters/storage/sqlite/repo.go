package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/leadflow/internal/app"
	"github.com/hylla/leadflow/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository stores leads in a local sqlite database.
type Repository struct {
	db *sql.DB
}

// Open opens (and migrates) the database at path, creating its directory.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// each pooled connection would otherwise see its own empty database.
	db.SetMaxOpenConns(1)
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the schema.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS leads (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'new',
			source TEXT NOT NULL DEFAULT '',
			assigned_to TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status, seq);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// ListLeads lists every lead in insertion order.
func (r *Repository) ListLeads(ctx context.Context) ([]domain.Lead, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, phone, status, source, assigned_to, created_at
		FROM leads
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}

// GetLead returns one lead or app.ErrNotFound.
func (r *Repository) GetLead(ctx context.Context, id string) (domain.Lead, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, status, source, assigned_to, created_at
		FROM leads
		WHERE id = ?
	`, id)
	return scanLead(row)
}

// CreateLead appends a lead.
func (r *Repository) CreateLead(ctx context.Context, lead domain.Lead) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO leads(id, name, email, phone, status, source, assigned_to, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Status.String(),
		lead.Source,
		lead.AssignedTo,
		ts(lead.CreatedAt),
	)
	if isUniqueErr(err) {
		return fmt.Errorf("%w: %s", app.ErrDuplicateID, lead.ID)
	}
	return err
}

// UpdateLead replaces a lead in place, keeping its position.
func (r *Repository) UpdateLead(ctx context.Context, lead domain.Lead) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE leads
		SET name = ?, email = ?, phone = ?, status = ?, source = ?, assigned_to = ?, created_at = ?
		WHERE id = ?
	`,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Status.String(),
		lead.Source,
		lead.AssignedTo,
		ts(lead.CreatedAt),
		lead.ID,
	)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanLead decodes one leads row.
func scanLead(s scanner) (domain.Lead, error) {
	var (
		lead       domain.Lead
		statusRaw  string
		createdRaw string
	)
	err := s.Scan(&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &statusRaw, &lead.Source, &lead.AssignedTo, &createdRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lead{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, err
	}
	status, err := domain.ParseStatus(statusRaw)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("decode leads.status for %q: %w", lead.ID, err)
	}
	lead.Status = status
	lead.CreatedAt = parseTS(createdRaw)
	return lead, nil
}

// translateNoRows maps zero affected rows to app.ErrNotFound.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// isUniqueErr reports whether err is a unique-constraint violation.
func isUniqueErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
