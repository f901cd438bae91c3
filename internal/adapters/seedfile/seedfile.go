// Package seedfile reads and writes lead seed sets as YAML and board
// snapshots as JSON.
package seedfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/leadflow/internal/domain"
	"gopkg.in/yaml.v3"
)

// SnapshotVersion is the current export format version.
const SnapshotVersion = 1

// File is the YAML seed document.
type File struct {
	Leads []Entry `yaml:"leads"`
}

// Entry is one seeded lead.
type Entry struct {
	ID         string `yaml:"id,omitempty"`
	Name       string `yaml:"name"`
	Email      string `yaml:"email,omitempty"`
	Phone      string `yaml:"phone,omitempty"`
	Status     string `yaml:"status,omitempty"`
	Source     string `yaml:"source,omitempty"`
	AssignedTo string `yaml:"assigned_to,omitempty"`
	CreatedAt  string `yaml:"created_at,omitempty"`
}

// Snapshot is the JSON export document.
type Snapshot struct {
	Version    int           `json:"version"`
	ExportedAt time.Time     `json:"exported_at"`
	Leads      []domain.Lead `json:"leads"`
}

// Load reads a YAML seed file.
func Load(path string) ([]domain.Lead, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %q: %w", path, err)
	}
	leads, err := Decode(content)
	if err != nil {
		return nil, fmt.Errorf("decode seed file %q: %w", path, err)
	}
	return leads, nil
}

// Decode parses YAML seed content. Status defaults to new.
func Decode(content []byte) ([]domain.Lead, error) {
	var file File
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, err
	}
	out := make([]domain.Lead, 0, len(file.Leads))
	for idx, entry := range file.Leads {
		lead, err := entry.toDomain()
		if err != nil {
			return nil, fmt.Errorf("leads[%d]: %w", idx, err)
		}
		out = append(out, lead)
	}
	return out, nil
}

// Encode renders leads as a YAML seed document.
func Encode(leads []domain.Lead) ([]byte, error) {
	file := File{Leads: make([]Entry, 0, len(leads))}
	for _, lead := range leads {
		entry := Entry{
			ID:         lead.ID,
			Name:       lead.Name,
			Email:      lead.Email,
			Phone:      lead.Phone,
			Status:     lead.Status.String(),
			Source:     lead.Source,
			AssignedTo: lead.AssignedTo,
		}
		if !lead.CreatedAt.IsZero() {
			entry.CreatedAt = lead.CreatedAt.UTC().Format(time.RFC3339)
		}
		file.Leads = append(file.Leads, entry)
	}
	return yaml.Marshal(file)
}

// WriteSnapshot writes a JSON export of leads to w.
func WriteSnapshot(w io.Writer, leads []domain.Lead, now time.Time) error {
	if leads == nil {
		leads = []domain.Lead{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Snapshot{Version: SnapshotVersion, ExportedAt: now.UTC(), Leads: leads})
}

// ReadImport reads either a JSON snapshot or a YAML seed, chosen by extension.
func ReadImport(path string) ([]domain.Lead, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return Load(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file %q: %w", path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %q: %w", path, err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	return snap.Leads, nil
}

func (e Entry) toDomain() (domain.Lead, error) {
	if strings.TrimSpace(e.Name) == "" {
		return domain.Lead{}, errors.New("name is required")
	}
	status := domain.StatusNew
	if strings.TrimSpace(e.Status) != "" {
		parsed, err := domain.ParseStatus(e.Status)
		if err != nil {
			return domain.Lead{}, err
		}
		status = parsed
	}
	lead := domain.Lead{
		ID:         strings.TrimSpace(e.ID),
		Name:       e.Name,
		Email:      e.Email,
		Phone:      e.Phone,
		Status:     status,
		Source:     e.Source,
		AssignedTo: e.AssignedTo,
	}
	if raw := strings.TrimSpace(e.CreatedAt); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.Lead{}, fmt.Errorf("created_at: %w", err)
		}
		lead.CreatedAt = ts.UTC()
	}
	return lead, nil
}
