package domain

import (
	"fmt"
	"strings"
)

// Status is one pipeline stage a lead occupies. The zero value is StatusNew.
type Status uint8

// The five pipeline stages in board order.
const (
	StatusNew Status = iota
	StatusContacted
	StatusNegotiating
	StatusWon
	StatusLost
)

// statusCount bounds the closed status set.
const statusCount = 5

// StatusColumn pairs one status with its board column title.
type StatusColumn struct {
	Status Status
	Title  string
}

var statusIDs = [statusCount]string{"new", "contacted", "negotiating", "won", "lost"}

var statusTitles = [statusCount]string{"New Leads", "Contacted", "Negotiating", "Won", "Lost"}

// Statuses returns the fixed, ordered column definitions for the board.
func Statuses() []StatusColumn {
	out := make([]StatusColumn, 0, statusCount)
	for i := range statusCount {
		out = append(out, StatusColumn{Status: Status(i), Title: statusTitles[i]})
	}
	return out
}

// ParseStatus resolves a status identifier such as "negotiating".
func ParseStatus(raw string) (Status, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for i, id := range statusIDs {
		if id == raw {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// Valid reports whether s is one of the five defined stages.
func (s Status) Valid() bool {
	return s < statusCount
}

// String returns the lowercase identifier.
func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("status(%d)", uint8(s))
	}
	return statusIDs[s]
}

// Title returns the board column title.
func (s Status) Title() string {
	if !s.Valid() {
		return s.String()
	}
	return statusTitles[s]
}

// MarshalText encodes the lowercase identifier.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, uint8(s))
	}
	return []byte(statusIDs[s]), nil
}

// UnmarshalText decodes a lowercase identifier.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
