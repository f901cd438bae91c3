package app

import "github.com/hylla/leadflow/internal/domain"

// DefaultSeed returns the built-in sample leads. CreatedAt is left zero so the
// importer stamps the startup time.
func DefaultSeed() []domain.Lead {
	return []domain.Lead{
		{
			ID:     "1",
			Name:   "John Smith",
			Email:  "john@example.com",
			Phone:  "(555) 123-4567",
			Status: domain.StatusNew,
			Source: "Facebook Ads",
		},
		{
			ID:         "2",
			Name:       "Sarah Johnson",
			Email:      "sarah@example.com",
			Phone:      "(555) 234-5678",
			Status:     domain.StatusContacted,
			Source:     "Google Ads",
			AssignedTo: "Alice Cooper",
		},
	}
}
