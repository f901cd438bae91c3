package domain

import "time"

// ChangeOperation describes one mutation of the lead collection.
type ChangeOperation string

// ChangeOperation values published by the service.
const (
	ChangeOperationCreate ChangeOperation = "create"
	ChangeOperationMove   ChangeOperation = "move"
)

// LeadEvent is published after every successful collection change.
type LeadEvent struct {
	Operation  ChangeOperation `json:"operation"`
	LeadID     string          `json:"lead_id"`
	FromStatus Status          `json:"from_status"`
	ToStatus   Status          `json:"to_status"`
	Lead       Lead            `json:"lead"`
	OccurredAt time.Time       `json:"occurred_at"`
}
