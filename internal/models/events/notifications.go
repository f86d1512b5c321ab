package events

import "time"

// EventRejected is published when a row reached the engine but its effect was
// skipped (insufficient funds, unknown transaction, client mismatch, locked
// account) or when the row could not be parsed at all.
type EventRejected struct {
	RunID      string    `json:"run_id"`
	Kind       string    `json:"kind,omitempty"`
	Client     uint32    `json:"client"`
	Tx         uint32    `json:"tx"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AccountFrozen is published when a chargeback lands and permanently locks an
// account.
type AccountFrozen struct {
	RunID      string    `json:"run_id"`
	Client     uint32    `json:"client"`
	Tx         uint32    `json:"tx"`
	OccurredAt time.Time `json:"occurred_at"`
}
