package model

import "time"

// Mentorship statuses.
const (
	MentorshipPending   = "pending"
	MentorshipActive    = "active"
	MentorshipCompleted = "completed"
	MentorshipCancelled = "cancelled"
)

// Mentorship pairs a player with a scholar whose career they steer.
// A scholar has at most one active mentorship at a time.
type Mentorship struct {
	ID        int64       `json:"id"`
	Player    string      `json:"player"`
	Scholar   string      `json:"scholar"`
	StartedAt time.Time   `json:"started_at"`
	Status    string      `json:"status"`
	Track     CareerTrack `json:"track"`
}

// Conference is a public defense of a theory before a divided audience.
type Conference struct {
	Code            string            `json:"code"`
	Player          string            `json:"player"`
	TheoryID        int64             `json:"theory_id"`
	Confidence      Confidence        `json:"confidence"`
	Supporters      []string          `json:"supporters,omitempty"`
	Opposition      []string          `json:"opposition,omitempty"`
	Outcome         ExpeditionOutcome `json:"outcome,omitempty"` // success / partial / failure
	ReputationDelta int               `json:"reputation_delta"`
	Result          map[string]any    `json:"result,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}
