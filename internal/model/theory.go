package model

import "time"

// Confidence is the wager a player attaches to a claim.
type Confidence string

const (
	ConfidenceSuspect       Confidence = "suspect"
	ConfidenceCertain       Confidence = "certain"
	ConfidenceStakeMyCareer Confidence = "stake_my_career"
)

// ValidConfidence reports whether the string names a known wager level.
func ValidConfidence(c string) bool {
	switch Confidence(c) {
	case ConfidenceSuspect, ConfidenceCertain, ConfidenceStakeMyCareer:
		return true
	}
	return false
}

// TheoryRecord is a submitted theory awaiting vindication or ruin.
type TheoryRecord struct {
	ID         int64      `json:"id"`
	Timestamp  time.Time  `json:"timestamp"`
	Player     string     `json:"player"`
	Theory     string     `json:"theory"`
	Confidence Confidence `json:"confidence"`
	Supporters []string   `json:"supporters,omitempty"` // scholar ids
	Deadline   string     `json:"deadline"`             // display string, date in practice
}
