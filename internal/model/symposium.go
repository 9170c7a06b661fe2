package model

import "time"

// Symposium topic statuses. At most one topic is voting at a time.
const (
	TopicVoting   = "voting"
	TopicResolved = "resolved"
)

// SymposiumTopic is the question of the week.
type SymposiumTopic struct {
	ID          int64     `json:"id"`
	Date        time.Time `json:"date"`
	Topic       string    `json:"topic"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Winner      int       `json:"winner,omitempty"` // winning vote option, 0 until resolved
}

// Symposium proposal statuses.
const (
	ProposalPending  = "pending"
	ProposalSelected = "selected"
	ProposalResolved = "resolved"
	ProposalExpired  = "expired"
)

// SymposiumProposal is a player-suggested topic awaiting selection.
type SymposiumProposal struct {
	ID          int64     `json:"id"`
	Player      string    `json:"player"`
	Topic       string    `json:"topic"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	ExpireAt    time.Time `json:"expire_at"`
	Priority    float64   `json:"priority"`
	Status      string    `json:"status"`
}

// SymposiumVote records a player's pick among the three options.
type SymposiumVote struct {
	TopicID int64     `json:"topic_id"`
	Player  string    `json:"player"`
	Option  int       `json:"option"` // 1..3
	VotedAt time.Time `json:"voted_at"`
}

// Pledge statuses.
const (
	PledgePending   = "pending"
	PledgeFulfilled = "fulfilled"
	PledgeForfeited = "forfeited"
	PledgeWaived    = "waived"
	PledgeDebt      = "debt"
)

// SymposiumPledge is the influence a player stands to lose by not voting.
type SymposiumPledge struct {
	ID         int64      `json:"id"`
	TopicID    int64      `json:"topic_id"`
	Player     string     `json:"player"`
	Amount     int        `json:"amount"`
	Faction    string     `json:"faction"`
	Status     string     `json:"status"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// SymposiumParticipation tracks a player's attendance record and grace.
type SymposiumParticipation struct {
	Player            string     `json:"player"`
	MissStreak        int        `json:"miss_streak"`
	GraceWindowStart  *time.Time `json:"grace_window_start,omitempty"`
	GraceMissConsumed int        `json:"grace_miss_consumed"`
	LastVotedAt       *time.Time `json:"last_voted_at,omitempty"`
}
