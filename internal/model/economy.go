package model

import "time"

// Debt sources. Reprisal thresholds and cooldowns are configured per source.
const (
	DebtSymposium = "symposium"
	DebtContract  = "contract"
	DebtSeasonal  = "seasonal"
)

// InfluenceDebt is residual owed influence after a charge could not be
// fully paid. Reprisals escalate while the debt persists.
type InfluenceDebt struct {
	ID            int64      `json:"id"`
	Player        string     `json:"player"`
	Faction       string     `json:"faction"`
	Source        string     `json:"source"`
	Amount        int        `json:"amount"`
	ReprisalLevel int        `json:"reprisal_level"`
	LastReprisal  *time.Time `json:"last_reprisal_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Seasonal commitment statuses.
const (
	CommitmentActive    = "active"
	CommitmentCompleted = "completed"
	CommitmentCancelled = "cancelled"
)

// SeasonalCommitment is a recurring influence obligation to a faction.
type SeasonalCommitment struct {
	ID            string     `json:"id"`
	Player        string     `json:"player"`
	Faction       string     `json:"faction"`
	Tier          string     `json:"tier"`
	BaseCost      int        `json:"base_cost"`
	StartAt       time.Time  `json:"start_at"`
	EndAt         time.Time  `json:"end_at"`
	LastProcessed *time.Time `json:"last_processed_at,omitempty"`
	Status        string     `json:"status"`
}

// Faction project statuses.
const (
	ProjectActive    = "active"
	ProjectCompleted = "completed"
)

// FactionProject is a communal goal that accumulates player contributions.
type FactionProject struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Faction   string            `json:"faction"`
	Progress  float64           `json:"progress"`
	Target    float64           `json:"target"`
	Status    string            `json:"status"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// FactionInvestment is a direct influence sink into a faction program.
type FactionInvestment struct {
	ID        string    `json:"id"`
	Player    string    `json:"player"`
	Faction   string    `json:"faction"`
	Amount    int       `json:"amount"`
	Program   string    `json:"program"`
	CreatedAt time.Time `json:"created_at"`
}

// ArchiveEndowment funds the Gazette's archive; it also pays down the
// endowing player's symposium and seasonal debts.
type ArchiveEndowment struct {
	ID        string    `json:"id"`
	Player    string    `json:"player"`
	Faction   string    `json:"faction"`
	Amount    int       `json:"amount"`
	Program   string    `json:"program"`
	CreatedAt time.Time `json:"created_at"`
}

// Timeline is the singleton mapping real time onto in-fiction years.
type Timeline struct {
	CurrentYear  int       `json:"current_year"`
	LastAdvanced time.Time `json:"last_advanced"`
}

// Event is one append-only row of the event log.
type Event struct {
	ID        int64          `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Action    string         `json:"action"`
	Payload   map[string]any `json:"payload,omitempty"`
}
