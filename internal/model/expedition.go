package model

import "time"

// ExpeditionType determines costs, thresholds, and flavor.
type ExpeditionType string

const (
	ExpeditionThinkTank    ExpeditionType = "think_tank"
	ExpeditionField        ExpeditionType = "field"
	ExpeditionGreatProject ExpeditionType = "great_project"
)

// ValidExpeditionType reports whether the string names a known type.
func ValidExpeditionType(t string) bool {
	switch ExpeditionType(t) {
	case ExpeditionThinkTank, ExpeditionField, ExpeditionGreatProject:
		return true
	}
	return false
}

// PrepDepth shifts outcome thresholds rather than the roll itself.
type PrepDepth string

const (
	DepthShallow  PrepDepth = "shallow"
	DepthStandard PrepDepth = "standard"
	DepthDeep     PrepDepth = "deep"
)

// ValidPrepDepth reports whether the string names a known depth.
func ValidPrepDepth(d string) bool {
	switch PrepDepth(d) {
	case DepthShallow, DepthStandard, DepthDeep:
		return true
	}
	return false
}

// ExpeditionOutcome is the resolved result class.
type ExpeditionOutcome string

const (
	OutcomeFailure   ExpeditionOutcome = "failure"
	OutcomePartial   ExpeditionOutcome = "partial"
	OutcomeSuccess   ExpeditionOutcome = "success"
	OutcomeLandmark  ExpeditionOutcome = "landmark"
	OutcomeCancelled ExpeditionOutcome = "cancelled"
)

// ExpeditionPrep holds the four preparation modifiers. Friction values
// are stored as penalties and subtracted from the modifier sum.
type ExpeditionPrep struct {
	ThinkTankBonus    int `json:"think_tank_bonus"`
	ExpertiseBonus    int `json:"expertise_bonus"`
	SiteFriction      int `json:"site_friction"`
	PoliticalFriction int `json:"political_friction"`
}

// Modifier is the signed sum fed to the resolver.
func (p ExpeditionPrep) Modifier() int {
	return p.ThinkTankBonus + p.ExpertiseBonus - p.SiteFriction - p.PoliticalFriction
}

// SidewaysEffectKind tags the variant of a sideways consequence.
type SidewaysEffectKind string

const (
	SidewaysFactionShift      SidewaysEffectKind = "faction_shift"
	SidewaysSpawnTheory       SidewaysEffectKind = "spawn_theory"
	SidewaysCreateGrudge      SidewaysEffectKind = "create_grudge"
	SidewaysQueueOrder        SidewaysEffectKind = "queue_order"
	SidewaysReputationChange  SidewaysEffectKind = "reputation_change"
	SidewaysUnlockOpportunity SidewaysEffectKind = "unlock_opportunity"
)

// SidewaysEffect is one mechanical consequence of a non-failure outcome.
// Payload fields are populated per kind; Description is the human line
// that reaches the press.
type SidewaysEffect struct {
	Kind        SidewaysEffectKind `json:"kind"`
	Description string             `json:"description"`
	Faction     string             `json:"faction,omitempty"`
	Amount      int                `json:"amount,omitempty"`
	Scholar     string             `json:"scholar,omitempty"`
	Theory      string             `json:"theory,omitempty"`
	OrderType   string             `json:"order_type,omitempty"`
	DelayHours  int                `json:"delay_hours,omitempty"`
	Tag         string             `json:"tag,omitempty"`
}

// ExpeditionResult is the resolver's verdict.
type ExpeditionResult struct {
	Roll              int               `json:"roll"`
	Modifier          int               `json:"modifier"`
	FinalScore        int               `json:"final_score"`
	Outcome           ExpeditionOutcome `json:"outcome"`
	FailureDetail     string            `json:"failure_detail,omitempty"`
	SidewaysDiscovery string            `json:"sideways_discovery,omitempty"`
	SidewaysEffects   []SidewaysEffect  `json:"sideways_effects,omitempty"`
}

// ExpeditionRecord is the persisted row for a queued or resolved expedition.
type ExpeditionRecord struct {
	Code            string            `json:"code"`
	Timestamp       time.Time         `json:"timestamp"`
	Player          string            `json:"player"`
	Type            ExpeditionType    `json:"type"`
	Objective       string            `json:"objective"`
	Team            []string          `json:"team"`    // scholar ids
	Funding         []string          `json:"funding"` // faction names
	Prep            ExpeditionPrep    `json:"prep"`
	PrepDepth       PrepDepth         `json:"prep_depth"`
	Confidence      Confidence        `json:"confidence"`
	Outcome         ExpeditionOutcome `json:"outcome,omitempty"`
	ReputationDelta int               `json:"reputation_delta"`
	Result          *ExpeditionResult `json:"result,omitempty"`
}
