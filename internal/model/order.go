package model

import "time"

// Order statuses.
const (
	OrderPending   = "pending"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// Order kinds dispatched by the digest. Sidecast phases use the
// "followup:" prefix with the phase name appended.
const (
	OrderMentorshipActivation   = "mentorship_activation"
	OrderConferenceResolution   = "conference_resolution"
	OrderSymposiumVoteReminder  = "symposium_vote_reminder"
	OrderEvaluateOffer          = "evaluate_offer"
	OrderEvaluateCounter        = "evaluate_counter"
	OrderDefectionGrudge        = "defection_grudge"
	OrderDefectionReturn        = "defection_return"
	OrderRecruitmentGrudge      = "recruitment_grudge"
	OrderSidewaysVignette       = "sideways_vignette"
	OrderSymposiumReprimand     = "symposium_reprimand"
	OrderSidecastDebut          = "followup:sidecast_debut"
	OrderSidecastIntegration    = "followup:sidecast_integration"
	OrderSidecastSpotlight      = "followup:sidecast_spotlight"
)

// Order is one row of the unified follow-up queue.
type Order struct {
	ID          string         `json:"id"`
	OrderType   string         `json:"order_type"`
	ActorID     string         `json:"actor_id,omitempty"`
	SubjectID   string         `json:"subject_id,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
	Status      string         `json:"status"`
	ScheduledAt *time.Time     `json:"scheduled_at,omitempty"` // nil means due immediately
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	SourceTable string         `json:"source_table,omitempty"`
	SourceID    string         `json:"source_id,omitempty"`
	Result      string         `json:"result,omitempty"`
}
