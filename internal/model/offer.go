package model

import "time"

// OfferType distinguishes the rungs of a negotiation ladder.
type OfferType string

const (
	OfferInitial OfferType = "initial"
	OfferCounter OfferType = "counter"
	OfferFinal   OfferType = "final"
)

// OfferStatus is the lifecycle state of an offer row.
type OfferStatus string

const (
	OfferPending   OfferStatus = "pending"
	OfferCountered OfferStatus = "countered"
	OfferAccepted  OfferStatus = "accepted"
	OfferRejected  OfferStatus = "rejected"
	OfferExpired   OfferStatus = "expired"
)

// OfferTerms are the sweeteners attached to a defection offer.
type OfferTerms struct {
	ExclusiveResearch bool `json:"exclusive_research,omitempty"`
	GuaranteedFunding bool `json:"guaranteed_funding,omitempty"`
	LeadershipRole    bool `json:"leadership_role,omitempty"`
}

// OfferRecord is one rung of a defection negotiation. While the offer is
// pending its InfluenceOffered has already been deducted from the offering
// player (the rival on initial, the patron on counter) and sits in escrow.
type OfferRecord struct {
	ID               string         `json:"id"`
	Scholar          string         `json:"scholar"`
	TargetFaction    string         `json:"target_faction"`
	Rival            string         `json:"rival"`  // poaching player
	Patron           string         `json:"patron"` // current employer
	OfferType        OfferType      `json:"offer_type"`
	InfluenceOffered map[string]int `json:"influence_offered"`
	Terms            OfferTerms     `json:"terms"`
	Status           OfferStatus    `json:"status"`
	ParentOfferID    string         `json:"parent_offer_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	ResolvedAt       *time.Time     `json:"resolved_at,omitempty"`
}

// TotalOffered sums the escrowed influence across factions.
func (o *OfferRecord) TotalOffered() int {
	total := 0
	for _, amount := range o.InfluenceOffered {
		total += amount
	}
	return total
}

// Offerer is the player whose influence backs this offer.
func (o *OfferRecord) Offerer() string {
	if o.OfferType == OfferCounter {
		return o.Patron
	}
	return o.Rival
}
