package model

import (
	"math"
	"time"
)

// CareerTrack is the ladder a mentored scholar climbs.
type CareerTrack string

const (
	TrackAcademia CareerTrack = "Academia"
	TrackIndustry CareerTrack = "Industry"
)

// CareerTiers lists the tiers of each track in ascending order.
var CareerTiers = map[CareerTrack][]string{
	TrackAcademia: {"Postdoc", "Fellow", "Professor", "Emeritus"},
	TrackIndustry: {"Associate", "Director", "Partner", "Luminary"},
}

// IndependentEmployer marks a scholar with no patron.
const IndependentEmployer = "Independent"

// ScholarStats are the six fixed attributes rolled at generation.
type ScholarStats struct {
	Talent      int `json:"talent"`
	Reliability int `json:"reliability"`
	Integrity   int `json:"integrity"`
	Theatrics   int `json:"theatrics"`
	Loyalty     int `json:"loyalty"`
	Risk        int `json:"risk"`
}

// Career tracks a scholar's progression under mentorship.
type Career struct {
	Track CareerTrack `json:"track"`
	Tier  string      `json:"tier"`
	Ticks int         `json:"ticks"` // digests spent at the current tier
}

// AtFinalTier reports whether the scholar has topped out their track.
func (c Career) AtFinalTier() bool {
	tiers := CareerTiers[c.Track]
	return len(tiers) > 0 && c.Tier == tiers[len(tiers)-1]
}

// NextTier returns the tier above the current one, or "" at the top.
func (c Career) NextTier() string {
	tiers := CareerTiers[c.Track]
	for i, t := range tiers {
		if t == c.Tier && i+1 < len(tiers) {
			return tiers[i+1]
		}
	}
	return ""
}

// Contract records a scholar's employment and shared history.
type Contract struct {
	Employer          string   `json:"employer"` // player id or Independent
	Faction           string   `json:"faction,omitempty"`
	MentorshipHistory []string `json:"mentorship_history,omitempty"` // player ids
	SidecastHistory   []string `json:"sidecast_history,omitempty"`   // sponsoring player ids
	ExpeditionLinks   []string `json:"expedition_links,omitempty"`   // expedition codes
}

// Scholar is a non-player academic with opinions, employment, and a memory.
type Scholar struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Seed        int64          `json:"seed"`
	Archetype   string         `json:"archetype"`
	Disciplines []string       `json:"disciplines"`
	Methods     []string       `json:"methods"`
	Drives      []string       `json:"drives"`
	Virtues     []string       `json:"virtues"`
	Vices       []string       `json:"vices"`
	Taboos      []string       `json:"taboos"`
	Stats       ScholarStats   `json:"stats"`
	Politics    map[string]int `json:"politics"` // faction → leaning
	Catchphrase string         `json:"catchphrase"`
	Memory      Memory         `json:"memory"`
	Career      Career         `json:"career"`
	Contract    Contract       `json:"contract"`
}

// Employed reports whether the scholar has a player patron.
func (s *Scholar) Employed() bool {
	return s.Contract.Employer != "" && s.Contract.Employer != IndependentEmployer
}

// MemoryFact records one notable experience.
type MemoryFact struct {
	Timestamp time.Time         `json:"timestamp"`
	Type      string            `json:"type"`
	Subject   string            `json:"subject"`
	Details   map[string]string `json:"details,omitempty"`
}

// Memory holds a scholar's facts, feelings toward subjects, and scars.
// Feelings decay each digest; scars are permanent tags exempt from decay.
type Memory struct {
	Facts    []MemoryFact       `json:"facts,omitempty"`
	Feelings map[string]float64 `json:"feelings,omitempty"` // subject → signed intensity
	Scars    []string           `json:"scars,omitempty"`
	Decay    float64            `json:"decay"` // multiplier in (0, 1]
}

// NewMemory creates an empty memory with the given decay factor.
func NewMemory(decay float64) Memory {
	return Memory{
		Feelings: make(map[string]float64),
		Decay:    decay,
	}
}

// RecordFact appends a fact to the memory stream.
func (m *Memory) RecordFact(f MemoryFact) {
	m.Facts = append(m.Facts, f)
}

// AdjustFeeling shifts the feeling toward a subject by delta.
func (m *Memory) AdjustFeeling(subject string, delta float64) {
	if m.Feelings == nil {
		m.Feelings = make(map[string]float64)
	}
	m.Feelings[subject] += delta
}

// Feeling returns the current feeling toward a subject (0 when unknown).
func (m *Memory) Feeling(subject string) float64 {
	return m.Feelings[subject]
}

// AddScar marks a permanent scar. Duplicate tags are ignored.
func (m *Memory) AddScar(tag string) {
	for _, s := range m.Scars {
		if s == tag {
			return
		}
	}
	m.Scars = append(m.Scars, tag)
}

// HasScar reports whether the scar tag is present.
func (m *Memory) HasScar(tag string) bool {
	for _, s := range m.Scars {
		if s == tag {
			return true
		}
	}
	return false
}

// DecayFeelings multiplies every non-scar feeling by the decay factor and
// drops feelings whose magnitude falls below 0.01. A feeling is scar-backed
// when the subject itself carries a scar tag; those are left untouched.
func (m *Memory) DecayFeelings() {
	for subject, feeling := range m.Feelings {
		if m.HasScar(subject) {
			continue
		}
		next := feeling * m.Decay
		if math.Abs(next) < 0.01 {
			delete(m.Feelings, subject)
		} else {
			m.Feelings[subject] = next
		}
	}
}
