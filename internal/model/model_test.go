package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReputationBoundsClamp(t *testing.T) {
	b := ReputationBounds{Min: -50, Max: 50}
	assert.Equal(t, -50, b.Clamp(-200))
	assert.Equal(t, 50, b.Clamp(99))
	assert.Equal(t, 7, b.Clamp(7))
}

func TestInfluenceCapFollowsReputation(t *testing.T) {
	p := NewPlayer("alice", "Alice")
	assert.Equal(t, 10, p.InfluenceCap(10, 1))

	p.Reputation = 5
	assert.Equal(t, 15, p.InfluenceCap(10, 1))

	// Deep disgrace cannot push the ceiling below zero.
	p.Reputation = -50
	assert.Zero(t, p.InfluenceCap(10, 1))
}

func TestAdjustInfluenceReportsApplied(t *testing.T) {
	p := NewPlayer("alice", "Alice")

	assert.Equal(t, 5, p.AdjustInfluence("academia", 5, 10))
	// Clamped at the cap: only the headroom is applied.
	assert.Equal(t, 5, p.AdjustInfluence("academia", 8, 10))
	assert.Equal(t, 10, p.Influence["academia"])
	// And at the floor: only the held amount comes off.
	assert.Equal(t, -10, p.AdjustInfluence("academia", -14, 10))
	assert.Zero(t, p.Influence["academia"])
}

func TestSpendInfluenceNeverOverdraws(t *testing.T) {
	p := NewPlayer("alice", "Alice")
	p.Influence["academia"] = 3

	assert.False(t, p.SpendInfluence("academia", 4))
	assert.Equal(t, 3, p.Influence["academia"], "a refused spend leaves the holding alone")
	assert.False(t, p.SpendInfluence("academia", -1))
	assert.True(t, p.SpendInfluence("academia", 3))
	assert.Zero(t, p.Influence["academia"])
}

func TestTickCooldownsDropsExpired(t *testing.T) {
	p := NewPlayer("alice", "Alice")
	p.Cooldowns["recruitment"] = 2
	p.Cooldowns["stake_my_career"] = 1

	p.TickCooldowns()
	assert.Equal(t, 1, p.Cooldowns["recruitment"])
	_, present := p.Cooldowns["stake_my_career"]
	assert.False(t, present)
}

func TestDominantFactionBreaksTiesAlphabetically(t *testing.T) {
	p := NewPlayer("alice", "Alice")
	assert.Empty(t, p.DominantFaction())

	p.Influence["industry"] = 4
	p.Influence["academia"] = 4
	p.Influence["the_crown"] = 2
	assert.Equal(t, "academia", p.DominantFaction())
}

func TestDecayFeelingsSparesScars(t *testing.T) {
	m := NewMemory(0.95)
	m.AdjustFeeling("alice", 4)
	m.AdjustFeeling("bob", -0.01)
	m.AdjustFeeling("carol", 6)
	m.AddScar("carol")

	m.DecayFeelings()

	assert.InDelta(t, 4*0.95, m.Feeling("alice"), 1e-9)
	assert.InDelta(t, 6, m.Feeling("carol"), 1e-9, "scarred subjects do not fade")
	_, present := m.Feelings["bob"]
	assert.False(t, present, "feelings below the noise floor are forgotten")
}

func TestAddScarIgnoresDuplicates(t *testing.T) {
	m := NewMemory(0.95)
	m.AddScar("defection")
	m.AddScar("defection")
	assert.Len(t, m.Scars, 1)
	assert.True(t, m.HasScar("defection"))
	assert.False(t, m.HasScar("betrayal"))
}

func TestCareerLadder(t *testing.T) {
	c := Career{Track: TrackAcademia, Tier: "Postdoc"}
	assert.Equal(t, "Fellow", c.NextTier())
	assert.False(t, c.AtFinalTier())

	c.Tier = "Emeritus"
	assert.Empty(t, c.NextTier())
	assert.True(t, c.AtFinalTier())
}

func TestOfferHelpers(t *testing.T) {
	o := OfferRecord{
		Rival:            "bob",
		Patron:           "alice",
		OfferType:        OfferInitial,
		InfluenceOffered: map[string]int{"academia": 2, "industry": 3},
	}
	assert.Equal(t, 5, o.TotalOffered())
	assert.Equal(t, "bob", o.Offerer())

	o.OfferType = OfferCounter
	assert.Equal(t, "alice", o.Offerer(), "counters are backed by the patron")
}
