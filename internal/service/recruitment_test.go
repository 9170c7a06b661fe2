package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
	"github.com/tachyon-beep/jubilant-fortnight/internal/scholars"
)

func TestRecruitmentChanceCooldownAndInfluence(t *testing.T) {
	h := newHarness(t, nil, nil)
	p := h.player(t, "alice", nil)
	sc := h.scholar(t, "s.free", model.IndependentEmployer, "academia")

	// A fresh player with no holdings attempts at the raw base.
	chance, err := h.svc.recruitmentChance(p, sc, "academia", 0.6)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, chance, 0.0001)

	// An active cooldown halves the base.
	p.Cooldowns["recruitment"] = 2
	chance, err = h.svc.recruitmentChance(p, sc, "academia", 0.6)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, chance, 0.0001)

	// Influence in the offered faction buys the odds back up.
	p.Cooldowns["recruitment"] = 0
	p.Influence["academia"] = 4
	chance, err = h.svc.recruitmentChance(p, sc, "academia", 0.6)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, chance, 0.0001)

	// But never past the ceiling.
	p.Influence["academia"] = 10
	chance, err = h.svc.recruitmentChance(p, sc, "academia", 0.6)
	require.NoError(t, err)
	assert.InDelta(t, 0.95, chance, 0.0001)
}

func TestRelationshipModifierIsBounded(t *testing.T) {
	h := newHarness(t, nil, nil)
	p := h.player(t, "alice", nil)
	sc := h.scholar(t, "s.fond", model.IndependentEmployer, "academia")

	// Warm feelings cap at +0.2 on their own.
	sc.Memory.AdjustFeeling("alice", 20)
	mod, err := h.svc.relationshipModifier(p, sc)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, mod, 0.0001)

	// A sidecast debt adds a little on top.
	sc.Contract.SidecastHistory = append(sc.Contract.SidecastHistory, "alice")
	mod, err = h.svc.relationshipModifier(p, sc)
	require.NoError(t, err)
	assert.InDelta(t, 0.22, mod, 0.0001)

	// Grudges cut the other way, floored at -0.2.
	sc.Contract.SidecastHistory = nil
	sc.Memory.AdjustFeeling("alice", -40)
	mod, err = h.svc.relationshipModifier(p, sc)
	require.NoError(t, err)
	assert.InDelta(t, -0.2, mod, 0.0001)
}

func TestRecruitmentOddsReportCooldown(t *testing.T) {
	h := newHarness(t, nil, nil)
	p := h.player(t, "alice", nil)
	h.scholar(t, "s.free", model.IndependentEmployer, "academia")

	p.Cooldowns["recruitment"] = 2
	require.NoError(t, h.svc.store.UpsertPlayer(p))

	odds, err := h.svc.RecruitmentOdds("alice", "s.free")
	require.NoError(t, err)
	require.Len(t, odds, len(scholars.Factions))
	for faction, odd := range odds {
		assert.True(t, odd.CooldownActive, faction)
		assert.Equal(t, 2, odd.CooldownRemaining, faction)
		assert.InDelta(t, 0.3, odd.Chance, 0.0001, faction)
	}
}

func TestAttemptRecruitmentAlwaysCosts(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.player(t, "alice", nil)
	h.scholar(t, "s.free", model.IndependentEmployer, "academia")

	rel, err := h.svc.AttemptRecruitment("alice", "s.free", "academia", 0.6)
	require.NoError(t, err)
	assert.Equal(t, "recruitment_report", rel.Type)

	// Win or lose, the attempt starts the cooldown and leaves a record.
	p, err := h.svc.store.GetPlayer("alice")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Cooldowns["recruitment"])
	events := h.eventsOf(t, "recruitment_attempt")
	require.Len(t, events, 1)
	require.Len(t, h.pressOfType(t, "recruitment_report"), 1)

	sc, err := h.svc.store.GetScholar("s.free")
	require.NoError(t, err)
	if events[0].Payload["success"] == true {
		assert.Equal(t, "alice", sc.Contract.Employer)
		assert.Equal(t, "academia", sc.Contract.Faction)
		assert.InDelta(t, 2, sc.Memory.Feeling("alice"), 0.0001)
		assert.Equal(t, 1, p.Influence["academia"], "a signing flatters the faction")
		require.Len(t, h.pressOfType(t, "recruitment_brief"), 1)
	} else {
		assert.False(t, sc.Employed())
		assert.InDelta(t, -1, sc.Memory.Feeling("alice"), 0.0001)
		grudges, err := h.svc.store.PendingOrdersByType(model.OrderRecruitmentGrudge)
		require.NoError(t, err)
		require.Len(t, grudges, 1)
		assert.Equal(t, "s.free", grudges[0].SubjectID)
	}
}

func TestAttemptRecruitmentValidation(t *testing.T) {
	h := newHarness(t, nil, nil)
	p := h.player(t, "alice", nil)
	h.scholar(t, "s.free", model.IndependentEmployer, "academia")

	_, err := h.svc.AttemptRecruitment("alice", "s.free", "", 0.6)
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = h.svc.AttemptRecruitment("alice", "s.ghost", "academia", 0.6)
	assert.Equal(t, KindNotFound, KindOf(err))

	// Reputation below the bar blocks the attempt entirely.
	p.Reputation = -10
	require.NoError(t, h.svc.store.UpsertPlayer(p))
	_, err = h.svc.AttemptRecruitment("alice", "s.free", "academia", 0.6)
	assert.Equal(t, KindThresholdNotMet, KindOf(err))
}
