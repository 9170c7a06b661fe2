package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

func TestContractUpkeepChargesPerScholar(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.player(t, "alice", map[string]int{"academia": 3})
	h.scholar(t, "s.one", "alice", "academia")
	h.scholar(t, "s.two", "alice", "academia")

	require.NoError(t, h.svc.applyContractUpkeep(h.now))

	p, err := h.svc.store.GetPlayer("alice")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Influence["academia"])
	debts, err := h.svc.store.DebtsByPlayer("alice", model.DebtContract)
	require.NoError(t, err)
	assert.Empty(t, debts)
}

func TestContractUpkeepShortfallBecomesDebt(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.player(t, "alice", map[string]int{"academia": 1})
	h.scholar(t, "s.one", "alice", "academia")
	h.scholar(t, "s.two", "alice", "academia")
	h.scholar(t, "s.three", "alice", "academia")

	require.NoError(t, h.svc.applyContractUpkeep(h.now))

	p, err := h.svc.store.GetPlayer("alice")
	require.NoError(t, err)
	assert.Zero(t, p.Influence["academia"])
	debts, err := h.svc.store.DebtsByPlayer("alice", model.DebtContract)
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, 2, debts[0].Amount)
}

func TestProcessDebtsSettlesFromHoldings(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.player(t, "alice", map[string]int{"academia": 2})
	require.NoError(t, h.svc.store.AddDebt(h.now, "alice", "academia", model.DebtSeasonal, 3))

	reprisals, err := h.svc.processDebts(h.now)
	require.NoError(t, err)
	assert.Zero(t, reprisals, "a sub-threshold remainder draws no reprisal")

	p, err := h.svc.store.GetPlayer("alice")
	require.NoError(t, err)
	assert.Zero(t, p.Influence["academia"])
	debts, err := h.svc.store.DebtsByPlayer("alice", model.DebtSeasonal)
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, 1, debts[0].Amount)
}

func TestFesteringDebtDrawsReprisal(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.player(t, "alice", nil)
	// Seasonal reprisals trigger at 4 owed.
	require.NoError(t, h.svc.store.AddDebt(h.now, "alice", "academia", model.DebtSeasonal, 4))

	reprisals, err := h.svc.processDebts(h.now)
	require.NoError(t, err)
	assert.Equal(t, 1, reprisals)

	// No influence anywhere, so the reprisal lands on reputation.
	p, err := h.svc.store.GetPlayer("alice")
	require.NoError(t, err)
	assert.Equal(t, -1, p.Reputation)

	debts, err := h.svc.store.DebtsByPlayer("alice", model.DebtSeasonal)
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, 1, debts[0].ReprisalLevel)

	// The reprimand follow-up is on the docket.
	pending, err := h.svc.store.PendingOrdersByType(model.OrderSymposiumReprimand)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "alice", pending[0].ActorID)

	// Within the cooldown the same debt is left alone.
	reprisals, err = h.svc.processDebts(h.now.Add(24 * time.Hour))
	require.NoError(t, err)
	assert.Zero(t, reprisals)

	// Past the cooldown it escalates again.
	reprisals, err = h.svc.processDebts(h.now.Add(72 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, reprisals)
}

func TestSeasonalCommitmentChargesWithRest(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.player(t, "alice", map[string]int{"the_crown": 1})
	c, err := h.svc.AdminCreateSeasonalCommitment("warden", "alice", "the_crown", "patron", 4)
	require.NoError(t, err)

	require.NoError(t, h.svc.applySeasonalCommitments(h.now))

	// Cost 4 against a holding of 1: the shortfall accrues.
	p, err := h.svc.store.GetPlayer("alice")
	require.NoError(t, err)
	assert.Zero(t, p.Influence["the_crown"])
	debts, err := h.svc.store.DebtsByPlayer("alice", model.DebtSeasonal)
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, 3, debts[0].Amount)

	got, err := h.svc.store.GetCommitment(c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastProcessed)

	// A second sweep inside the rest interval charges nothing.
	require.NoError(t, h.svc.applySeasonalCommitments(h.now.Add(time.Hour)))
	debts, err = h.svc.store.DebtsByPlayer("alice", model.DebtSeasonal)
	require.NoError(t, err)
	assert.Equal(t, 3, debts[0].Amount)

	// Past the interval it charges again.
	require.NoError(t, h.svc.applySeasonalCommitments(h.now.Add(7 * time.Hour)))
	debts, err = h.svc.store.DebtsByPlayer("alice", model.DebtSeasonal)
	require.NoError(t, err)
	assert.Equal(t, 7, debts[0].Amount)
}

func TestSeasonalCommitmentDiscountForGoodRelations(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.player(t, "alice", map[string]int{"the_crown": 10})
	sc := h.scholar(t, "s.court", "alice", "the_crown")
	// A devoted scholar halves the charge: the discount floors at 0.5.
	sc.Memory.AdjustFeeling("alice", 10)
	require.NoError(t, h.svc.store.SaveScholar(sc))

	_, err := h.svc.AdminCreateSeasonalCommitment("warden", "alice", "the_crown", "patron", 4)
	require.NoError(t, err)
	require.NoError(t, h.svc.applySeasonalCommitments(h.now))

	p, err := h.svc.store.GetPlayer("alice")
	require.NoError(t, err)
	assert.Equal(t, 8, p.Influence["the_crown"])
}

func TestFactionProjectCompletesAndRewards(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.player(t, "alice", map[string]int{"industry": 8})

	proj, err := h.svc.AdminCreateFactionProject("warden", "The Grand Foundry", "industry", 1.5)
	require.NoError(t, err)

	require.NoError(t, h.svc.advanceFactionProjects(h.now))

	// 8 influence at 0.25 weight clears the 1.5 target in one sweep.
	got, err := h.svc.store.GetProject(proj.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectCompleted, got.Status)
	assert.GreaterOrEqual(t, got.Progress, got.Target)

	p, err := h.svc.store.GetPlayer("alice")
	require.NoError(t, err)
	assert.Equal(t, 10, p.Influence["industry"], "completion reward, capped")
	require.Len(t, h.pressOfType(t, "faction_project_complete"), 1)
}

func TestInvestInFactionWarmsItsScholars(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.player(t, "alice", map[string]int{"libraries": 6})
	h.scholar(t, "s.shelf", model.IndependentEmployer, "libraries")
	h.scholar(t, "s.other", model.IndependentEmployer, "academia")

	_, err := h.svc.InvestInFaction("alice", "libraries", 0, "reading rooms")
	assert.Equal(t, KindInvalidInput, KindOf(err))

	rel, err := h.svc.InvestInFaction("alice", "libraries", 4, "reading rooms")
	require.NoError(t, err)
	assert.Equal(t, "faction_investment", rel.Type)

	p, err := h.svc.store.GetPlayer("alice")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Influence["libraries"])

	// Two feeling steps of four points invested: +1.0 goodwill, faction
	// scholars only.
	warmed, err := h.svc.store.GetScholar("s.shelf")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, warmed.Memory.Feeling("alice"), 0.001)
	cold, err := h.svc.store.GetScholar("s.other")
	require.NoError(t, err)
	assert.Zero(t, cold.Memory.Feeling("alice"))

	_, err = h.svc.InvestInFaction("alice", "libraries", 5, "reading rooms")
	assert.Equal(t, KindInsufficientInfluence, KindOf(err))
}

func TestEndowArchiveServicesDebtsAndReputation(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.player(t, "alice", map[string]int{"academia": 10})
	require.NoError(t, h.svc.store.AddDebt(h.now, "alice", "industry", model.DebtSymposium, 3))
	require.NoError(t, h.svc.store.AddDebt(h.now, "alice", "the_crown", model.DebtSeasonal, 2))

	_, err := h.svc.EndowArchive("alice", "academia", 2, "the stacks")
	assert.Equal(t, KindInvalidInput, KindOf(err))

	rel, err := h.svc.EndowArchive("alice", "academia", 10, "the stacks")
	require.NoError(t, err)
	assert.Equal(t, "archive_endowment", rel.Type)

	p, err := h.svc.store.GetPlayer("alice")
	require.NoError(t, err)
	assert.Zero(t, p.Influence["academia"])
	assert.Equal(t, 1, p.Reputation, "ten donated at a threshold of ten")

	for _, source := range []string{model.DebtSymposium, model.DebtSeasonal} {
		debts, err := h.svc.store.DebtsByPlayer("alice", source)
		require.NoError(t, err)
		assert.Empty(t, debts, source)
	}
}
