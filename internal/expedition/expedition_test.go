package expedition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
	"github.com/tachyon-beep/jubilant-fortnight/internal/rng"
)

func record(expType model.ExpeditionType, depth model.PrepDepth, prep model.ExpeditionPrep) *model.ExpeditionRecord {
	return &model.ExpeditionRecord{
		Code:      "EXP-TEST",
		Player:    "alice",
		Type:      expType,
		PrepDepth: depth,
		Prep:      prep,
		Team:      []string{"s.one", "s.two"},
		Funding:   []string{"academia"},
	}
}

func TestResolveIsDeterministicPerSeed(t *testing.T) {
	a := NewResolver(rng.New(42))
	b := NewResolver(rng.New(42))
	for i := 0; i < 20; i++ {
		ra := a.Resolve(record(model.ExpeditionField, model.DepthStandard, model.ExpeditionPrep{}))
		rb := b.Resolve(record(model.ExpeditionField, model.DepthStandard, model.ExpeditionPrep{}))
		require.Equal(t, ra.Roll, rb.Roll)
		require.Equal(t, ra.Outcome, rb.Outcome)
	}
}

func TestFinalScoreIsRollPlusModifier(t *testing.T) {
	r := NewResolver(rng.New(7))
	prep := model.ExpeditionPrep{ThinkTankBonus: 3, ExpertiseBonus: 2}
	res := r.Resolve(record(model.ExpeditionField, model.DepthStandard, prep))
	assert.Equal(t, prep.Modifier(), res.Modifier)
	assert.Equal(t, res.Roll+res.Modifier, res.FinalScore)
}

func TestGradingRespectsBands(t *testing.T) {
	// Sweep many resolutions and check every grade against the field
	// bands at standard depth: <35 failure, <65 partial, <90 success.
	r := NewResolver(rng.New(99))
	sawFailure, sawSuccess := false, false
	for i := 0; i < 300; i++ {
		res := r.Resolve(record(model.ExpeditionField, model.DepthStandard, model.ExpeditionPrep{}))
		switch {
		case res.FinalScore < 35:
			require.Equal(t, model.OutcomeFailure, res.Outcome, "score %d", res.FinalScore)
			sawFailure = true
		case res.FinalScore < 65:
			require.Equal(t, model.OutcomePartial, res.Outcome, "score %d", res.FinalScore)
		case res.FinalScore < 90:
			require.Equal(t, model.OutcomeSuccess, res.Outcome, "score %d", res.FinalScore)
			sawSuccess = true
		default:
			require.Equal(t, model.OutcomeLandmark, res.Outcome, "score %d", res.FinalScore)
		}
	}
	assert.True(t, sawFailure)
	assert.True(t, sawSuccess)
}

func TestDepthShiftsTheBands(t *testing.T) {
	// Deep prep lowers every cutoff by 10: a think-tank score of 25
	// fails at shallow (cutoff 40) but clears partial at deep (20).
	deep := NewResolver(rng.New(1))
	shallow := NewResolver(rng.New(1))
	for i := 0; i < 300; i++ {
		rd := deep.Resolve(record(model.ExpeditionThinkTank, model.DepthDeep, model.ExpeditionPrep{}))
		rs := shallow.Resolve(record(model.ExpeditionThinkTank, model.DepthShallow, model.ExpeditionPrep{}))
		if rd.FinalScore >= 20 && rd.FinalScore < 30 {
			require.NotEqual(t, model.OutcomeFailure, rd.Outcome, "deep score %d", rd.FinalScore)
		}
		if rs.FinalScore < 40 {
			require.Equal(t, model.OutcomeFailure, rs.Outcome, "shallow score %d", rs.FinalScore)
		}
	}
}

func TestFailureCarriesDetailAndNoSideways(t *testing.T) {
	r := NewResolver(rng.New(13))
	for i := 0; i < 300; i++ {
		res := r.Resolve(record(model.ExpeditionGreatProject, model.DepthShallow, model.ExpeditionPrep{}))
		if res.Outcome == model.OutcomeFailure {
			assert.NotEmpty(t, res.FailureDetail)
			assert.Empty(t, res.SidewaysDiscovery)
			assert.Empty(t, res.SidewaysEffects)
			return
		}
	}
	t.Fatal("no failure observed in 300 shallow great projects")
}

func TestSidewaysEffectsAreWellFormed(t *testing.T) {
	r := NewResolver(rng.New(5))
	seen := 0
	for i := 0; i < 500 && seen < 20; i++ {
		res := r.Resolve(record(model.ExpeditionGreatProject, model.DepthDeep, model.ExpeditionPrep{ThinkTankBonus: 5}))
		if res.SidewaysDiscovery == "" {
			continue
		}
		seen++
		require.NotEmpty(t, res.SidewaysEffects)
		require.LessOrEqual(t, len(res.SidewaysEffects), 2)
		for _, eff := range res.SidewaysEffects {
			require.NotEmpty(t, eff.Description)
			switch eff.Kind {
			case model.SidewaysFactionShift:
				assert.Equal(t, "academia", eff.Faction)
				assert.NotZero(t, eff.Amount)
			case model.SidewaysSpawnTheory:
				assert.NotEmpty(t, eff.Theory)
			case model.SidewaysCreateGrudge:
				assert.Contains(t, []string{"s.one", "s.two"}, eff.Scholar)
			case model.SidewaysQueueOrder:
				assert.Equal(t, model.OrderSidewaysVignette, eff.OrderType)
				assert.GreaterOrEqual(t, eff.DelayHours, 2)
				assert.LessOrEqual(t, eff.DelayHours, 12)
			case model.SidewaysReputationChange:
				assert.GreaterOrEqual(t, eff.Amount, 1)
				assert.LessOrEqual(t, eff.Amount, 2)
			case model.SidewaysUnlockOpportunity:
				assert.Equal(t, "followup:EXP-TEST", eff.Tag)
			default:
				t.Fatalf("unknown effect kind %q", eff.Kind)
			}
		}
	}
	require.NotZero(t, seen, "no sideways discoveries in 500 deep great projects")
}
