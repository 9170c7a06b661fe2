package press

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tachyon-beep/jubilant-fortnight/internal/catalog"
	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

func TestClassifyReputationBoundaries(t *testing.T) {
	cases := []struct {
		delta int
		want  Depth
	}{
		{10, DepthBreaking},
		{-10, DepthBreaking},
		{12, DepthBreaking},
		{9, DepthStandard},
		{-9, DepthStandard},
		{5, DepthStandard},
		{4, DepthMinimal},
		{0, DepthMinimal},
	}
	for _, tc := range cases {
		got := Classify(EventFacts{ReputationDelta: tc.delta})
		assert.Equal(t, tc.want, got, "delta %d", tc.delta)
	}
}

func TestClassifyExtensiveTriggers(t *testing.T) {
	assert.Equal(t, DepthExtensive, Classify(EventFacts{
		ExpeditionType: model.ExpeditionGreatProject,
		Outcome:        model.OutcomeSuccess,
	}))
	assert.Equal(t, DepthExtensive, Classify(EventFacts{Outcome: model.OutcomeLandmark}))
	assert.Equal(t, DepthExtensive, Classify(EventFacts{Kind: TypeDefectionNotice}))
	assert.Equal(t, DepthExtensive, Classify(EventFacts{Confidence: model.ConfidenceStakeMyCareer}))
	assert.Equal(t, DepthExtensive, Classify(EventFacts{FirstTime: true}))
}

func TestClassifyBreakingOutranksExtensive(t *testing.T) {
	got := Classify(EventFacts{
		ReputationDelta: 15,
		Outcome:         model.OutcomeLandmark,
	})
	assert.Equal(t, DepthBreaking, got)
}

func TestPlanCoverageShape(t *testing.T) {
	breaking := PlanCoverage(DepthBreaking)
	require.Len(t, breaking, 4)
	assert.Equal(t, TypeInvestigation, breaking[0].Type)
	assert.Equal(t, 15*time.Minute, breaking[0].Delay)
	assert.Equal(t, TypeAnalysis, breaking[3].Type)
	assert.Equal(t, 24*time.Hour, breaking[3].Delay)

	extensive := PlanCoverage(DepthExtensive)
	require.Len(t, extensive, 3)
	assert.Equal(t, TypeAcademicGossip, extensive[0].Type)

	standard := PlanCoverage(DepthStandard)
	require.Len(t, standard, 1)
	assert.Equal(t, time.Hour, standard[0].Delay)

	assert.Empty(t, PlanCoverage(DepthMinimal))
}

func TestPlanCoverageDelaysAscend(t *testing.T) {
	for _, depth := range []Depth{DepthBreaking, DepthExtensive, DepthStandard} {
		layers := PlanCoverage(depth)
		for i := 1; i < len(layers); i++ {
			assert.Greater(t, layers[i].Delay, layers[i-1].Delay, "depth %s", depth)
		}
	}
}

func TestRenderLayerCarriesFacts(t *testing.T) {
	facts := EventFacts{Player: "dr-alice", Subject: "EXP-001", ReputationDelta: -7}
	for _, l := range PlanCoverage(DepthBreaking) {
		rel := RenderLayer(l, facts)
		assert.Equal(t, l.Type, rel.Type)
		assert.NotEmpty(t, rel.Headline)
		assert.Equal(t, "dr-alice", rel.Metadata["player"])
		assert.Equal(t, true, rel.Metadata["layered"])
	}
}

func TestApplyTone(t *testing.T) {
	pack := &catalog.TonePack{
		Name: "gothic",
		Seeds: map[string]string{
			"default":           "candlelit",
			TypeAcademicGossip: "whispered",
		},
	}
	rel := model.PressRelease{Type: TypeAcademicGossip}
	ApplyTone(&rel, pack)
	assert.Equal(t, "whispered", rel.Metadata["tone_seed"])
	assert.Equal(t, "gothic", rel.Metadata["tone_pack"])

	other := model.PressRelease{Type: TypeEditorial}
	ApplyTone(&other, pack)
	assert.Equal(t, "candlelit", other.Metadata["tone_seed"])

	// Nil pack leaves the release untouched.
	bare := model.PressRelease{Type: TypeEditorial}
	ApplyTone(&bare, nil)
	assert.Nil(t, bare.Metadata)
}
