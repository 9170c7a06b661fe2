package press

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

func TestAcademicBulletinNumbering(t *testing.T) {
	rel := AcademicBulletin(BulletinCtx{
		Number:     1,
		Player:     "alice",
		Theory:     "The tides answer to the moon",
		Confidence: model.ConfidenceCertain,
	})
	assert.Equal(t, TypeAcademicBulletin, rel.Type)
	assert.Equal(t, "Academic Bulletin No. 1", rel.Headline)
	assert.Contains(t, rel.Body, "The tides answer to the moon")
	assert.Equal(t, 1, rel.Metadata["bulletin"])
}

func TestDiscoveryAndRetractionCarryTheWager(t *testing.T) {
	report := DiscoveryReport(OutcomeCtx{
		Code:            "EXP-001",
		Player:          "alice",
		Outcome:         model.OutcomeSuccess,
		ReputationDelta: 5,
		Roll:            70,
		Modifier:        3,
		FinalScore:      73,
	})
	assert.Equal(t, TypeDiscoveryReport, report.Type)
	assert.Equal(t, 5, report.Metadata["reputation_delta"])
	assert.Equal(t, 73, report.Metadata["final_score"])

	retraction := RetractionNotice(OutcomeCtx{
		Code:            "EXP-002",
		Player:          "bob",
		Outcome:         model.OutcomeFailure,
		ReputationDelta: -7,
	})
	assert.Equal(t, TypeRetractionNotice, retraction.Type)
	assert.Equal(t, -7, retraction.Metadata["reputation_delta"])
}

func TestDefectionEpilogueScenarios(t *testing.T) {
	reconciled := DefectionEpilogue(DefectionCtx{
		Scholar:    "Dr. Vane",
		FormerHome: "alice",
		Scenario:   "reconciliation",
	})
	assert.Contains(t, reconciled.Body, "returned")

	grudge := DefectionEpilogue(DefectionCtx{
		Scholar:    "Dr. Vane",
		FormerHome: "alice",
		Scenario:   "grudge",
	})
	assert.Contains(t, grudge.Body, "past tense")
}

func TestSidewaysVignetteHeadlineFallback(t *testing.T) {
	withHeadline := SidewaysVignette(VignetteCtx{Headline: "Crates Impounded", Body: "b"})
	assert.Equal(t, "Crates Impounded", withHeadline.Headline)

	without := SidewaysVignette(VignetteCtx{Body: "b"})
	assert.Equal(t, "Dispatches From the Margins", without.Headline)
}

func TestAdminActionPress(t *testing.T) {
	rel := AdminAction("system", "Normal service resumes.")
	assert.Equal(t, TypeAdminAction, rel.Type)
	assert.Contains(t, rel.Body, "Normal service resumes.")
	assert.Equal(t, "system", rel.Metadata["actor"])
}

func TestTableTalkDigestListsPosts(t *testing.T) {
	rel := TableTalkDigest([]string{"first", "second", "third"})
	assert.Equal(t, TypeTableTalkDigest, rel.Type)
	assert.Contains(t, rel.Body, "first")
	assert.Contains(t, rel.Body, "third")
	assert.Equal(t, 3, rel.Metadata["count"])
}

func TestTimelineUpdatePluralises(t *testing.T) {
	one := TimelineUpdate(1, 1767)
	assert.Contains(t, one.Body, "a year")
	two := TimelineUpdate(2, 1768)
	assert.Contains(t, two.Body, "2 years")
	assert.Equal(t, "The Year Is Now 1768", two.Headline)
}
