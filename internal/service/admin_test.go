package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

func TestPauseBlocksPlayHandlersOnly(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.player(t, "alice", nil)

	require.NoError(t, h.svc.PauseGame("warden", "maintenance"))
	paused, reason := h.svc.Paused()
	assert.True(t, paused)
	assert.Equal(t, "maintenance", reason)

	assert.Equal(t, KindInvalidInput, KindOf(h.svc.PauseGame("warden", "again")))

	_, err := h.svc.SubmitTheory("alice", "A claim", "suspect", nil, "")
	assert.Equal(t, KindGamePaused, KindOf(err))
	_, err = h.svc.AdvanceDigest()
	assert.Equal(t, KindGamePaused, KindOf(err))

	// Admin operations keep working through the pause.
	_, err = h.svc.AdminAdjustReputation("warden", "alice", 2, "consolation")
	require.NoError(t, err)

	require.NoError(t, h.svc.ResumeGame("warden"))
	assert.Equal(t, KindInvalidInput, KindOf(h.svc.ResumeGame("warden")))

	_, err = h.svc.SubmitTheory("alice", "Back again", "suspect", nil, "")
	require.NoError(t, err)
}

func TestAdminAdjustmentsLeaveATrail(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.player(t, "alice", nil)

	value, err := h.svc.AdminAdjustReputation("warden", "alice", 3, "merit")
	require.NoError(t, err)
	assert.Equal(t, 3, value)

	value, err = h.svc.AdminAdjustInfluence("warden", "alice", "academia", 5, "grant")
	require.NoError(t, err)
	assert.Equal(t, 5, value)

	// The floor is zero, not debt; only the held amount comes back.
	value, err = h.svc.AdminAdjustInfluence("warden", "alice", "academia", -9, "clawback")
	require.NoError(t, err)
	assert.Equal(t, -5, value)
	p, err := h.svc.store.GetPlayer("alice")
	require.NoError(t, err)
	assert.Zero(t, p.Influence["academia"])

	// Reputation clamps to the configured range on the way down.
	value, err = h.svc.AdminAdjustReputation("warden", "alice", -100, "scandal")
	require.NoError(t, err)
	assert.Equal(t, -50, value)

	_, err = h.svc.AdminAdjustReputation("warden", "nobody", 1, "typo")
	assert.Equal(t, KindNotFound, KindOf(err))

	// Four ops, four entries in the public record.
	assert.Len(t, h.eventsOf(t, "admin_action"), 4)
	assert.Len(t, h.pressOfType(t, "admin_action"), 4)
}

func TestAdminCancelOrder(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.player(t, "alice", nil)
	h.scholar(t, "s.snub", model.IndependentEmployer, "academia")

	order, err := h.svc.store.EnqueueOrder(h.now, model.OrderRecruitmentGrudge, "alice", "s.snub", nil, nil)
	require.NoError(t, err)

	require.NoError(t, h.svc.AdminCancelOrder("warden", order.ID, "stale"))
	got, err := h.svc.store.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, got.Status)

	// Cancelled orders never reach the dispatcher.
	h.advance(time.Hour)
	report, err := h.svc.AdvanceDigest()
	require.NoError(t, err)
	assert.Zero(t, report.OrdersResolved)
	assert.Empty(t, h.eventsOf(t, "recruitment_grudge"))

	// Only pending orders can be withdrawn.
	assert.Equal(t, KindInvalidInput, KindOf(h.svc.AdminCancelOrder("warden", order.ID, "twice")))
	assert.Equal(t, KindNotFound, KindOf(h.svc.AdminCancelOrder("warden", "no-such-order", "typo")))
}

func TestAdminCancelExpedition(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.player(t, "alice", map[string]int{"academia": 5})

	_, err := h.svc.QueueExpedition("EXP-001", "alice", "think_tank", "A doomed survey",
		nil, nil, model.ExpeditionPrep{}, "standard", "suspect")
	require.NoError(t, err)

	require.NoError(t, h.svc.AdminCancelExpedition("warden", "EXP-001", "weather"))
	rec, err := h.svc.store.GetExpedition("EXP-001")
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeCancelled, rec.Outcome)

	// The digest leaves a cancelled expedition alone.
	h.advance(6 * time.Hour)
	report, err := h.svc.AdvanceDigest()
	require.NoError(t, err)
	assert.NotContains(t, report.ExpeditionCodes, "EXP-001")

	assert.Equal(t, KindInvalidInput, KindOf(h.svc.AdminCancelExpedition("warden", "EXP-001", "twice")))
	assert.Equal(t, KindNotFound, KindOf(h.svc.AdminCancelExpedition("warden", "EXP-404", "typo")))
}

func TestAdminUpdatesCommitmentAndProject(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.player(t, "alice", nil)

	c, err := h.svc.AdminCreateSeasonalCommitment("warden", "alice", "the_crown", "patron", 4)
	require.NoError(t, err)
	require.NoError(t, h.svc.AdminUpdateSeasonalCommitment("warden", c.ID, 2, model.CommitmentCancelled))
	got, err := h.svc.store.GetCommitment(c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.BaseCost)
	assert.Equal(t, model.CommitmentCancelled, got.Status)
	assert.Equal(t, KindInvalidInput,
		KindOf(h.svc.AdminUpdateSeasonalCommitment("warden", c.ID, 0, "mislaid")))

	proj, err := h.svc.AdminCreateFactionProject("warden", "The Grand Atlas", "libraries", 20)
	require.NoError(t, err)
	require.NoError(t, h.svc.AdminUpdateFactionProject("warden", proj.ID, 10, ""))
	gotProj, err := h.svc.store.GetProject(proj.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, gotProj.Target)

	_, err = h.svc.AdminCreateFactionProject("warden", "", "libraries", 20)
	assert.Equal(t, KindInvalidInput, KindOf(err))
}
