package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

func TestDigestTopsUpRosterToFloor(t *testing.T) {
	h := newHarness(t, nil, nil)

	all, err := h.svc.store.AllScholars()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(all), h.svc.cfg.Roster.Min)
	for _, sc := range all[:3] {
		require.NoError(t, h.svc.store.DeleteScholar(sc.ID))
	}

	h.advance(time.Hour)
	_, err = h.svc.AdvanceDigest()
	require.NoError(t, err)

	count, err := h.svc.store.CountScholars()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, h.svc.cfg.Roster.Min)
	assert.NotEmpty(t, h.eventsOf(t, "scholar_generated"))
}

func TestDigestRetiresSurplusScholars(t *testing.T) {
	h := newHarness(t, nil, nil)

	count, err := h.svc.store.CountScholars()
	require.NoError(t, err)
	for i := 0; count+i < h.svc.cfg.Roster.Max+5; i++ {
		h.scholar(t, fmt.Sprintf("s.extra-%02d", i), model.IndependentEmployer, "academia")
	}

	h.advance(time.Hour)
	_, err = h.svc.AdvanceDigest()
	require.NoError(t, err)

	count, err = h.svc.store.CountScholars()
	require.NoError(t, err)
	assert.Equal(t, h.svc.cfg.Roster.Max, count)
	assert.NotEmpty(t, h.eventsOf(t, "scholar_retired"))
}

func TestDispatcherRunsOrdersExactlyOnce(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.player(t, "alice", nil)
	h.scholar(t, "s.snub", model.IndependentEmployer, "academia")

	order, err := h.svc.store.EnqueueOrder(h.now, model.OrderRecruitmentGrudge, "alice", "s.snub", nil, nil)
	require.NoError(t, err)

	h.advance(time.Hour)
	report, err := h.svc.AdvanceDigest()
	require.NoError(t, err)
	assert.Equal(t, 1, report.OrdersResolved)
	require.Len(t, h.eventsOf(t, "recruitment_grudge"), 1)

	got, err := h.svc.store.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCompleted, got.Status)

	// A second beat leaves the completed order alone.
	h.advance(time.Hour)
	report, err = h.svc.AdvanceDigest()
	require.NoError(t, err)
	assert.Zero(t, report.OrdersResolved)
	assert.Len(t, h.eventsOf(t, "recruitment_grudge"), 1)
}

func TestDigestHonoursOrderSchedules(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.player(t, "alice", nil)
	h.scholar(t, "s.later", model.IndependentEmployer, "academia")

	at := h.now.Add(48 * time.Hour)
	_, err := h.svc.store.EnqueueOrder(h.now, model.OrderRecruitmentGrudge, "alice", "s.later", nil, &at)
	require.NoError(t, err)

	h.advance(time.Hour)
	report, err := h.svc.AdvanceDigest()
	require.NoError(t, err)
	assert.Zero(t, report.OrdersResolved)

	h.advance(48 * time.Hour)
	report, err = h.svc.AdvanceDigest()
	require.NoError(t, err)
	assert.Equal(t, 1, report.OrdersResolved)
}

func TestDigestReleasesScheduledPress(t *testing.T) {
	h := newHarness(t, nil, nil)

	rel := model.PressRelease{Type: "editorial", Headline: "A Considered View", Body: "In due course."}
	_, err := h.svc.store.EnqueuePress(h.now, rel, h.now.Add(2*time.Hour))
	require.NoError(t, err)

	// Not due yet.
	h.advance(time.Hour)
	report, err := h.svc.AdvanceDigest()
	require.NoError(t, err)
	assert.Zero(t, report.PressReleased)

	h.advance(2 * time.Hour)
	report, err = h.svc.AdvanceDigest()
	require.NoError(t, err)
	assert.Equal(t, 1, report.PressReleased)
	require.Len(t, h.pressOfType(t, "editorial"), 1)
	assert.NotEmpty(t, h.eventsOf(t, "scheduled_press_released"))

	n, err := h.svc.store.CountQueuedPress()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPausedDigestStillReleasesAdminNotices(t *testing.T) {
	h := newHarness(t, nil, nil)

	notice := model.PressRelease{Type: "admin_update", Headline: "House Notice", Body: "Maintenance tonight."}
	_, err := h.svc.store.EnqueuePress(h.now, notice, h.now.Add(time.Hour))
	require.NoError(t, err)
	editorial := model.PressRelease{Type: "editorial", Headline: "A Considered View", Body: "In due course."}
	_, err = h.svc.store.EnqueuePress(h.now, editorial, h.now.Add(time.Hour))
	require.NoError(t, err)

	h.advance(2 * time.Hour)
	require.NoError(t, h.svc.PauseGame("warden", "maintenance"))

	// The beat itself refuses while paused, but the due house notice
	// still escapes the queue; the editorial waits for the resume.
	_, err = h.svc.AdvanceDigest()
	assert.Equal(t, KindGamePaused, KindOf(err))

	require.Len(t, h.pressOfType(t, "admin_update"), 1)
	assert.Empty(t, h.pressOfType(t, "editorial"))
	assert.NotEmpty(t, h.eventsOf(t, "scheduled_press_released"))

	n, err := h.svc.store.CountQueuedPress()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, h.svc.ResumeGame("warden"))
	report, err := h.svc.AdvanceDigest()
	require.NoError(t, err)
	assert.Equal(t, 1, report.PressReleased)
	require.Len(t, h.pressOfType(t, "editorial"), 1)
}

func TestDigestDecaysScholarFeelings(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.player(t, "alice", nil)
	sc := h.scholar(t, "s.fond", "alice", "academia")
	sc.Memory.AdjustFeeling("alice", 4)
	require.NoError(t, h.svc.store.SaveScholar(sc))

	h.advance(time.Hour)
	_, err := h.svc.AdvanceDigest()
	require.NoError(t, err)

	got, err := h.svc.store.GetScholar("s.fond")
	require.NoError(t, err)
	assert.InDelta(t, 4*0.95, got.Memory.Feeling("alice"), 0.001)
}

func TestDigestTicksCooldowns(t *testing.T) {
	h := newHarness(t, nil, nil)
	p := h.player(t, "alice", nil)
	p.Cooldowns["recruitment"] = 2
	require.NoError(t, h.svc.store.UpsertPlayer(p))

	h.advance(time.Hour)
	_, err := h.svc.AdvanceDigest()
	require.NoError(t, err)

	got, err := h.svc.store.GetPlayer("alice")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Cooldowns["recruitment"])
}

func TestMentorshipActivatesAndProgresses(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.player(t, "alice", nil)
	h.scholar(t, "s.prot", "alice", "academia")

	_, err := h.svc.QueueMentorship("alice", "s.prot", string(model.TrackAcademia))
	require.NoError(t, err)

	// A second petition for the same scholar is refused while one is open.
	_, err = h.svc.QueueMentorship("alice", "s.prot", string(model.TrackAcademia))
	assert.Equal(t, KindInvalidInput, KindOf(err))

	h.advance(time.Hour)
	_, err = h.svc.AdvanceDigest()
	require.NoError(t, err)
	require.NotEmpty(t, h.eventsOf(t, "mentorship_activated"))

	sc, err := h.svc.store.GetScholar("s.prot")
	require.NoError(t, err)
	assert.Contains(t, sc.Contract.MentorshipHistory, "alice")

	// Three further beats at a tier earn the promotion.
	for i := 0; i < 3; i++ {
		h.advance(time.Hour)
		_, err = h.svc.AdvanceDigest()
		require.NoError(t, err)
	}
	sc, err = h.svc.store.GetScholar("s.prot")
	require.NoError(t, err)
	assert.NotEqual(t, model.CareerTiers[model.TrackAcademia][0], sc.Career.Tier)
}
