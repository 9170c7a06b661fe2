package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var baseTime = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func TestPlayerRoundTrip(t *testing.T) {
	s := openTest(t)

	p := &model.Player{
		ID:          "alice",
		DisplayName: "Alice",
		Reputation:  7,
		Influence:   map[string]int{"academia": 3, "the_crown": 1},
		Cooldowns:   map[string]int{"stake_my_career": 2},
	}
	require.NoError(t, s.UpsertPlayer(p))

	// Drop the cache so the read exercises the JSON columns.
	s.mu.Lock()
	s.players = map[string]*model.Player{}
	s.mu.Unlock()

	got, err := s.GetPlayer("alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 7, got.Reputation)
	assert.Equal(t, map[string]int{"academia": 3, "the_crown": 1}, got.Influence)
	assert.Equal(t, map[string]int{"stake_my_career": 2}, got.Cooldowns)

	missing, err := s.GetPlayer("nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestScholarRoundTrip(t *testing.T) {
	s := openTest(t)

	sc := &model.Scholar{
		ID:       "s.test",
		Name:     "Dr. Test",
		Memory:   model.NewMemory(0.95),
		Contract: model.Contract{Employer: "alice", Faction: "academia"},
	}
	sc.Memory.AdjustFeeling("alice", 2)
	require.NoError(t, s.SaveScholar(sc))

	s.mu.Lock()
	s.scholars = map[string]*model.Scholar{}
	s.mu.Unlock()

	got, err := s.GetScholar("s.test")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Contract.Employer)
	assert.InDelta(t, 2, got.Memory.Feeling("alice"), 0.001)

	byEmployer, err := s.ScholarsByEmployer("alice")
	require.NoError(t, err)
	require.Len(t, byEmployer, 1)

	require.NoError(t, s.DeleteScholar("s.test"))
	n, err := s.CountScholars()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDebtAccrualAndPartialPayment(t *testing.T) {
	s := openTest(t)

	require.NoError(t, s.AddDebt(baseTime, "alice", "academia", "seasonal", 4))
	require.NoError(t, s.AddDebt(baseTime.Add(time.Hour), "alice", "academia", "seasonal", 3))

	debts, err := s.DebtsByPlayer("alice", "seasonal")
	require.NoError(t, err)
	require.Len(t, debts, 1, "same (player, faction, source) accrues on one row")
	assert.Equal(t, 7, debts[0].Amount)

	paid, err := s.PayDebt("alice", "academia", "seasonal", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, paid)

	debts, err = s.DebtsByPlayer("alice", "seasonal")
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, 2, debts[0].Amount)

	// Overpaying clears the row and reports only what was owed.
	paid, err = s.PayDebt("alice", "academia", "seasonal", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, paid)

	debts, err = s.DebtsByPlayer("alice", "seasonal")
	require.NoError(t, err)
	assert.Empty(t, debts)

	// Paying a nonexistent debt is a no-op.
	paid, err = s.PayDebt("alice", "academia", "seasonal", 3)
	require.NoError(t, err)
	assert.Zero(t, paid)
}

func TestMarkReprisalBumpsLevel(t *testing.T) {
	s := openTest(t)

	require.NoError(t, s.AddDebt(baseTime, "bob", "industry", "contract", 6))
	debts, err := s.DebtsByPlayer("bob", "contract")
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Zero(t, debts[0].ReprisalLevel)
	assert.Nil(t, debts[0].LastReprisal)

	require.NoError(t, s.MarkReprisal(debts[0].ID, baseTime))
	debts, err = s.DebtsByPlayer("bob", "contract")
	require.NoError(t, err)
	assert.Equal(t, 1, debts[0].ReprisalLevel)
	require.NotNil(t, debts[0].LastReprisal)
	assert.True(t, debts[0].LastReprisal.Equal(baseTime))
}

func TestOrderQueueOrderingAndDue(t *testing.T) {
	s := openTest(t)

	later := baseTime.Add(48 * time.Hour)
	first, err := s.EnqueueOrder(baseTime, "sideways_vignette", "alice", "EXP-001", nil, nil)
	require.NoError(t, err)
	second, err := s.EnqueueOrder(baseTime.Add(time.Minute), "sideways_vignette", "bob", "EXP-002", nil, nil)
	require.NoError(t, err)
	scheduled, err := s.EnqueueOrder(baseTime.Add(2*time.Minute), "sideways_vignette", "carol", "EXP-003", nil, &later)
	require.NoError(t, err)

	// Nil scheduled_at is due immediately; the future row is not.
	due, err := s.DueOrders("sideways_vignette", baseTime.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, first.ID, due[0].ID, "dispatch follows created_at order")
	assert.Equal(t, second.ID, due[1].ID)

	due, err = s.DueOrders("sideways_vignette", later)
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.Equal(t, scheduled.ID, due[2].ID)

	// Completion removes the order from every pending view.
	require.NoError(t, s.UpdateOrderStatus(first.ID, model.OrderCompleted, "ok", baseTime))
	due, err = s.DueOrders("sideways_vignette", later)
	require.NoError(t, err)
	assert.Len(t, due, 2)

	got, err := s.GetOrder(first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCompleted, got.Status)
	assert.Equal(t, "ok", got.Result)
}

func TestCancelPendingByType(t *testing.T) {
	s := openTest(t)

	_, err := s.EnqueueOrder(baseTime, "evaluate_offer", "", "offer-1", nil, nil)
	require.NoError(t, err)
	_, err = s.EnqueueOrder(baseTime, "evaluate_offer", "", "offer-2", nil, nil)
	require.NoError(t, err)

	n, err := s.CancelPendingByType("evaluate_offer", "offer-1", "superseded by counter", baseTime)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pending, err := s.PendingOrdersByType("evaluate_offer")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "offer-2", pending[0].SubjectID)
}

func TestPressQueueLifecycle(t *testing.T) {
	s := openTest(t)

	rel := model.PressRelease{
		Type:     "editorial",
		Headline: "On The Matter Of Tides",
		Body:     "A considered view.",
		Metadata: map[string]any{"layered": true},
	}

	// A release time in the past is rejected outright.
	_, err := s.EnqueuePress(baseTime, rel, baseTime.Add(-time.Minute))
	require.Error(t, err)

	id, err := s.EnqueuePress(baseTime, rel, baseTime.Add(4*time.Hour))
	require.NoError(t, err)

	due, err := s.DueQueuedPress(baseTime.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = s.DueQueuedPress(baseTime.Add(5 * time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "On The Matter Of Tides", due[0].Release.Headline)
	assert.Equal(t, true, due[0].Release.Metadata["layered"])

	require.NoError(t, s.ClearQueuedPress(id))
	n, err := s.CountQueuedPress()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPressArchiveKeepsOrder(t *testing.T) {
	s := openTest(t)

	id1, err := s.RecordPress(baseTime, model.PressRelease{Type: "academic_bulletin", Headline: "No. 1"})
	require.NoError(t, err)
	id2, err := s.RecordPress(baseTime.Add(time.Minute), model.PressRelease{Type: "academic_bulletin", Headline: "No. 2"})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	records, err := s.PressArchive()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "No. 1", records[0].Release.Headline)
	assert.Equal(t, "No. 2", records[1].Release.Headline)
}

func TestEventIDsAreMonotone(t *testing.T) {
	s := openTest(t)

	var last int64
	for i := 0; i < 5; i++ {
		id, err := s.AppendEvent(baseTime, "test_action", map[string]any{"i": i})
		require.NoError(t, err)
		require.Greater(t, id, last)
		last = id
	}

	events, err := s.Events("test_action")
	require.NoError(t, err)
	assert.Len(t, events, 5)

	recent, err := s.RecentEvents(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Greater(t, recent[0].ID, recent[1].ID, "newest first")
}

func TestInTxRollsBackWritesAndCaches(t *testing.T) {
	s := openTest(t)

	p := &model.Player{ID: "alice", DisplayName: "Alice", Reputation: 5}
	require.NoError(t, s.UpsertPlayer(p))

	boom := fmt.Errorf("handler refused")
	err := s.InTx(func() error {
		p.Reputation = 9
		if err := s.UpsertPlayer(p); err != nil {
			return err
		}
		if err := s.UpsertPlayer(&model.Player{ID: "bob", DisplayName: "Bob"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The rollback undoes both rows and the cache follows the disk state.
	got, err := s.GetPlayer("alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 5, got.Reputation)

	missing, err := s.GetPlayer("bob")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestInTxCommitsOnSuccess(t *testing.T) {
	s := openTest(t)

	require.NoError(t, s.InTx(func() error {
		return s.UpsertPlayer(&model.Player{ID: "carol", DisplayName: "Carol", Reputation: 3})
	}))

	got, err := s.GetPlayer("carol")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Reputation)
}

func TestInTxNestsAsSavepoints(t *testing.T) {
	s := openTest(t)

	require.NoError(t, s.InTx(func() error {
		if err := s.UpsertPlayer(&model.Player{ID: "outer", DisplayName: "Outer"}); err != nil {
			return err
		}
		inner := s.InTx(func() error {
			if err := s.UpsertPlayer(&model.Player{ID: "inner", DisplayName: "Inner"}); err != nil {
				return err
			}
			return fmt.Errorf("inner refused")
		})
		require.Error(t, inner)
		return nil
	}))

	// The outer write commits; the failed inner one is unwound.
	got, err := s.GetPlayer("outer")
	require.NoError(t, err)
	assert.NotNil(t, got)

	missing, err := s.GetPlayer("inner")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAdvanceTimelineCarriesRemainder(t *testing.T) {
	s := openTest(t)

	require.NoError(t, s.InitTimeline(1766, baseTime))

	// Less than a full year elapses: nothing moves.
	years, current, err := s.AdvanceTimeline(baseTime.AddDate(0, 0, 200), 365)
	require.NoError(t, err)
	assert.Zero(t, years)
	assert.Equal(t, 1766, current)

	// 800 days is two years with 70 days of remainder; the anchor moves
	// by exactly 730 days so the remainder counts toward the next year.
	years, current, err = s.AdvanceTimeline(baseTime.AddDate(0, 0, 800), 365)
	require.NoError(t, err)
	assert.Equal(t, 2, years)
	assert.Equal(t, 1768, current)

	tl, err := s.GetTimeline()
	require.NoError(t, err)
	require.NotNil(t, tl)
	assert.True(t, tl.LastAdvanced.Equal(baseTime.AddDate(0, 0, 730)))

	// The 70 leftover days plus 295 more tip the third year.
	years, current, err = s.AdvanceTimeline(baseTime.AddDate(0, 0, 1095), 365)
	require.NoError(t, err)
	assert.Equal(t, 1, years)
	assert.Equal(t, 1769, current)
}
