package enhance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowOpensOnFirstFailure(t *testing.T) {
	w := &FailureWindow{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	failing, count, _ := w.Failing()
	assert.False(t, failing)
	assert.Zero(t, count)

	w.RecordFailure(now, "timeout")
	failing, count, detail := w.Failing()
	assert.True(t, failing)
	assert.Equal(t, 1, count)
	assert.Equal(t, "timeout", detail)
}

func TestShouldPauseAfterTimeout(t *testing.T) {
	w := &FailureWindow{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	timeout := 10 * time.Minute

	w.RecordFailure(now, "503")
	assert.False(t, w.ShouldPause(now.Add(5*time.Minute), timeout))
	assert.True(t, w.ShouldPause(now.Add(10*time.Minute), timeout))
	assert.True(t, w.ShouldPause(now.Add(time.Hour), timeout))
}

func TestZeroTimeoutPausesImmediately(t *testing.T) {
	w := &FailureWindow{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	w.RecordFailure(now, "connection refused")
	assert.True(t, w.ShouldPause(now, 0))
}

func TestWindowAnchoredAtFirstFailure(t *testing.T) {
	w := &FailureWindow{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	timeout := 10 * time.Minute

	w.RecordFailure(now, "one")
	w.RecordFailure(now.Add(9*time.Minute), "two")
	// Later failures do not reset the clock.
	assert.True(t, w.ShouldPause(now.Add(10*time.Minute), timeout))

	_, count, detail := w.Failing()
	assert.Equal(t, 2, count)
	assert.Equal(t, "two", detail)
}

func TestSuccessClosesWindow(t *testing.T) {
	w := &FailureWindow{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	w.RecordFailure(now, "oops")
	w.RecordSuccess()
	failing, count, _ := w.Failing()
	assert.False(t, failing)
	assert.Zero(t, count)
	assert.False(t, w.ShouldPause(now.Add(time.Hour), 0))
}
