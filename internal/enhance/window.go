package enhance

import (
	"sync"
	"time"
)

// FailureWindow tracks consecutive enhancement failures. The engine
// pauses command intake when failures have persisted past the
// configured timeout, and resumes on the first success.
type FailureWindow struct {
	mu         sync.Mutex
	firstFail  time.Time
	failCount  int
	lastDetail string
}

// RecordFailure notes a failed call. The window opens at the first
// failure and stays anchored there until a success closes it.
func (w *FailureWindow) RecordFailure(now time.Time, detail string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failCount == 0 {
		w.firstFail = now
	}
	w.failCount++
	w.lastDetail = detail
}

// RecordSuccess closes the window.
func (w *FailureWindow) RecordSuccess() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failCount = 0
	w.firstFail = time.Time{}
	w.lastDetail = ""
}

// ShouldPause reports whether failures have persisted past timeout.
func (w *FailureWindow) ShouldPause(now time.Time, timeout time.Duration) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failCount > 0 && now.Sub(w.firstFail) >= timeout
}

// Failing reports whether any failure is currently open, with the count
// and last error detail for diagnostics.
func (w *FailureWindow) Failing() (bool, int, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failCount > 0, w.failCount, w.lastDetail
}
