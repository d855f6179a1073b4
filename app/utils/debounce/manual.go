package debounce

import (
	"sync"
	"time"
)

// ManualScheduler never fires on its own; Fire runs the pending callback.
// It stands in for a fake clock in tests.
type ManualScheduler struct {
	mu        sync.Mutex
	fn        func()
	lastDelay time.Duration
	scheduled int
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (m *ManualScheduler) Schedule(delay time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
	m.lastDelay = delay
	m.scheduled++
}

func (m *ManualScheduler) Cancel() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	had := m.fn != nil
	m.fn = nil
	return had
}

func (m *ManualScheduler) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fn != nil
}

// Fire runs the pending callback on the calling goroutine. It reports false
// when nothing was pending.
func (m *ManualScheduler) Fire() bool {
	m.mu.Lock()
	fn := m.fn
	m.fn = nil
	m.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

func (m *ManualScheduler) LastDelay() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastDelay
}

// Scheduled counts calls to Schedule, including ones later replaced.
func (m *ManualScheduler) Scheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scheduled
}
