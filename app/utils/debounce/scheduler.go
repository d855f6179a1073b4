package debounce

import (
	"sync"
	"time"
)

// Scheduler runs at most one pending callback. Scheduling again replaces the
// pending one and restarts the delay.
type Scheduler interface {
	Schedule(delay time.Duration, fn func())
	// Cancel drops the pending callback and reports whether there was one.
	Cancel() bool
	Pending() bool
}

type TimerScheduler struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

func (s *TimerScheduler) Schedule(delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		// a Stop that lost the race against the timer firing
		if gen != s.gen || s.timer == nil {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		fn()
	})
}

func (s *TimerScheduler) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer == nil {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	s.gen++
	return true
}

func (s *TimerScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Factory builds one scheduler per cart store.
type Factory func() Scheduler

func TimerFactory() Scheduler {
	return NewTimerScheduler()
}
