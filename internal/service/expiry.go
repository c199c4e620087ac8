package service

import (
	"sync"
	"time"

	"camshare/internal/registry"
)

// ExpiryScheduler revokes time-boxed grants when they run out. Each camera has
// at most one pending deadline; scheduling again replaces it. The revoke
// callback must not call back into the scheduler.
type ExpiryScheduler struct {
	mu      sync.Mutex
	timers  map[string]*expiryTimer
	revoke  func(cameraID string)
	now     func() time.Time
	stopped bool
}

type expiryTimer struct {
	timer    *time.Timer
	deadline time.Time
}

func NewExpiryScheduler(revoke func(cameraID string)) *ExpiryScheduler {
	return &ExpiryScheduler{
		timers: make(map[string]*expiryTimer),
		revoke: revoke,
		now:    time.Now,
	}
}

// Schedule arms the revoke callback for g. Grants without a deadline only
// cancel an earlier one.
func (s *ExpiryScheduler) Schedule(g registry.Grant) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(g.CameraID)
	if !g.TimeBoxed() || s.stopped {
		return
	}

	et := &expiryTimer{deadline: g.ExpiresAt}
	// revoke runs under s.mu; Cancel returns only after a running revoke.
	et.timer = time.AfterFunc(g.ExpiresAt.Sub(s.now()), func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		current, ok := s.timers[g.CameraID]
		if !ok || current != et {
			return
		}
		delete(s.timers, g.CameraID)
		s.revoke(g.CameraID)
	})
	s.timers[g.CameraID] = et
}

// Cancel drops the deadline for a camera, if any.
func (s *ExpiryScheduler) Cancel(cameraID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(cameraID)
}

func (s *ExpiryScheduler) cancelLocked(cameraID string) {
	if et, ok := s.timers[cameraID]; ok {
		et.timer.Stop()
		delete(s.timers, cameraID)
	}
}

// Deadline returns the pending expiry for a camera.
func (s *ExpiryScheduler) Deadline(cameraID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	et, ok := s.timers[cameraID]
	if !ok {
		return time.Time{}, false
	}
	return et.deadline, true
}

// Stop cancels every pending deadline; later Schedule calls are ignored.
func (s *ExpiryScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id := range s.timers {
		s.cancelLocked(id)
	}
}
