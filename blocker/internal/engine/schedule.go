package engine

import (
	"sync"
	"time"
)

// scheduler runs delayed wake-ups. Timer callbacks never touch engine
// state: they post to a loop channel, and the loop does the work.
type scheduler struct {
	mu      sync.Mutex
	pending map[*time.Timer]struct{}
	stopped bool
}

func newScheduler() *scheduler {
	return &scheduler{pending: make(map[*time.Timer]struct{})}
}

// after posts to ch once d has elapsed. Posts coalesce: if ch already holds
// a wake-up the new one is dropped.
func (s *scheduler) after(d time.Duration, ch chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.pending, t)
		s.mu.Unlock()
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	s.pending[t] = struct{}{}
}

func (s *scheduler) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// stop cancels all pending wake-ups and refuses new ones.
func (s *scheduler) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for t := range s.pending {
		t.Stop()
	}
	clear(s.pending)
}
