package curation

import "sync"

// Sequencer serializes mutations per entity key. A new mutation on the
// same key waits for the prior one to settle (success or failure)
// before applying, in arrival order, so rapid repeat gestures cannot
// complete out of order and lose updates. Different keys run freely in
// parallel.
type Sequencer struct {
	mu    sync.Mutex
	tails map[string]chan struct{}
}

func NewSequencer() *Sequencer {
	return &Sequencer{tails: make(map[string]chan struct{})}
}

// Do runs fn after every previously enqueued fn for key has returned.
func (s *Sequencer) Do(key string, fn func() error) error {
	s.mu.Lock()
	prev := s.tails[key]
	done := make(chan struct{})
	s.tails[key] = done
	s.mu.Unlock()

	if prev != nil {
		<-prev
	}

	defer func() {
		close(done)
		s.mu.Lock()
		if s.tails[key] == done {
			delete(s.tails, key)
		}
		s.mu.Unlock()
	}()

	return fn()
}
