package crm

import "sync"

// Store is the process-wide home of the two collections. State lives only for
// the lifetime of the process: it starts empty and is gone on exit. The mutex
// matters because the Telegram handlers and the ops HTTP listener touch the
// same store from different goroutines.
type Store struct {
	mu      sync.RWMutex
	inbox   []Profile
	results []CallResult
}

// NewStore returns an empty store. Construct one in main and inject it;
// nothing in this package holds global state.
func NewStore() *Store {
	return &Store{}
}

// AddProfile appends to the inbox and returns the new total. No dedup: the
// same contact submitted twice is queued twice.
func (s *Store) AddProfile(p Profile) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inbox = append(s.inbox, p)
	return len(s.inbox)
}

// ClearInbox empties the inbox and returns how many profiles were dropped.
// Safe on an already-empty inbox (returns 0).
func (s *Store) ClearInbox() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.inbox)
	s.inbox = nil
	return n
}

// ListInbox returns the queued profiles in insertion order. The slice is a
// copy; callers cannot mutate stored state through it.
func (s *Store) ListInbox() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Profile(nil), s.inbox...)
}

// InboxSize reports the current inbox length without copying.
func (s *Store) InboxSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.inbox)
}

// AddCallResult appends to the call-result log. There is deliberately no
// clear operation for results; the log only grows.
func (s *Store) AddCallResult(r CallResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
}

// Results returns a snapshot copy of the call-result log.
func (s *Store) Results() []CallResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]CallResult(nil), s.results...)
}

// Stats computes the aggregate statistics over the current log.
func (s *Store) Stats() CallStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeStats(s.results)
}
