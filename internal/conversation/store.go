package conversation

import (
	"sync"
	"time"
)

type entry struct {
	state     *State
	updatedAt time.Time
}

// Store keeps one State per Telegram user id. All access goes through the
// store's mutex; LockUser additionally serializes whole handler invocations
// for a single user so step progression stays strictly ordered even when the
// transport delivers updates concurrently.
type Store struct {
	mu      sync.Mutex
	entries map[int64]*entry
	locks   map[int64]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		entries: make(map[int64]*entry),
		locks:   make(map[int64]*sync.Mutex),
	}
}

// Get returns the user's current state, or nil when no flow is active.
func (s *Store) Get(userID int64) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	if !ok {
		return nil
	}
	return e.state
}

// Set stores the state and refreshes its idle timestamp. Any previous flow's
// state is replaced.
func (s *Store) Set(userID int64, state *State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = &entry{state: state, updatedAt: time.Now()}
}

// Clear removes the user's state.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}

// LockUser acquires the per-user mutex and returns the unlock function.
func (s *Store) LockUser(userID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Sweep removes states idle longer than ttl and returns how many were
// dropped. This is the timeout path for drafts stuck in awaiting-payment.
func (s *Store) Sweep(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	removed := 0
	for userID, e := range s.entries {
		if e.updatedAt.Before(cutoff) {
			delete(s.entries, userID)
			removed++
		}
	}
	return removed
}
