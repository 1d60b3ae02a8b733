// Package history keeps the clips generated during the current session,
// newest first, together with the one selected for preview.
package history

import (
	"sync"

	"github.com/maauso/veo-studio/internal/video"
)

// Store is an append-only, insertion-ordered list of results. It is safe for
// concurrent use. The active result, when set, is always a member.
type Store struct {
	mu       sync.RWMutex
	results  []video.Result // newest first
	byID     map[string]int // id -> insertion sequence
	activeID string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{byID: make(map[string]int)}
}

// Record prepends result and makes it the active one.
func (s *Store) Record(result video.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append([]video.Result{result}, s.results...)
	s.byID[result.ID] = len(s.results) - 1
	s.activeID = result.ID
}

// Select makes the result with id active. It returns false and leaves the
// active result unchanged when id is unknown.
func (s *Store) Select(id string) (video.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.findLocked(id)
	if !ok {
		return video.Result{}, false
	}
	s.activeID = id
	return r, true
}

// Get returns the result with id.
func (s *Store) Get(id string) (video.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(id)
}

// Active returns the active result, if any.
func (s *Store) Active() (video.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeID == "" {
		return video.Result{}, false
	}
	return s.findLocked(s.activeID)
}

// ActiveID returns the identifier of the active result or "".
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// List returns a copy of all results, newest first.
func (s *Store) List() []video.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]video.Result, len(s.results))
	copy(out, s.results)
	return out
}

// Len returns the number of results.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

func (s *Store) findLocked(id string) (video.Result, bool) {
	seq, ok := s.byID[id]
	if !ok {
		return video.Result{}, false
	}
	// results is newest first, so insertion sequence seq sits at len-1-seq.
	return s.results[len(s.results)-1-seq], true
}
