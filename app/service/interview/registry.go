package interview

import (
	"sync"

	"github.com/samber/do"
)

// Registry holds the per-session tracking records for the process lifetime.
// Each session carries its own mutex: turns for the same session are
// serialized, turns for different sessions are independent. Records are
// created lazily and never evicted; abandoned sessions simply stop being
// referenced.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu      sync.Mutex
	tracker *Tracker
}

func NewRegistry(_ *do.Injector) (*Registry, error) {
	return &Registry{
		sessions: make(map[string]*sessionEntry),
	}, nil
}

// Acquire returns the session's tracker with its lock held. The caller must
// invoke release once it is done mutating the tracker.
func (r *Registry) Acquire(sessionID string) (tracker *Tracker, release func()) {
	r.mu.Lock()
	entry, ok := r.sessions[sessionID]
	if !ok {
		entry = &sessionEntry{tracker: newTracker()}
		r.sessions[sessionID] = entry
	}
	r.mu.Unlock()

	entry.mu.Lock()
	return entry.tracker, entry.mu.Unlock
}
