package tracker

import (
	"sort"
	"sync"
)

// Registry is the process-wide mapping from container scope to its session.
//
// Entries are replaced unconditionally by a new start or a completed restore
// (last writer wins, no merge) and are never evicted. The registry is injected
// into handlers rather than accessed as ambient state.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Put installs a session under its key, replacing any prior entry.
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.Key] = s
}

// Get returns the session registered for a scope.
func (r *Registry) Get(key string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[key]
	return s, ok
}

// Scopes returns the registered scope keys sorted for stable iteration.
func (r *Registry) Scopes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.sessions))
	for key := range r.sessions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
