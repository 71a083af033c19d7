package cart

import (
	"sync"
	"time"
)

// Factory builds a reconciler bound to one branch and session.
type Factory func(branchKey, sessionID string) *Reconciler

type registryEntry struct {
	rec       *Reconciler
	expiresAt time.Time
}

// Registry holds one reconciler per (branch, session) so per-line busy
// state spans requests. Entries expire after ttl of inactivity; expired
// entries are dropped lazily on access.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
	ttl     time.Duration
	factory Factory
}

func NewRegistry(ttl time.Duration, factory Factory) *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
		ttl:     ttl,
		factory: factory,
	}
}

// Get returns the session's reconciler, creating one when missing or
// expired. Access slides the expiry forward.
func (g *Registry) Get(branchKey, sessionID string) *Reconciler {
	key := branchKey + "/" + sessionID
	now := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if entry, ok := g.entries[key]; ok && now.Before(entry.expiresAt) {
		entry.expiresAt = now.Add(g.ttl)
		return entry.rec
	}

	for k, entry := range g.entries {
		if !now.Before(entry.expiresAt) {
			delete(g.entries, k)
		}
	}

	rec := g.factory(branchKey, sessionID)
	g.entries[key] = &registryEntry{rec: rec, expiresAt: now.Add(g.ttl)}
	return rec
}

// Len reports the number of live entries.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}
