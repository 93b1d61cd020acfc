package checkout

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type registryEntry struct {
	session  *Session
	lastUsed time.Time
}

// Registry keeps the open checkout of each BFF session. Checkouts idle for
// longer than the TTL are closed by Sweep.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*registryEntry
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewRegistry(ttl time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*registryEntry),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// Put stores s for id, closing any checkout it replaces.
func (r *Registry) Put(id string, s *Session) {
	r.mu.Lock()
	old := r.sessions[id]
	r.sessions[id] = &registryEntry{session: s, lastUsed: r.now()}
	r.mu.Unlock()

	if old != nil && old.session != s {
		old.session.Close()
	}
}

// Get returns the checkout for id and marks it used.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = r.now()
	return e.session, true
}

func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		e.session.Close()
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes idle checkouts and returns how many were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var idle []*Session
	for id, e := range r.sessions {
		if e.lastUsed.Before(cutoff) {
			idle = append(idle, e.session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	return len(idle)
}

// Run sweeps every interval until ctx is done, then closes every checkout.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Debug("evicted idle checkouts", "count", n)
			}
		}
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*registryEntry)
	r.mu.Unlock()

	for _, e := range sessions {
		e.session.Close()
	}
}
