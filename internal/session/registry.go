package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cinemind/internal/services"
)

// DefaultIdleTimeout is how long a registry keeps an untouched session.
const DefaultIdleTimeout = 2 * time.Hour

// Registry maps session IDs to their State. Sessions idle for longer than
// the idle timeout are dropped; expired sessions are swept when new ones are
// created.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]*State
	now       func() time.Time
	idle      time.Duration
	lastSweep time.Time
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithIdleTimeout sets the idle expiry. d <= 0 keeps sessions forever.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		r.idle = d
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions: make(map[string]*State),
		now:      func() time.Time { return time.Now().UTC() },
		idle:     DefaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.lastSweep = r.now()
	return r
}

// Create starts a session under a fresh random ID.
func (r *Registry) Create() *State {
	return r.Open(uuid.NewString())
}

// Get returns an existing, unexpired session and marks it active.
func (r *Registry) Get(id string) (*State, error) {
	id = strings.TrimSpace(id)
	now := r.now()
	r.mu.RLock()
	state, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok && r.expired(state, now) {
		r.remove(id, state)
		ok = false
	}
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "session", "get", fmt.Sprintf("session %q not found", id), nil)
	}
	state.touchAt(now)
	return state, nil
}

// Open returns the session for id, creating it on first access or after it
// expired. An empty id creates a session under a fresh ID.
func (r *Registry) Open(id string) *State {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	now := r.now()
	r.mu.RLock()
	state, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok && !r.expired(state, now) {
		state.touchAt(now)
		return state
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.sessions[id]; ok && !r.expired(state, now) {
		state.touchAt(now)
		return state
	}
	r.sweepLocked(now)
	state = &State{id: id, createdAt: now, lastSeen: now, now: r.now}
	r.sessions[id] = state
	return state
}

// Sweep drops every expired session and reports how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepNow(r.now())
}

// Len returns the number of sessions held, including expired ones not yet
// swept.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) expired(state *State, now time.Time) bool {
	return r.idle > 0 && now.Sub(state.LastSeen()) > r.idle
}

func (r *Registry) remove(id string, state *State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[id] == state {
		delete(r.sessions, id)
	}
}

// sweepLocked sweeps at most once per sweepInterval. mu must be held.
func (r *Registry) sweepLocked(now time.Time) {
	if r.idle <= 0 || now.Sub(r.lastSweep) < r.sweepInterval() {
		return
	}
	r.sweepNow(now)
}

func (r *Registry) sweepNow(now time.Time) int {
	r.lastSweep = now
	if r.idle <= 0 {
		return 0
	}
	removed := 0
	for id, state := range r.sessions {
		if r.expired(state, now) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *Registry) sweepInterval() time.Duration {
	return min(r.idle/4, time.Minute)
}
