// internal/session/manager.go
//
// Manager keeps live sessions in memory, keyed by session id.
// Sessions evicted after SESSION_TTL of inactivity are reopened from their
// stored save on the next request.

package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/capitals/internal/game"
	"github.com/robalobadob/capitals/internal/store"
)

// Manager is safe for concurrent use.
type Manager struct {
	ref game.Reference
	st  store.Store
	ttl time.Duration

	mu       sync.RWMutex        // guards sessions
	sessions map[string]*Session // keyed by Session.ID
}

// NewManager constructs a Manager. A zero ttl disables eviction.
func NewManager(ref game.Reference, st store.Store, ttl time.Duration) *Manager {
	return &Manager{ref: ref, st: st, ttl: ttl, sessions: make(map[string]*Session)}
}

// Create starts a session with a new random id.
func (m *Manager) Create(ctx context.Context) *Session {
	return m.Get(ctx, uuid.NewString())
}

// Get returns the live session for id, opening it from storage if needed.
func (m *Manager) Get(ctx context.Context, id string) *Session {
	// Touching under the manager lock keeps Sweep from evicting a session
	// between lookup and use.
	m.mu.RLock()
	s, ok := m.sessions[id]
	if ok {
		s.touch()
	}
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.touch()
		return s
	}
	s = Open(ctx, id, m.ref, m.st)
	m.sessions[id] = s
	return s
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle since before now-ttl and returns how many.
// Sessions with live subscribers stay.
func (m *Manager) Sweep(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.idle(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := m.Sweep(now); n > 0 {
				log.Debug().Int("evicted", n).Msg("swept idle sessions")
			}
		}
	}
}
