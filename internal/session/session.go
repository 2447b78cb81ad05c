// internal/session/session.go
//
// A Session is one player's game plus its autosave.
// Responsibilities:
//   - Serialize transitions: one operation at a time per session.
//   - After every transition that changed state, write the save code under
//     "<id>/gameState". Failures are logged; the in-memory state is kept.
//   - Reset drops the stored save; a finished game also has no save.
//   - Load and export save codes for manual transfer between devices.

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/capitals/internal/game"
	"github.com/robalobadob/capitals/internal/savecode"
	"github.com/robalobadob/capitals/internal/store"
)

// SaveKey is the fixed storage key of a session's save code.
const SaveKey = "gameState"

// Session is safe for concurrent use.
type Session struct {
	ID string

	mu       sync.Mutex
	ref      game.Reference
	st       store.Store
	game     *game.Game
	dirty    bool
	lastSeen time.Time
	watchers int // live Subscribe callers
}

// Key returns the storage key for a session id.
func Key(id string) string { return id + "/" + SaveKey }

// Open restores the session's stored save, or starts a new game when there
// is none or it no longer decodes.
func Open(ctx context.Context, id string, ref game.Reference, st store.Store) *Session {
	s := &Session{ID: id, ref: ref, st: st, game: game.New(ref), lastSeen: time.Now()}
	s.game.Subscribe(func(game.Snapshot) { s.dirty = true })

	code, ok, err := st.Get(ctx, Key(id))
	switch {
	case err != nil:
		log.Warn().Err(err).Str("session", id).Msg("load save")
	case ok:
		state, err := savecode.Decode(ref, code)
		if err != nil {
			log.Warn().Err(err).Str("session", id).Msg("discarding unreadable save")
			break
		}
		s.game.Restore(state)
	}
	s.dirty = false
	return s
}

// do runs op under the session lock and saves if the state changed.
func (s *Session) do(ctx context.Context, op func(g *game.Game)) game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	s.dirty = false
	op(s.game)
	if s.dirty {
		s.persist(ctx)
	}
	return s.game.Snapshot()
}

// persist is fire-and-forget: errors are logged, never rolled back.
func (s *Session) persist(ctx context.Context) {
	s.dirty = false
	code, err := savecode.Encode(s.ref, s.game.State())
	if err != nil {
		log.Warn().Err(err).Str("session", s.ID).Msg("encode save")
		return
	}
	if code == "" {
		err = s.st.Remove(ctx, Key(s.ID))
	} else {
		err = s.st.Set(ctx, Key(s.ID), code)
	}
	if err != nil {
		log.Warn().Err(err).Str("session", s.ID).Msg("persist save")
	}
}

// GuessName submits a country for the current letter.
func (s *Session) GuessName(ctx context.Context, input string) (bool, game.Snapshot) {
	var ok bool
	snap := s.do(ctx, func(g *game.Game) { ok = g.GuessName(input) })
	return ok, snap
}

// GuessCapital submits the capital of name.
func (s *Session) GuessCapital(ctx context.Context, name, input string) (bool, game.Snapshot) {
	var ok bool
	snap := s.do(ctx, func(g *game.Game) { ok = g.GuessCapital(name, input) })
	return ok, snap
}

// AdvanceRound tries to move on to the next letter.
func (s *Session) AdvanceRound(ctx context.Context) (bool, game.Snapshot) {
	var ok bool
	snap := s.do(ctx, func(g *game.Game) { ok = g.AdvanceRound() })
	return ok, snap
}

// Hint reveals the next country of the round.
func (s *Session) Hint(ctx context.Context) game.Snapshot {
	return s.do(ctx, func(g *game.Game) { g.Hint() })
}

// Reset starts a new game and removes the stored save.
func (s *Session) Reset(ctx context.Context) game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	s.game.Reset()
	s.dirty = false
	if err := s.st.Remove(ctx, Key(s.ID)); err != nil {
		log.Warn().Err(err).Str("session", s.ID).Msg("remove save")
	}
	return s.game.Snapshot()
}

// Snapshot returns the current projection.
func (s *Session) Snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Snapshot()
}

// Serialize returns the current save code, or "" once the game is
// finished. A live game always yields a code or an error.
func (s *Session) Serialize() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return savecode.Encode(s.ref, s.game.State())
}

// Deserialize replaces the game with the one in code. An empty code means
// "no save" and starts a new game. An unreadable code returns the decode
// error and leaves the game untouched.
func (s *Session) Deserialize(ctx context.Context, code string) (game.Snapshot, error) {
	state, err := savecode.Decode(s.ref, code)
	if errors.Is(err, savecode.ErrEmpty) {
		return s.Reset(ctx), nil
	}
	if err != nil {
		return s.Snapshot(), err
	}
	return s.do(ctx, func(g *game.Game) { g.Restore(state) }), nil
}

// Subscribe forwards every state change to fn. fn runs under the session
// lock and must not block or call back into the session. A session with
// subscribers is never evicted by the Manager.
func (s *Session) Subscribe(fn func(game.Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancel := s.game.Subscribe(fn)
	s.watchers++
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			cancel()
			s.watchers--
			s.lastSeen = time.Now()
		})
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
}

// idle reports whether nobody has used or watched the session since cutoff.
func (s *Session) idle(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watchers == 0 && s.lastSeen.Before(cutoff)
}
