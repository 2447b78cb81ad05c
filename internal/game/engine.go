// internal/game/engine.go
//
// Round state machine for the letter-by-letter country quiz.
// Responsibilities:
//   - Match country and capital guesses through normalize.Key.
//   - Apply the five transitions: guess name, guess capital, advance, hint, reset.
//   - Notify subscribers after every transition that changed state.
//
// Rules:
//   - Every operation is total: a rejected call returns false (or does
//     nothing) and leaves the state untouched.
//   - Found name +1, found capital +1, hint −1, completing a round +2 unless
//     the round was revealed first.
//   - Hints always pick the first unfound entry of the round, in dataset order.
//
// A Game is not safe for concurrent use; callers serialize access.
package game

import (
	"github.com/robalobadob/capitals/internal/normalize"
)

// Game owns one State and the dataset it is played against.
type Game struct {
	ref       Reference
	state     State
	listeners map[int]func(Snapshot)
	nextID    int
}

// New constructs a game at the default state.
func New(ref Reference) *Game {
	return &Game{ref: ref, state: NewState(), listeners: map[int]func(Snapshot){}}
}

// State returns a deep copy of the current state.
func (g *Game) State() State { return g.state.Clone() }

// Subscribe registers fn to receive a snapshot after each state change.
// The returned func removes the subscription.
func (g *Game) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	id := g.nextID
	g.nextID++
	g.listeners[id] = fn
	return func() { delete(g.listeners, id) }
}

func (g *Game) notify() {
	if len(g.listeners) == 0 {
		return
	}
	snap := g.Snapshot()
	for _, fn := range g.listeners {
		fn(snap)
	}
}

// GuessName records a country of the current round.
func (g *Game) GuessName(input string) bool {
	if g.state.Finished() {
		return false
	}
	key := normalize.Key(input)
	if !normalize.HasLetter(key, normalize.Letter(g.state.Letter)) {
		return false
	}
	e, ok := g.ref.Lookup(input)
	if !ok {
		return false
	}
	if _, seen := g.state.NamesFound[e.Name]; seen {
		return false
	}
	g.state.NamesFound[e.Name] = struct{}{}
	g.state.Score++
	g.notify()
	return true
}

// GuessCapital records the capital of the named country. The country does
// not need to have been found first.
func (g *Game) GuessCapital(name, input string) bool {
	e, ok := g.ref.Lookup(name)
	if !ok {
		return false
	}
	if _, done := g.state.CapitalsFound[e.Name]; done {
		return false
	}
	if normalize.Key(input) != normalize.Key(e.Capital) {
		return false
	}
	g.state.CapitalsFound[e.Name] = e.Capital
	g.state.Score++
	g.notify()
	return true
}

// AdvanceRound moves to the next letter once every country of the round is
// found. Otherwise it reveals the round total and returns false.
func (g *Game) AdvanceRound() bool {
	if g.state.Finished() {
		return false
	}
	total := len(g.ref.Round(g.state.Letter))
	if len(g.state.NamesFound) != total {
		if !g.state.Revealed {
			g.state.Revealed = true
			g.notify()
		}
		return false
	}

	next := g.state.Letter + 1
	if g.state.Letter >= LastLetter {
		next = 0
	}
	if !g.state.Revealed {
		g.state.Score += 2
	}
	g.state.NamesFound = map[string]struct{}{}
	g.state.Hinted = map[string]struct{}{}
	g.state.CapitalsFound = map[string]string{}
	g.state.Revealed = false
	g.state.Letter = next
	g.notify()
	return true
}

// Hint gives away the first unfound country of the round at the cost of a
// point. With nothing left to give, it only sets Revealed.
func (g *Game) Hint() {
	if g.state.Finished() {
		return
	}
	for _, e := range g.ref.Round(g.state.Letter) {
		_, found := g.state.NamesFound[e.Name]
		_, hinted := g.state.Hinted[e.Name]
		if found || hinted {
			continue
		}
		g.state.NamesFound[e.Name] = struct{}{}
		g.state.Hinted[e.Name] = struct{}{}
		g.state.Score--
		g.notify()
		return
	}
	if !g.state.Revealed {
		g.state.Revealed = true
		g.notify()
	}
}

// Reset starts over from the first letter with a zero score.
func (g *Game) Reset() {
	g.state = NewState()
	g.notify()
}

// Restore replaces the whole state, e.g. after loading a save code.
func (g *Game) Restore(s State) {
	g.state = s.Clone()
	g.notify()
}

// Snapshot projects the current state for display.
func (g *Game) Snapshot() Snapshot {
	s := g.state
	snap := Snapshot{
		Score:      int(s.Score),
		Finished:   s.Finished(),
		Revealed:   s.Revealed,
		Found:      []FoundEntry{},
		FoundCount: len(s.NamesFound),
		Total:      -1,
	}
	if s.Finished() {
		return snap
	}
	snap.Letter = string(rune(s.Letter))
	round := g.ref.Round(s.Letter)
	for _, e := range round {
		if _, ok := s.NamesFound[e.Name]; !ok {
			continue
		}
		_, hinted := s.Hinted[e.Name]
		snap.Found = append(snap.Found, FoundEntry{Name: e.Name, Hinted: hinted, Capital: s.CapitalsFound[e.Name]})
	}
	if s.Revealed {
		snap.Total = len(round)
	}
	return snap
}
