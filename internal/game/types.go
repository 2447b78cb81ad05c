// internal/game/types.go
//
// Core type definitions for the round state machine.
// Defines:
//   - State: the mutable progress of one player.
//   - Snapshot: the read-only projection handed to presentation layers.
//   - Reference: the dataset view the engine needs.

package game

import (
	"github.com/robalobadob/capitals/internal/countries"
)

// FirstLetter is the letter every new game starts on.
const FirstLetter byte = 'A'

// LastLetter is the final round; advancing past it ends the game.
const LastLetter byte = 'Z'

// Reference is the ordered dataset the engine matches against.
// *countries.Dataset implements it.
type Reference interface {
	// Lookup finds the entry whose normalized name equals the normalized
	// input. Names are unique after normalization.
	Lookup(name string) (countries.Entry, bool)
	Round(letter byte) []countries.Entry
}

// State holds a player's progress. Sets are keyed by the dataset's
// canonical entry name, never by the raw guess.
type State struct {
	Score         int16               // starts at 0; staying in int16 range is the caller's job
	Letter        byte                // 'A'..'Z'; 0 once the game is finished
	NamesFound    map[string]struct{} // current round only
	Revealed      bool                // remaining count exposed after a failed advance
	Hinted        map[string]struct{} // subset of NamesFound
	CapitalsFound map[string]string   // entry name -> capital
}

// NewState returns the state of a fresh game.
func NewState() State {
	return State{
		Letter:        FirstLetter,
		NamesFound:    map[string]struct{}{},
		Hinted:        map[string]struct{}{},
		CapitalsFound: map[string]string{},
	}
}

// Finished reports whether every round has been completed.
func (s State) Finished() bool { return s.Letter == 0 }

// Clone returns a deep copy.
func (s State) Clone() State {
	c := s
	c.NamesFound = make(map[string]struct{}, len(s.NamesFound))
	for k := range s.NamesFound {
		c.NamesFound[k] = struct{}{}
	}
	c.Hinted = make(map[string]struct{}, len(s.Hinted))
	for k := range s.Hinted {
		c.Hinted[k] = struct{}{}
	}
	c.CapitalsFound = make(map[string]string, len(s.CapitalsFound))
	for k, v := range s.CapitalsFound {
		c.CapitalsFound[k] = v
	}
	return c
}

// FoundEntry is one found country as shown to the player.
type FoundEntry struct {
	Name    string `json:"name"`
	Hinted  bool   `json:"hinted"`
	Capital string `json:"capital,omitempty"` // set once guessed
}

// Snapshot is a copy of the state fields the UI reads.
type Snapshot struct {
	Score    int          `json:"score"`
	Letter   string       `json:"letter"` // "" when finished
	Finished bool         `json:"finished"`
	Revealed bool         `json:"revealed"`
	Found    []FoundEntry `json:"found"` // provider order
	// FoundCount / Total drive the "3 / ?" indicator.
	FoundCount int `json:"foundCount"`
	Total      int `json:"total"` // -1 until revealed
}
