// internal/savecode/savecode.go
//
// Save codes: a mid-round game.State packed into 15 bytes and written in
// base-58 (Bitcoin alphabet) so a player can copy it by hand.
//
// Layout (little-endian):
//
//	offset size field
//	0      2    score (int16)
//	2      1    round letter (ASCII 'A'..'Z')
//	3      4    names bitmap; bit 31 is the revealed flag
//	7      4    hinted bitmap
//	11     4    capitals bitmap
//
// Bit i of a bitmap refers to the i-th entry of the letter's round, in
// dataset order. A code therefore only decodes against the dataset version
// it was made with. Capitals found for countries of other letters have no
// bit and are not recorded.
//
// All three bitmaps use 31 bits; a round larger than MaxRoundSize is
// rejected on both sides.
package savecode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/robalobadob/capitals/internal/countries"
	"github.com/robalobadob/capitals/internal/game"
)

// Size is the length of a decoded save code.
const Size = 15

// MaxCodeLen bounds the text form; 15 bytes never need more than 21
// base-58 digits.
const MaxCodeLen = 22

const (
	revealedBit = uint32(1) << 31
	bitmapMask  = revealedBit - 1
)

var (
	ErrEmpty         = errors.New("savecode: empty code")
	ErrMalformed     = errors.New("savecode: not base-58")
	ErrLength        = errors.New("savecode: wrong length")
	ErrLetter        = errors.New("savecode: invalid letter")
	ErrRoundTooLarge = countries.ErrRoundTooLarge
	ErrUnknownEntry  = errors.New("savecode: found name is not part of the round")
	ErrInconsistent  = errors.New("savecode: bitmaps do not match the round")
)

// Rounds yields the letter-scoped entry list the bitmaps index into.
type Rounds interface {
	Round(letter byte) []countries.Entry
}

// Encode packs s. A finished game has no round to describe and encodes
// to "".
func Encode(ref Rounds, s game.State) (string, error) {
	if s.Finished() {
		return "", nil
	}
	round := ref.Round(s.Letter)
	if len(round) > countries.MaxRoundSize {
		return "", fmt.Errorf("%w: letter %c has %d entries", ErrRoundTooLarge, s.Letter, len(round))
	}
	index := make(map[string]uint, len(round))
	for i, e := range round {
		index[e.Name] = uint(i)
	}

	names, err := bitmapOf(index, keysOf(s.NamesFound))
	if err != nil {
		return "", err
	}
	if s.Revealed {
		names |= revealedBit
	}
	hinted, err := bitmapOf(index, keysOf(s.Hinted))
	if err != nil {
		return "", err
	}
	// Capitals may be found for countries of other letters; only the
	// round's own have a bit.
	var found uint32
	for i, e := range round {
		if _, ok := s.CapitalsFound[e.Name]; ok {
			found |= 1 << uint(i)
		}
	}

	var b [Size]byte
	binary.LittleEndian.PutUint16(b[0:2], uint16(s.Score))
	b[2] = s.Letter
	binary.LittleEndian.PutUint32(b[3:7], names)
	binary.LittleEndian.PutUint32(b[7:11], hinted)
	binary.LittleEndian.PutUint32(b[11:15], found)
	return base58.Encode(b[:]), nil
}

// Decode unpacks a code produced by Encode against the same dataset.
// Lowercase letters from older codes are accepted.
func Decode(ref Rounds, code string) (game.State, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return game.State{}, ErrEmpty
	}
	if len(code) > MaxCodeLen {
		return game.State{}, fmt.Errorf("%w: %d characters", ErrLength, len(code))
	}
	b, err := base58.Decode(code)
	if err != nil {
		return game.State{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(b) != Size {
		return game.State{}, fmt.Errorf("%w: got %d bytes", ErrLength, len(b))
	}

	letter := b[2]
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	if letter < game.FirstLetter || letter > game.LastLetter {
		return game.State{}, fmt.Errorf("%w: %#x", ErrLetter, b[2])
	}
	round := ref.Round(letter)
	if len(round) > countries.MaxRoundSize {
		return game.State{}, fmt.Errorf("%w: letter %c has %d entries", ErrRoundTooLarge, letter, len(round))
	}

	rawNames := binary.LittleEndian.Uint32(b[3:7])
	names := rawNames & bitmapMask
	hinted := binary.LittleEndian.Uint32(b[7:11])
	found := binary.LittleEndian.Uint32(b[11:15])

	valid := uint32(1)<<uint(len(round)) - 1
	if names&^valid != 0 || hinted&^valid != 0 || found&^valid != 0 {
		return game.State{}, fmt.Errorf("%w: bits beyond %d entries", ErrInconsistent, len(round))
	}
	if hinted&^names != 0 {
		return game.State{}, fmt.Errorf("%w: hinted names not found", ErrInconsistent)
	}

	s := game.NewState()
	s.Score = int16(binary.LittleEndian.Uint16(b[0:2]))
	s.Letter = letter
	s.Revealed = rawNames&revealedBit != 0
	for i, e := range round {
		bit := uint32(1) << uint(i)
		if names&bit != 0 {
			s.NamesFound[e.Name] = struct{}{}
		}
		if hinted&bit != 0 {
			s.Hinted[e.Name] = struct{}{}
		}
		if found&bit != 0 {
			s.CapitalsFound[e.Name] = e.Capital
		}
	}
	return s, nil
}

func keysOf(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

func bitmapOf(index map[string]uint, names []string) (uint32, error) {
	var bm uint32
	for _, name := range names {
		i, ok := index[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownEntry, name)
		}
		bm |= 1 << i
	}
	return bm, nil
}
