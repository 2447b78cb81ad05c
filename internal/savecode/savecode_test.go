package savecode

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/capitals/internal/countries"
	"github.com/robalobadob/capitals/internal/game"
)

func testDataset(t *testing.T) *countries.Dataset {
	t.Helper()
	d, err := countries.New([]countries.Entry{
		{Name: "Albania", Capital: "Tirana"},
		{Name: "Algeria", Capital: "Algiers"},
		{Name: "Bénin", Capital: "Porto-Novo"},
		{Name: "Burkina Faso", Capital: "Ouagadougou"},
		{Name: "Burundi", Capital: "Gitega"},
	})
	require.NoError(t, err)
	return d
}

func TestRoundTripReachableStates(t *testing.T) {
	t.Parallel()
	d := testDataset(t)

	tests := []struct {
		name string
		play func(g *game.Game)
	}{
		{"fresh", func(g *game.Game) {}},
		{"one found", func(g *game.Game) { g.GuessName("albania") }},
		{"revealed", func(g *game.Game) { g.GuessName("Algeria"); g.AdvanceRound() }},
		{"hinted", func(g *game.Game) { g.Hint() }},
		{"capital without name", func(g *game.Game) { g.GuessCapital("Algeria", "algiers") }},
		{"negative score", func(g *game.Game) { g.Hint(); g.Hint(); g.Hint() }},
		{"second round", func(g *game.Game) {
			g.GuessName("Albania")
			g.GuessName("Algeria")
			g.AdvanceRound()
			g.GuessName("benin")
			g.Hint()
			g.GuessCapital("Bénin", "Porto Novo")
			g.AdvanceRound()
		}},
		{"empty round", func(g *game.Game) {
			g.Hint()
			g.Hint()
			g.AdvanceRound()
			g.GuessName("burundi")
			g.Hint()
			g.Hint()
			g.AdvanceRound()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := game.New(d)
			tt.play(g)
			want := g.State()

			code, err := Encode(d, want)
			require.NoError(t, err)
			require.NotEmpty(t, code)

			got, err := Decode(d, code)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestEncodeLayout(t *testing.T) {
	t.Parallel()
	d := testDataset(t)

	s := game.NewState()
	s.Score = 1
	s.NamesFound["Albania"] = struct{}{}
	s.Revealed = true

	code, err := Encode(d, s)
	require.NoError(t, err)
	require.Equal(t, "2dD3YdL9a6Wpysykkwa7", code)

	raw, err := base58.Decode(code)
	require.NoError(t, err)
	require.Equal(t, []byte{
		0x01, 0x00,
		'A',
		0x01, 0x00, 0x00, 0x80,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}, raw)
}

func TestDecodeLegacyLowercaseLetter(t *testing.T) {
	t.Parallel()
	d := testDataset(t)

	// score -3, letter 'a', names {0,1}, hinted {1}, capitals {0}
	s, err := Decode(d, "879ofpTdUYY5AdPo9Frmu")
	require.NoError(t, err)
	require.EqualValues(t, -3, s.Score)
	require.Equal(t, byte('A'), s.Letter)
	require.False(t, s.Revealed)
	require.Len(t, s.NamesFound, 2)
	require.Equal(t, map[string]struct{}{"Algeria": {}}, s.Hinted)
	require.Equal(t, map[string]string{"Albania": "Tirana"}, s.CapitalsFound)
}

func TestEncodeFinishedGame(t *testing.T) {
	t.Parallel()
	s := game.NewState()
	s.Letter = 0
	code, err := Encode(testDataset(t), s)
	require.NoError(t, err)
	require.Empty(t, code)
}

func TestEncodeSkipsCapitalsOutsideRound(t *testing.T) {
	t.Parallel()
	d := testDataset(t)

	g := game.New(d)
	g.GuessName("Albania")
	require.True(t, g.GuessCapital("Benin", "Porto-Novo"))
	g.GuessName("Algeria")

	code, err := Encode(d, g.State())
	require.NoError(t, err)
	require.NotEmpty(t, code)

	got, err := Decode(d, code)
	require.NoError(t, err)
	require.EqualValues(t, 3, got.Score)
	require.Len(t, got.NamesFound, 2)
	require.Empty(t, got.CapitalsFound)
}

func TestEncodeRejectsNamesOutsideRound(t *testing.T) {
	t.Parallel()
	s := game.NewState()
	s.NamesFound["Bénin"] = struct{}{}
	_, err := Encode(testDataset(t), s)
	require.ErrorIs(t, err, ErrUnknownEntry)
}

type bigRound struct{ n int }

func (b bigRound) Round(letter byte) []countries.Entry {
	out := make([]countries.Entry, b.n)
	for i := range out {
		out[i] = countries.Entry{ID: i, Name: fmt.Sprintf("A%d", i), Capital: "X"}
	}
	return out
}

func TestRoundCapacity(t *testing.T) {
	t.Parallel()

	s := game.NewState()
	s.NamesFound["A30"] = struct{}{}
	s.Revealed = true
	code, err := Encode(bigRound{n: countries.MaxRoundSize}, s)
	require.NoError(t, err)
	got, err := Decode(bigRound{n: countries.MaxRoundSize}, code)
	require.NoError(t, err)
	require.Equal(t, s, got)

	_, err = Encode(bigRound{n: countries.MaxRoundSize + 1}, s)
	require.ErrorIs(t, err, ErrRoundTooLarge)
	_, err = Decode(bigRound{n: countries.MaxRoundSize + 1}, code)
	require.ErrorIs(t, err, ErrRoundTooLarge)
}

func TestDecodeRejectsBadCodes(t *testing.T) {
	t.Parallel()
	d := testDataset(t)

	pack := func(letter byte, names, hinted, caps uint32) string {
		b := make([]byte, Size)
		b[2] = letter
		b[3], b[4], b[5], b[6] = byte(names), byte(names>>8), byte(names>>16), byte(names>>24)
		b[7], b[8], b[9], b[10] = byte(hinted), byte(hinted>>8), byte(hinted>>16), byte(hinted>>24)
		b[11], b[12], b[13], b[14] = byte(caps), byte(caps>>8), byte(caps>>16), byte(caps>>24)
		return base58.Encode(b)
	}

	tests := []struct {
		name string
		code string
		want error
	}{
		{"empty", "", ErrEmpty},
		{"blank", "   ", ErrEmpty},
		{"alphabet", "0OIl", ErrMalformed},
		{"short", base58.Encode([]byte{1, 2, 3}), ErrLength},
		{"long", base58.Encode(make([]byte, Size+1)), ErrLength},
		{"oversized text", strings.Repeat("z", 4096), ErrLength},
		{"letter", pack('#', 0, 0, 0), ErrLetter},
		{"nul letter", pack(0, 0, 0, 0), ErrLetter},
		{"bit beyond round", pack('A', 1<<2, 0, 0), ErrInconsistent},
		{"capital beyond round", pack('A', 0, 0, 1<<5), ErrInconsistent},
		{"hinted not found", pack('A', 1, 2, 0), ErrInconsistent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(d, tt.code)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeUsesFullNamesBitmap(t *testing.T) {
	t.Parallel()

	// Bits 27..30 are real entries, not padding.
	s := game.NewState()
	s.NamesFound["A28"] = struct{}{}
	s.Hinted["A28"] = struct{}{}
	code, err := Encode(bigRound{n: 29}, s)
	require.NoError(t, err)
	got, err := Decode(bigRound{n: 29}, code)
	require.NoError(t, err)
	require.Contains(t, got.NamesFound, "A28")
}
