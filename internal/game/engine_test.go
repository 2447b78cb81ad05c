package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/capitals/internal/countries"
)

func testDataset(t *testing.T) *countries.Dataset {
	t.Helper()
	d, err := countries.New([]countries.Entry{
		{Name: "Albania", Capital: "Tirana"},
		{Name: "Algeria", Capital: "Algiers"},
		{Name: "Bénin", Capital: "Porto-Novo"},
		{Name: "Burkina Faso", Capital: "Ouagadougou"},
		{Name: "Zambia", Capital: "Lusaka"},
	})
	require.NoError(t, err)
	return d
}

func TestAlbaniaAlgeriaScenario(t *testing.T) {
	t.Parallel()
	g := New(testDataset(t))

	require.True(t, g.GuessName("albania"))
	require.EqualValues(t, 1, g.State().Score)

	require.False(t, g.AdvanceRound())
	require.True(t, g.State().Revealed)
	require.Equal(t, 2, g.Snapshot().Total)

	g.Hint()
	st := g.State()
	require.EqualValues(t, 0, st.Score)
	require.Contains(t, st.NamesFound, "Algeria")
	require.Contains(t, st.Hinted, "Algeria")

	require.True(t, g.AdvanceRound())
	st = g.State()
	require.Equal(t, byte('B'), st.Letter)
	require.EqualValues(t, 0, st.Score, "no completion bonus after a reveal")
	require.False(t, st.Revealed)
	require.Empty(t, st.NamesFound)
	require.Empty(t, st.Hinted)
}

func TestGuessNameIsNormalizationInsensitive(t *testing.T) {
	t.Parallel()
	g := New(testDataset(t))
	require.True(t, g.GuessName("ALBANIA"))
	require.False(t, g.GuessName("Albánia"))

	g2 := New(testDataset(t))
	require.True(t, g2.GuessName("albania"))
	require.True(t, g2.GuessName("Algeria"))
	require.True(t, g2.AdvanceRound())
	require.True(t, g2.GuessName("benin"))
	require.True(t, g2.GuessName("burkina faso"))
	require.Contains(t, g2.State().NamesFound, "Bénin")
}

func TestGuessNameRejections(t *testing.T) {
	t.Parallel()
	g := New(testDataset(t))

	require.False(t, g.GuessName("Benin"), "wrong letter")
	require.False(t, g.GuessName("Atlantis"), "unknown")
	require.False(t, g.GuessName(""), "empty")
	require.True(t, g.GuessName("Albania"))
	require.False(t, g.GuessName("albania"), "already found")
	require.EqualValues(t, 1, g.State().Score)
}

func TestGuessCapital(t *testing.T) {
	t.Parallel()
	g := New(testDataset(t))

	// Allowed before the country itself is found.
	require.True(t, g.GuessCapital("Albania", "tirana"))
	require.False(t, g.GuessCapital("Albania", "Tirana"), "already found")
	require.False(t, g.GuessCapital("Algeria", "Tirana"), "wrong capital")
	require.False(t, g.GuessCapital("Atlantis", "Tirana"), "unknown country")
	require.True(t, g.GuessCapital("benin", "PORTO NOVO"), "spaces match hyphens")

	st := g.State()
	require.EqualValues(t, 2, st.Score)
	require.Equal(t, "Tirana", st.CapitalsFound["Albania"])
	require.Equal(t, "Porto-Novo", st.CapitalsFound["Bénin"])
	require.Empty(t, st.NamesFound)
}

func TestAdvanceRoundBonusAndGating(t *testing.T) {
	t.Parallel()
	g := New(testDataset(t))

	require.True(t, g.GuessName("Albania"))
	require.False(t, g.AdvanceRound())
	require.Equal(t, byte('A'), g.State().Letter)
	require.EqualValues(t, 1, g.State().Score)

	g2 := New(testDataset(t))
	require.True(t, g2.GuessName("Albania"))
	require.True(t, g2.GuessName("Algeria"))
	require.True(t, g2.GuessCapital("Albania", "Tirana"))
	require.True(t, g2.AdvanceRound())
	st := g2.State()
	require.EqualValues(t, 5, st.Score)
	require.Equal(t, byte('B'), st.Letter)
	require.Empty(t, st.CapitalsFound)
}

func TestEmptyRoundsAdvanceImmediately(t *testing.T) {
	t.Parallel()
	g := New(testDataset(t))
	g.Restore(State{Letter: 'C', NamesFound: map[string]struct{}{}, Hinted: map[string]struct{}{}, CapitalsFound: map[string]string{}})

	require.True(t, g.AdvanceRound())
	require.Equal(t, byte('D'), g.State().Letter)
	require.EqualValues(t, 2, g.State().Score)
}

func TestFinishingAfterZ(t *testing.T) {
	t.Parallel()
	g := New(testDataset(t))
	st := NewState()
	st.Letter = 'Z'
	g.Restore(st)

	require.True(t, g.GuessName("zambia"))
	require.True(t, g.AdvanceRound())
	require.True(t, g.State().Finished())
	require.EqualValues(t, 3, g.State().Score)

	require.False(t, g.AdvanceRound())
	require.False(t, g.GuessName("zambia"))
	g.Hint()
	require.EqualValues(t, 3, g.State().Score)

	snap := g.Snapshot()
	require.True(t, snap.Finished)
	require.Equal(t, "", snap.Letter)
}

func TestHintIsDeterministicAndIdempotent(t *testing.T) {
	t.Parallel()
	a := New(testDataset(t))
	b := New(testDataset(t))
	a.Hint()
	b.Hint()
	require.Equal(t, a.State(), b.State())
	require.Contains(t, a.State().Hinted, "Albania")

	a.Hint()
	require.Contains(t, a.State().Hinted, "Algeria")
	require.EqualValues(t, -2, a.State().Score)
	require.False(t, a.State().Revealed)

	before := a.State()
	a.Hint()
	after := a.State()
	require.True(t, after.Revealed)
	after.Revealed = false
	require.Equal(t, before, after)

	a.Hint()
	require.EqualValues(t, -2, a.State().Score)
}

func TestHintSkipsFoundNames(t *testing.T) {
	t.Parallel()
	g := New(testDataset(t))
	require.True(t, g.GuessName("Albania"))
	g.Hint()
	require.Contains(t, g.State().Hinted, "Algeria")
	require.NotContains(t, g.State().Hinted, "Albania")
}

func TestResetAndSubscribe(t *testing.T) {
	t.Parallel()
	g := New(testDataset(t))

	var got []Snapshot
	unsubscribe := g.Subscribe(func(s Snapshot) { got = append(got, s) })

	require.True(t, g.GuessName("Albania"))
	require.False(t, g.GuessName("Albania"))
	g.Reset()
	require.Len(t, got, 2, "rejected guesses do not notify")
	require.Equal(t, 1, got[0].Score)
	require.Equal(t, NewState(), g.State())

	unsubscribe()
	g.Hint()
	require.Len(t, got, 2)
}

func TestSnapshotProjection(t *testing.T) {
	t.Parallel()
	g := New(testDataset(t))
	g.Hint()
	require.False(t, g.GuessName("Albania"))
	require.True(t, g.GuessName("Algeria"))
	require.True(t, g.GuessCapital("Algeria", "Algiers"))

	snap := g.Snapshot()
	require.Equal(t, "A", snap.Letter)
	require.Equal(t, -1, snap.Total)
	require.Equal(t, 2, snap.FoundCount)
	require.Equal(t, []FoundEntry{
		{Name: "Albania", Hinted: true},
		{Name: "Algeria", Capital: "Algiers"},
	}, snap.Found)
}
