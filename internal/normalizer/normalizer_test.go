package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/riftline/internal/models"
)

func testTable() *Table {
	return NewTable(map[string][]string{
		"LCK": {"T1", "Gen.G", "Hanwha Life Esports", "KT Rolster"},
		"LEC": {"G2 Esports", "Fnatic", "Team BDS"},
	})
}

func TestNormalizeTeamExactMatch(t *testing.T) {
	table := testTable()

	got, ok := table.NormalizeTeam("T1", "LCK")
	require.True(t, ok)
	assert.Equal(t, "T1", got)
}

func TestNormalizeTeamCaseAndPunctuation(t *testing.T) {
	table := testTable()

	tests := []struct {
		name   string
		raw    string
		league string
		want   string
	}{
		{name: "lowercase", raw: "t1", league: "LCK", want: "T1"},
		{name: "dotted name", raw: "GenG", league: "LCK", want: "Gen.G"},
		{name: "dropped suffix", raw: "Hanwha Life", league: "LCK", want: "Hanwha Life Esports"},
		{name: "suffix and case", raw: "g2", league: "LEC", want: "G2 Esports"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.NormalizeTeam(tt.raw, tt.league)
			require.True(t, ok, "expected %q to resolve", tt.raw)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTeamExactHitStaysInLeague(t *testing.T) {
	table := testTable()

	// An exact name from another league must not leak through the narrowing
	_, ok := table.NormalizeTeam("T1", "LEC")
	assert.False(t, ok)

	// Without a known league the exact hit resolves across all leagues
	got, ok := table.NormalizeTeam("T1", "")
	require.True(t, ok)
	assert.Equal(t, "T1", got)
}

func TestNormalizeTeamGarbageRejected(t *testing.T) {
	table := testTable()

	for _, raw := range []string{"", "   ", "Quantum Zebras", "xx"} {
		_, ok := table.NormalizeTeam(raw, "LCK")
		assert.False(t, ok, "expected %q to be rejected", raw)
	}
}

func TestNormalizeTeamDeterministic(t *testing.T) {
	table := testTable()

	first, ok := table.NormalizeTeam("Hanwha", "LCK")
	require.True(t, ok)
	for i := 0; i < 50; i++ {
		got, ok := table.NormalizeTeam("Hanwha", "LCK")
		require.True(t, ok)
		assert.Equal(t, first, got)
	}
}

func TestNormalizeTeamTieBreakShortest(t *testing.T) {
	// Both candidates contain the input; the shorter canonical name wins
	// and repeated table builds never flip the answer.
	for i := 0; i < 20; i++ {
		table := NewTable(map[string][]string{
			"X": {"Alpha", "Alpha Academy"},
		})
		got, ok := table.NormalizeTeam("alph", "X")
		require.True(t, ok)
		assert.Equal(t, "Alpha", got)
	}
}

func TestNormalizeLeagueAliases(t *testing.T) {
	table := testTable()

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "LCK", want: "LCK"},
		{raw: "LCK Cup", want: "LCK"},
		{raw: "lck cup", want: "LCK"},
		{raw: "LEC", want: "LEC"},
	}

	for _, tt := range tests {
		got, ok := table.NormalizeLeague(tt.raw)
		require.True(t, ok, "expected %q to resolve", tt.raw)
		assert.Equal(t, tt.want, got, "raw %q", tt.raw)
	}
}

func TestNormalizeLeagueUnknownRejected(t *testing.T) {
	table := testTable()

	_, ok := table.NormalizeLeague("Superliga Feminina de Xadrez")
	assert.False(t, ok)
}

func TestNormalizeKinds(t *testing.T) {
	table := testTable()

	id, ok := table.Normalize("fnatic", models.IdentityKindTeam, "LEC")
	require.True(t, ok)
	assert.Equal(t, models.IdentityKindTeam, id.Kind)
	assert.Equal(t, "Fnatic", id.CanonicalName)

	id, ok = table.Normalize("LCK Cup", models.IdentityKindLeague, "")
	require.True(t, ok)
	assert.Equal(t, "LCK", id.CanonicalName)
}
