package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-votegraph/internal/domain"
)

func fptr(v float64) *float64 { return &v }

// TestNormalizeRounds verifies that normalization copies the vote slice
// instead of mutating the session's record set.
func TestNormalizeRounds(t *testing.T) {
	in := []domain.Vote{
		{Year: 2021, Round: "Grand Final"},
		{Year: 2021, Round: "sf2"},
	}

	out := normalizeRounds(in)

	require.Len(t, out, 2)
	assert.Equal(t, string(domain.RoundFinal), out[0].Round)
	assert.Equal(t, string(domain.RoundSemiFinal), out[1].Round)
	// Input untouched.
	assert.Equal(t, "Grand Final", in[0].Round)
}

// TestMergeVotes covers the left join with contestants: name attachment,
// unmatched keys, duplicate-key dedup, and the round-specific point
// total.
func TestMergeVotes(t *testing.T) {
	contestants := []domain.Contestant{
		{Year: 2021, ToCountryID: "de", ToCountryName: "Germany"},
		{Year: 2021, ToCountryID: "de", ToCountryName: "Deutschland"}, // duplicate key, ignored
		{Year: 2020, ToCountryID: "fr", ToCountryName: "France"},
	}
	votes := []domain.Vote{
		{
			Year: 2021, Round: string(domain.RoundFinal),
			FromCountryID: "fr", ToCountryID: "de",
			PointsSF: fptr(40), PointsFinal: fptr(120), TotalPoints: 10,
		},
		{
			Year: 2021, Round: string(domain.RoundSemiFinal),
			FromCountryID: "es", ToCountryID: "de",
			PointsSF: fptr(40), PointsFinal: fptr(120), TotalPoints: 7,
		},
		{
			// No contestant record for (2021, fr).
			Year: 2021, Round: string(domain.RoundFinal),
			FromCountryID: "de", ToCountryID: "fr",
			TotalPoints: 5,
		},
	}

	merged := mergeVotes(votes, contestants)

	// One merged record per input vote, none dropped and none fanned out.
	require.Len(t, merged, len(votes))

	assert.Equal(t, "Germany", merged[0].ToCountryName, "first duplicate contestant wins")
	require.NotNil(t, merged[0].TotalPointsOverall)
	assert.Equal(t, 120.0, *merged[0].TotalPointsOverall, "final round uses points_final")

	require.NotNil(t, merged[1].TotalPointsOverall)
	assert.Equal(t, 40.0, *merged[1].TotalPointsOverall, "semi-final uses points_sf")

	assert.Empty(t, merged[2].ToCountryName, "unmatched join leaves the name empty")
	assert.Nil(t, merged[2].TotalPointsOverall, "missing round total stays null")
}

// TestContestantNames verifies the first-seen-across-years name index
// used as the fallback for voter-only countries.
func TestContestantNames(t *testing.T) {
	names := contestantNames([]domain.Contestant{
		{Year: 2019, ToCountryID: "mk", ToCountryName: "North Macedonia"},
		{Year: 2018, ToCountryID: "mk", ToCountryName: "F.Y.R. Macedonia"},
		{Year: 2021, ToCountryID: "x", ToCountryName: ""},
	})

	assert.Equal(t, "North Macedonia", names["mk"], "first occurrence in input order wins")
	_, ok := names["x"]
	assert.False(t, ok, "empty names are not indexed")
}
