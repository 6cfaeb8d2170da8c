package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-votegraph/internal/domain"
)

func mergedVote(year int, round domain.Round, from, to, toName string, points float64) domain.MergedVote {
	return domain.MergedVote{
		Vote: domain.Vote{
			Year: year, Round: string(round),
			FromCountryID: from, ToCountryID: to,
			TotalPoints: points,
		},
		ToCountryName: toName,
	}
}

// TestBuildAggregates verifies participation counting over distinct
// (year, round) pairs, the first-seen name rule, and zero-count
// aggregates for voter-only countries.
func TestBuildAggregates(t *testing.T) {
	votes := []domain.MergedVote{
		// de appears in two distinct (year, round) pairs; many votes per pair.
		mergedVote(2020, domain.RoundFinal, "fr", "de", "Germany", 12),
		mergedVote(2020, domain.RoundFinal, "es", "de", "Germany", 8),
		mergedVote(2021, domain.RoundFinal, "fr", "de", "Deutschland", 10),
		// fr is a destination once.
		mergedVote(2020, domain.RoundFinal, "de", "fr", "France", 6),
		// es only ever votes.
	}

	aggregates := buildAggregates(votes, map[string]string{"es": "Spain"})

	byID := make(map[string]domain.CountryAggregate, len(aggregates))
	for _, agg := range aggregates {
		byID[agg.CountryID] = agg
	}
	require.Len(t, byID, 3)

	de := byID["de"]
	assert.Equal(t, 2, de.ParticipationCount, "distinct (year, round) pairs, not votes")
	assert.Equal(t, "Germany", de.CountryName, "first-seen name wins; ids never fragment")

	assert.Equal(t, 1, byID["fr"].ParticipationCount)

	es := byID["es"]
	assert.Equal(t, 0, es.ParticipationCount, "voter-only countries count zero participations")
	assert.Equal(t, "Spain", es.CountryName, "voter-only names fall back to contestant records")
}

// TestJoinCultural verifies the left join of cultural dimensions onto
// the node list: matching ids get values, everyone else keeps nil.
func TestJoinCultural(t *testing.T) {
	aggregates := []domain.CountryAggregate{
		{CountryID: "de", ParticipationCount: 2},
		{CountryID: "fr", ParticipationCount: 1},
	}
	cultural := []domain.CulturalDimensions{
		{CountryID: "de", Values: map[string]float64{"pdi": 35, "idv": 67}},
		{CountryID: "xx", Values: map[string]float64{"pdi": 1}},
	}

	joined := joinCultural(aggregates, cultural)

	require.Len(t, joined, 2, "a missing cultural record never drops a node")
	assert.Equal(t, 35.0, joined[0].Cultural["pdi"])
	assert.Nil(t, joined[1].Cultural)

	// Empty cultural set is a no-op.
	same := joinCultural(aggregates, nil)
	assert.Equal(t, aggregates, same)
}

// TestAggregateEdges verifies per-vote weighting followed by summation,
// self-loop exclusion, zero-edge dropping, and deterministic ordering.
func TestAggregateEdges(t *testing.T) {
	votes := []domain.MergedVote{
		mergedVote(2020, domain.RoundFinal, "fr", "de", "Germany", 12),
		mergedVote(2021, domain.RoundFinal, "fr", "de", "Germany", 8),
		mergedVote(2021, domain.RoundFinal, "es", "de", "Germany", 5),
		mergedVote(2021, domain.RoundFinal, "de", "de", "Germany", 3), // self-loop
		mergedVote(2021, domain.RoundFinal, "es", "at", "Austria", 0),
	}

	t.Run("sums per ordered pair and drops zero edges", func(t *testing.T) {
		edges, err := aggregateEdges(votes, weightNone, true)
		require.NoError(t, err)

		assert.Equal(t, []domain.Edge{
			{FromCountryID: "es", ToCountryID: "de", WeightedPoints: 5},
			{FromCountryID: "fr", ToCountryID: "de", WeightedPoints: 20},
		}, edges)
	})

	t.Run("keeps zero edges when configured", func(t *testing.T) {
		edges, err := aggregateEdges(votes, weightNone, false)
		require.NoError(t, err)

		assert.Equal(t, []domain.Edge{
			{FromCountryID: "es", ToCountryID: "at", WeightedPoints: 0},
			{FromCountryID: "es", ToCountryID: "de", WeightedPoints: 5},
			{FromCountryID: "fr", ToCountryID: "de", WeightedPoints: 20},
		}, edges)
	})

	t.Run("propagates weighting failures", func(t *testing.T) {
		_, err := aggregateEdges(votes, weightByParticipation, true)
		require.Error(t, err, "participation was never attached")
	})

	t.Run("normalizes per vote before summation", func(t *testing.T) {
		// Two votes to the same pair with different participation would be
		// indistinguishable if the raw sum were normalized instead.
		withParticipation := make([]domain.MergedVote, 0, 2)
		for _, v := range []domain.MergedVote{
			mergedVote(2020, domain.RoundFinal, "fr", "de", "Germany", 12),
			mergedVote(2021, domain.RoundFinal, "fr", "de", "Germany", 8),
		} {
			v.Participation = 2
			withParticipation = append(withParticipation, v)
		}

		edges, err := aggregateEdges(withParticipation, weightByParticipation, true)
		require.NoError(t, err)
		require.Len(t, edges, 1)
		assert.InDelta(t, 10.0, edges[0].WeightedPoints, 1e-12) // 12/2 + 8/2
	})
}

// TestFilterMinParticipation verifies threshold filtering and the
// restriction of votes to surviving node members.
func TestFilterMinParticipation(t *testing.T) {
	aggregates := []domain.CountryAggregate{
		{CountryID: "de", ParticipationCount: 3},
		{CountryID: "fr", ParticipationCount: 1},
		{CountryID: "es", ParticipationCount: 0},
	}

	kept := filterMinParticipation(aggregates, 1)
	require.Len(t, kept, 2)

	votes := []domain.MergedVote{
		mergedVote(2021, domain.RoundFinal, "fr", "de", "Germany", 10),
		mergedVote(2021, domain.RoundFinal, "es", "de", "Germany", 5), // es filtered out
		mergedVote(2021, domain.RoundFinal, "de", "es", "Spain", 4),   // es filtered out
	}
	restricted := restrictVotes(votes, memberSet(kept))

	require.Len(t, restricted, 1, "both endpoints must survive the node filter")
	assert.Equal(t, "fr", restricted[0].FromCountryID)
}
