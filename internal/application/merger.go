package application

import (
	"github.com/ahrav/go-votegraph/internal/domain"
)

// contestantKey is the logical uniqueness key of a contestant record.
type contestantKey struct {
	year      int
	countryID string
}

// dedupeContestants collapses contestant records to one per
// (year, to_country_id) key, keeping the first occurrence in input order.
// Contestants are logically unique per key; deduplicating up front
// guarantees the left join can never fan out vote rows.
func dedupeContestants(contestants []domain.Contestant) map[contestantKey]domain.Contestant {
	byKey := make(map[contestantKey]domain.Contestant, len(contestants))
	for _, c := range contestants {
		key := contestantKey{year: c.Year, countryID: c.ToCountryID}
		if _, ok := byKey[key]; !ok {
			byKey[key] = c
		}
	}
	return byKey
}

// contestantNames indexes display names by country id, first occurrence
// in input order across all years. Used only as a name fallback for
// countries that never appear as a vote destination.
func contestantNames(contestants []domain.Contestant) map[string]string {
	names := make(map[string]string, len(contestants))
	for _, c := range contestants {
		if _, ok := names[c.ToCountryID]; !ok && c.ToCountryName != "" {
			names[c.ToCountryID] = c.ToCountryName
		}
	}
	return names
}

// normalizeRounds returns a copy of the votes with every round label
// collapsed onto the two-value Round domain. The input slice is not
// modified; record sets are immutable for the session.
func normalizeRounds(votes []domain.Vote) []domain.Vote {
	out := make([]domain.Vote, len(votes))
	for i, v := range votes {
		v.Round = string(domain.NormalizeRound(v.Round))
		out[i] = v
	}
	return out
}

// mergeVotes left-joins votes with contestants on (year, to_country_id)
// to attach the destination display name, and derives the round-specific
// point total. Exactly one MergedVote is produced per input vote: an
// unmatched contestant key leaves the name empty, never drops the row.
//
// Rounds must already be normalized; the round-specific total picks
// PointsFinal for final votes and PointsSF otherwise.
func mergeVotes(votes []domain.Vote, contestants []domain.Contestant) []domain.MergedVote {
	byKey := dedupeContestants(contestants)

	merged := make([]domain.MergedVote, len(votes))
	for i, v := range votes {
		mv := domain.MergedVote{Vote: v}

		if c, ok := byKey[contestantKey{year: v.Year, countryID: v.ToCountryID}]; ok {
			mv.ToCountryName = c.ToCountryName
		}

		if domain.Round(v.Round) == domain.RoundFinal {
			mv.TotalPointsOverall = v.PointsFinal
		} else {
			mv.TotalPointsOverall = v.PointsSF
		}

		merged[i] = mv
	}
	return merged
}
