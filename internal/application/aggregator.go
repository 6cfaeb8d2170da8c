package application

import (
	"sort"

	"github.com/ahrav/go-votegraph/internal/domain"
)

// buildAggregates computes the country aggregate list from merged votes.
// Every country appearing in the votes gets exactly one aggregate:
// destinations carry their participation count and the first-seen display
// name for the id; countries appearing only as voters get a zero count,
// so the participation threshold (default 1) is what excludes them.
//
// The participation count is the number of distinct (year, round) pairs
// in which the country appears as a destination. Votes must already have
// passed the pre-aggregation filters so the counts reflect them; the
// selection filter is applied downstream and must never trigger a
// recount.
//
// Name reduction is an explicit first-occurrence-in-input-order rule:
// an id recorded under several names across years stays one country.
// Voter-only countries have no merged name; fallbackName supplies one
// when the contestant records know the id from another year.
func buildAggregates(votes []domain.MergedVote, fallbackName map[string]string) []domain.CountryAggregate {
	type appearance struct {
		countryID string
		year      int
		round     string
	}

	seen := make(map[appearance]struct{}, len(votes))
	byID := make(map[string]*domain.CountryAggregate)
	order := make([]string, 0)

	for _, v := range votes {
		agg, ok := byID[v.ToCountryID]
		if !ok {
			agg = &domain.CountryAggregate{
				CountryID:   v.ToCountryID,
				CountryName: v.ToCountryName,
			}
			byID[v.ToCountryID] = agg
			order = append(order, v.ToCountryID)
		}

		key := appearance{countryID: v.ToCountryID, year: v.Year, round: v.Round}
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			agg.ParticipationCount++
		}
	}

	for _, v := range votes {
		if _, ok := byID[v.FromCountryID]; ok {
			continue
		}
		agg := &domain.CountryAggregate{
			CountryID:   v.FromCountryID,
			CountryName: fallbackName[v.FromCountryID],
		}
		byID[v.FromCountryID] = agg
		order = append(order, v.FromCountryID)
	}

	aggregates := make([]domain.CountryAggregate, 0, len(order))
	for _, id := range order {
		aggregates = append(aggregates, *byID[id])
	}
	return aggregates
}

// joinCultural attaches cultural dimension values to each aggregate by
// country id. Countries without a cultural record keep a nil map; they
// are never dropped by the join.
func joinCultural(aggregates []domain.CountryAggregate, cultural []domain.CulturalDimensions) []domain.CountryAggregate {
	if len(cultural) == 0 {
		return aggregates
	}

	byID := make(map[string]map[string]float64, len(cultural))
	for _, c := range cultural {
		if _, ok := byID[c.CountryID]; !ok {
			byID[c.CountryID] = c.Values
		}
	}

	out := make([]domain.CountryAggregate, len(aggregates))
	for i, agg := range aggregates {
		agg.Cultural = byID[agg.CountryID]
		out[i] = agg
	}
	return out
}

// participationByID indexes aggregates for divisor lookup and node
// membership checks.
func participationByID(aggregates []domain.CountryAggregate) map[string]int {
	counts := make(map[string]int, len(aggregates))
	for _, agg := range aggregates {
		counts[agg.CountryID] = agg.ParticipationCount
	}
	return counts
}

// attachParticipation copies each destination's participation count onto
// its merged votes so the weighting stage can divide by it.
func attachParticipation(votes []domain.MergedVote, counts map[string]int) []domain.MergedVote {
	out := make([]domain.MergedVote, len(votes))
	for i, v := range votes {
		v.Participation = counts[v.ToCountryID]
		out[i] = v
	}
	return out
}

// edgeKey is the ordered country pair an edge aggregates over.
type edgeKey struct {
	from string
	to   string
}

// aggregateEdges weights every vote individually and sums the weighted
// points per ordered (from, to) country pair. Self-loops are excluded.
// When dropZero is set, pairs whose summed weight is zero are omitted
// from the result.
//
// Normalization happens per vote record before summation; weighting the
// summed raw total would be wrong whenever divisors vary across the
// contributing votes.
func aggregateEdges(votes []domain.MergedVote, weigh weightFunc, dropZero bool) ([]domain.Edge, error) {
	totals := make(map[edgeKey]float64)

	for _, v := range votes {
		if v.FromCountryID == v.ToCountryID {
			continue
		}

		w, err := weigh(v)
		if err != nil {
			return nil, err
		}
		totals[edgeKey{from: v.FromCountryID, to: v.ToCountryID}] += w
	}

	edges := make([]domain.Edge, 0, len(totals))
	for key, w := range totals {
		if dropZero && w == 0 {
			continue
		}
		edges = append(edges, domain.Edge{
			FromCountryID:  key.from,
			ToCountryID:    key.to,
			WeightedPoints: w,
		})
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].FromCountryID != edges[j].FromCountryID {
			return edges[i].FromCountryID < edges[j].FromCountryID
		}
		return edges[i].ToCountryID < edges[j].ToCountryID
	})
	return edges, nil
}

// sortAggregates orders the node list by country id for deterministic
// output.
func sortAggregates(aggregates []domain.CountryAggregate) {
	sort.Slice(aggregates, func(i, j int) bool {
		return aggregates[i].CountryID < aggregates[j].CountryID
	})
}
