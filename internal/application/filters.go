package application

import (
	"log/slog"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-votegraph/internal/domain"
)

// topNThreshold is the minimum points a vote must award to survive the
// top-3 filter. Eurovision awards 8, 10 and 12 points to a voter's top
// three entries.
const topNThreshold = 8.0

// foldCaser is a package-level Unicode case folder used when comparing
// country names for suggestions. Selection matching itself is exact.
var foldCaser = cases.Fold()

// filterTopN keeps votes awarding topNThreshold or more points. Applied
// to raw votes before participation counting so the counts reflect it.
func filterTopN(votes []domain.Vote) []domain.Vote {
	out := make([]domain.Vote, 0, len(votes))
	for _, v := range votes {
		if v.TotalPoints >= topNThreshold {
			out = append(out, v)
		}
	}
	return out
}

// filterFinalOnly keeps only final-round votes. Rounds must already be
// normalized.
func filterFinalOnly(votes []domain.Vote) []domain.Vote {
	out := make([]domain.Vote, 0, len(votes))
	for _, v := range votes {
		if domain.Round(v.Round) == domain.RoundFinal {
			out = append(out, v)
		}
	}
	return out
}

// filterMinParticipation drops aggregates below the participation
// threshold. Edge consistency is restored separately by restrictVotes;
// membership is recomputed rather than patched so no stale counts can
// survive.
func filterMinParticipation(aggregates []domain.CountryAggregate, min int) []domain.CountryAggregate {
	out := make([]domain.CountryAggregate, 0, len(aggregates))
	for _, agg := range aggregates {
		if agg.ParticipationCount >= min {
			out = append(out, agg)
		}
	}
	return out
}

// restrictVotes keeps only votes whose endpoints are both members of the
// current node list. This is the referential-integrity step: after it,
// no vote (and therefore no edge) can reference a filtered-out country.
func restrictVotes(votes []domain.MergedVote, members map[string]struct{}) []domain.MergedVote {
	out := make([]domain.MergedVote, 0, len(votes))
	for _, v := range votes {
		if _, ok := members[v.FromCountryID]; !ok {
			continue
		}
		if _, ok := members[v.ToCountryID]; !ok {
			continue
		}
		out = append(out, v)
	}
	return out
}

// memberSet builds the id membership set of the current node list.
func memberSet(aggregates []domain.CountryAggregate) map[string]struct{} {
	members := make(map[string]struct{}, len(aggregates))
	for _, agg := range aggregates {
		members[agg.CountryID] = struct{}{}
	}
	return members
}

// resolveSelection maps selected country names to ids via the current
// node list. Unknown names are skipped rather than fatal, matching the
// leniency of the interactive shell; each skip is logged at warn level
// with the nearest known name as a hint.
func resolveSelection(names []string, aggregates []domain.CountryAggregate, logger *slog.Logger) map[string]struct{} {
	idByName := make(map[string]string, len(aggregates))
	for _, agg := range aggregates {
		if _, ok := idByName[agg.CountryName]; !ok {
			idByName[agg.CountryName] = agg.CountryID
		}
	}

	selected := make(map[string]struct{}, len(names))
	for _, name := range names {
		id, ok := idByName[name]
		if !ok {
			logger.Warn("ignoring unknown selected country",
				"name", name,
				"nearest", nearestName(name, aggregates),
			)
			continue
		}
		selected[id] = struct{}{}
	}
	return selected
}

// filterSelection restricts the node list to the selected ids.
func filterSelection(aggregates []domain.CountryAggregate, selected map[string]struct{}) []domain.CountryAggregate {
	out := make([]domain.CountryAggregate, 0, len(selected))
	for _, agg := range aggregates {
		if _, ok := selected[agg.CountryID]; ok {
			out = append(out, agg)
		}
	}
	return out
}

// nearestName returns the known country name closest to name by
// Levenshtein distance over case-folded strings, or "" when there are no
// candidates. Used only for log hints, never for matching.
func nearestName(name string, aggregates []domain.CountryAggregate) string {
	folded := foldCaser.String(name)

	best := ""
	bestDist := -1
	for _, agg := range aggregates {
		if agg.CountryName == "" {
			continue
		}
		d := levenshtein.ComputeDistance(folded, foldCaser.String(agg.CountryName))
		if bestDist < 0 || d < bestDist {
			best, bestDist = agg.CountryName, d
		}
	}
	return best
}
