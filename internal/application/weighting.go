package application

import (
	"fmt"
	"math"

	"github.com/ahrav/go-votegraph/internal/domain"
)

// weightFunc computes the normalized weight of a single merged vote.
type weightFunc func(v domain.MergedVote) (float64, error)

// weighterFor returns the weight function for the configured strategy.
// An unrecognized method yields a domain.ConfigError.
func weighterFor(method domain.WeightingMethod) (weightFunc, error) {
	switch method {
	case domain.WeightNone:
		return weightNone, nil
	case domain.WeightByParticipation:
		return weightByParticipation, nil
	case domain.WeightByTotal:
		return weightByTotal, nil
	case domain.WeightByBoth:
		return weightByBoth, nil
	default:
		return nil, domain.NewConfigError("weighting",
			fmt.Errorf("%w: %q", domain.ErrUnknownWeighting, method))
	}
}

func weightNone(v domain.MergedVote) (float64, error) {
	return v.TotalPoints, nil
}

func weightByParticipation(v domain.MergedVote) (float64, error) {
	if v.Participation <= 0 {
		return 0, divisorError(v, "participation count is zero")
	}
	return checkFinite(v, v.TotalPoints/float64(v.Participation))
}

func weightByTotal(v domain.MergedVote) (float64, error) {
	total, err := roundTotal(v)
	if err != nil {
		return 0, err
	}
	return checkFinite(v, v.TotalPoints/total)
}

func weightByBoth(v domain.MergedVote) (float64, error) {
	total, err := roundTotal(v)
	if err != nil {
		return 0, err
	}
	if v.Participation <= 0 {
		return 0, divisorError(v, "participation count is zero")
	}
	return checkFinite(v, v.TotalPoints/(total*float64(v.Participation)))
}

// roundTotal extracts the round-specific point total used as a divisor.
// A missing or zero total is a data defect: silently dividing would
// propagate NaN or Inf into the edge list, so it fails instead with an
// error naming the record.
func roundTotal(v domain.MergedVote) (float64, error) {
	if v.TotalPointsOverall == nil {
		return 0, divisorError(v, "round point total is missing")
	}
	if *v.TotalPointsOverall == 0 {
		return 0, divisorError(v, "round point total is zero")
	}
	return *v.TotalPointsOverall, nil
}

// checkFinite rejects NaN and Inf weights so invalid floating-point
// values can never reach aggregation.
func checkFinite(v domain.MergedVote, w float64) (float64, error) {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, divisorError(v, fmt.Sprintf("non-finite weight %f", w))
	}
	return w, nil
}

func divisorError(v domain.MergedVote, reason string) error {
	record := fmt.Sprintf("%d/%s %s->%s", v.Year, v.Round, v.FromCountryID, v.ToCountryID)
	return domain.NewDataError("votes", 0, record,
		fmt.Errorf("%w: %s", domain.ErrZeroDivisor, reason))
}
