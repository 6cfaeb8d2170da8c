// Package domain contains pure, dependency-free domain models and types
// for the vote graph builder.
package domain

import "strings"

// Round identifies the contest phase a vote was cast in.
// Values are normalized to exactly RoundFinal or RoundSemiFinal.
type Round string

// Normalized contest rounds.
const (
	// RoundFinal is the grand final of a contest year.
	RoundFinal Round = "final"

	// RoundSemiFinal covers every non-final phase. Raw labels that do not
	// match the final are collapsed into this single value.
	RoundSemiFinal Round = "semi-final"
)

// NormalizeRound maps a raw round label onto the two-value Round domain.
// The match is a case-insensitive substring test on "final"; any label
// that does not contain it collapses to RoundSemiFinal.
func NormalizeRound(raw string) Round {
	if strings.Contains(strings.ToLower(raw), "final") {
		return RoundFinal
	}
	return RoundSemiFinal
}

// Vote is a single raw voting record: points awarded by one country to
// another in one round of one contest year.
//
// Round holds the raw label as loaded; the pipeline normalizes it with
// NormalizeRound before any filtering or counting. PointsSF and
// PointsFinal are the destination's round totals as recorded in the
// source data and may be absent.
type Vote struct {
	// Year is the contest year the vote belongs to.
	Year int

	// Round is the contest phase label. Raw until normalized.
	Round string

	// FromCountryID identifies the voting country.
	FromCountryID string

	// ToCountryID identifies the destination country.
	ToCountryID string

	// PointsSF is the destination's semi-final point total, when recorded.
	PointsSF *float64

	// PointsFinal is the destination's final point total, when recorded.
	PointsFinal *float64

	// TotalPoints is the number of points this vote awards.
	TotalPoints float64
}

// Contestant attaches a display name to a destination country for one
// contest year. Records are logically unique per (Year, ToCountryID);
// the merger deduplicates by key before joining so duplicates can never
// fan out vote rows.
type Contestant struct {
	Year          int
	ToCountryID   string
	ToCountryName string
}

// CulturalDimensions carries optional named numeric attributes for one
// country, joined onto the node list by country id. A country without a
// record keeps null attribute values; it is never dropped.
type CulturalDimensions struct {
	CountryID string

	// Values maps dimension name to value. Dimensions absent for this
	// country are simply missing from the map.
	Values map[string]float64
}

// RecordSet holds the three immutable input record sets for a session.
// The pipeline treats a RecordSet as read-only; repeated runs with
// different configurations reuse the same instance.
type RecordSet struct {
	Votes       []Vote
	Contestants []Contestant

	// Cultural is optional; empty means no cultural join is performed.
	Cultural []CulturalDimensions

	// CulturalColumns preserves the dimension column order of the source
	// data so node-list output is stable.
	CulturalColumns []string
}

// MergedVote is a Vote joined with its contestant record and enriched
// with derived fields the weighting stage needs.
type MergedVote struct {
	Vote

	// ToCountryName is the destination display name, empty when no
	// contestant record matched the (year, destination) key.
	ToCountryName string

	// TotalPointsOverall is the destination's round-specific point total:
	// PointsFinal when the round is the final, PointsSF otherwise. It is
	// the divisor for total-based weighting.
	TotalPointsOverall *float64

	// Participation is the destination's participation count, attached
	// after aggregation so weighting can divide by it.
	Participation int
}
