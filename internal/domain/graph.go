package domain

// WeightingMethod selects the normalization strategy applied to raw
// points before edges are aggregated.
type WeightingMethod string

// Supported weighting strategies.
const (
	// WeightNone emits raw points unchanged.
	WeightNone WeightingMethod = "none"

	// WeightByParticipation divides by the destination country's
	// participation count.
	WeightByParticipation WeightingMethod = "by_participation"

	// WeightByTotal divides by the destination's point total for the
	// round, normalizing voters with large versus small point budgets.
	WeightByTotal WeightingMethod = "by_total"

	// WeightByBoth divides by the product of both divisors.
	WeightByBoth WeightingMethod = "by_both"
)

// Valid reports whether m names a supported weighting strategy.
func (m WeightingMethod) Valid() bool {
	switch m {
	case WeightNone, WeightByParticipation, WeightByTotal, WeightByBoth:
		return true
	}
	return false
}

// CountryAggregate is a node of the output graph: one country with its
// participation count and optional cultural attributes.
//
// Country identity is keyed by CountryID. When the same id maps to
// multiple recorded names across years, CountryName is the first-seen
// name in input order; ids never fragment into pseudo-countries.
type CountryAggregate struct {
	CountryID   string
	CountryName string

	// ParticipationCount is the number of distinct (year, round) pairs in
	// which the country appears as a vote destination, computed after
	// pre-aggregation filters and before any weighting or selection.
	ParticipationCount int

	// Cultural holds joined dimension values; nil when no cultural record
	// matched this country.
	Cultural map[string]float64
}

// Edge is a directed, weighted edge of the output graph. Votes between
// the same ordered country pair are weighted per record and then summed.
// Self-loops are excluded by construction.
type Edge struct {
	FromCountryID  string
	ToCountryID    string
	WeightedPoints float64
}

// Graph is the final output of a pipeline run: the node and edge lists
// plus the cultural column order needed to render nodes. Both lists are
// deterministically ordered (nodes by country id, edges by ordered pair)
// so identical runs produce byte-identical output.
type Graph struct {
	Nodes           []CountryAggregate
	Edges           []Edge
	CulturalColumns []string
}
