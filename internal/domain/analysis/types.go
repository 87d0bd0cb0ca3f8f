// internal/domain/analysis/types.go
package analysis

import "nna_analyzer/internal/domain/record"

// TrendLabel classifies a locality's multi-year count sequence.
type TrendLabel string

const (
	TrendIncreasing       TrendLabel = "INCREASING"
	TrendDecreasing       TrendLabel = "DECREASING"
	TrendStable           TrendLabel = "STABLE"
	TrendInsufficientData TrendLabel = "INSUFFICIENT_DATA"
)

// ChangeKind tells how a year-over-year change value must be read.
type ChangeKind string

const (
	// ChangePercent carries a numeric percentage in Change.Percent.
	ChangePercent ChangeKind = "PERCENT"
	// ChangeNewOccurrence marks a 0 -> n transition; no numeric percentage
	// is defined and the change ranks above any configured threshold.
	ChangeNewOccurrence ChangeKind = "NEW_OCCURRENCE"
)

// YearCount is one cell of the locality × year matrix.
// Missing marks a year the dataset does not cover at all; a covered year
// without records for the locality is an observed zero, not missing.
type YearCount struct {
	Year    int
	Count   int
	Missing bool
}

// CountMatrix is the aggregation result: per locality, an ordered sequence of
// yearly counts spanning the full study range, plus the tally of records that
// could not be attributed to a known locality and year.
type CountMatrix struct {
	Years        []int // ascending, the configured study range
	Localities   []string
	Counts       map[string][]YearCount
	Unclassified int
}

// Change is one year-over-year step for a locality.
type Change struct {
	FromYear int
	ToYear   int
	Kind     ChangeKind
	Percent  float64 // meaningful only when Kind == ChangePercent
}

// Positive reports whether the change moves upward.
func (c Change) Positive() bool {
	return c.Kind == ChangeNewOccurrence || (c.Kind == ChangePercent && c.Percent > 0)
}

// Negative reports whether the change moves downward.
func (c Change) Negative() bool {
	return c.Kind == ChangePercent && c.Percent < 0
}

// Exceeds reports whether the change magnitude is above threshold (in
// percentage points). A new occurrence exceeds every threshold.
func (c Change) Exceeds(threshold float64) bool {
	if c.Kind == ChangeNewOccurrence {
		return true
	}
	return c.Percent > threshold || -c.Percent > threshold
}

// TrendResult is the per-locality outcome of trend classification.
type TrendResult struct {
	Locality string
	Counts   []YearCount
	Changes  []Change
	// Net is the first-to-last usable-count change under the same policy as
	// the per-year changes. Valid only when Label != TrendInsufficientData.
	Net   Change
	Label TrendLabel
}

// AlertZone is a locality flagged for significant or sustained change.
type AlertZone struct {
	Locality  string
	Label     TrendLabel
	Net       Change
	TriggerBy []Change // the individual changes that crossed the threshold
	RunLength int      // longest same-direction run, in change steps
}

// RegimeBreakdown holds counts and percentage shares per health regime for a
// locality (or for the city when Locality is empty).
type RegimeBreakdown struct {
	Locality string
	Total    int
	Counts   map[record.Regime]int
	Shares   map[record.Regime]float64 // percentages; sum to 100 when Total > 0
}

// Result bundles everything the report writers consume.
type Result struct {
	Matrix          *CountMatrix
	Trends          []TrendResult // ordered by locality name
	Alerts          []AlertZone   // ordered by severity
	CityRegimes     RegimeBreakdown
	LocalityRegimes []RegimeBreakdown // ordered by locality name
}
