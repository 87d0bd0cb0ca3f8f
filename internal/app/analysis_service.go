// internal/app/analysis_service.go
package app

import (
	"context"
	"log"
	"sort"

	"nna_analyzer/internal/domain/analysis"
	"nna_analyzer/internal/domain/record"
	"nna_analyzer/internal/infra/config"
)

// AnalysisParams are the tuning knobs of the trend and alert analysis.
type AnalysisParams struct {
	StudyYears            []int   // ascending, inclusive range
	SignificanceThreshold float64 // %, single change that flags an alert
	NetChangeThreshold    float64 // %, net change required to leave "stable"
	SustainedRunLength    int     // same-direction steps that flag an alert
	MinYearlyPoints       int     // usable yearly counts needed to classify
	AlertDirections       string  // config.DirectionsBoth / Increase / Decrease
}

// AnalysisService runs the spatio-temporal trend analysis over typed records.
type AnalysisService interface {
	Analyze(ctx context.Context, records []record.Record) (*analysis.Result, error)
}

// AnalysisServiceImpl implements the AnalysisService interface.
type AnalysisServiceImpl struct {
	params AnalysisParams
	logger *log.Logger
}

func NewAnalysisServiceImpl(params AnalysisParams, logger *log.Logger) *AnalysisServiceImpl {
	return &AnalysisServiceImpl{params: params, logger: logger}
}

// Analyze aggregates records into the locality × year matrix, classifies every
// locality's trend and selects the alert zones.
func (s *AnalysisServiceImpl) Analyze(ctx context.Context, records []record.Record) (*analysis.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matrix := s.Aggregate(records)
	s.logger.Printf("INFO: Aggregated %d records into %d localities x %d years (%d unclassified)",
		len(records), len(matrix.Localities), len(matrix.Years), matrix.Unclassified)

	trends := make([]analysis.TrendResult, 0, len(matrix.Localities))
	for _, loc := range matrix.Localities {
		trends = append(trends, s.Classify(loc, matrix.Counts[loc]))
	}

	alerts := s.SelectAlertZones(trends)
	s.logger.Printf("INFO: Trend classification done. Alert zones: %d", len(alerts))

	city, perLocality := s.RegimeCrossTab(records)

	return &analysis.Result{
		Matrix:          matrix,
		Trends:          trends,
		Alerts:          alerts,
		CityRegimes:     city,
		LocalityRegimes: perLocality,
	}, nil
}

// Aggregate builds the locality × year count matrix in a single pass.
// A study year with no records anywhere in the dataset is marked missing for
// every locality; a covered year simply counts zero where a locality has no
// records. Records outside the study range or with an unknown locality are
// tallied as unclassified.
func (s *AnalysisServiceImpl) Aggregate(records []record.Record) *analysis.CountMatrix {
	years := s.params.StudyYears
	counts := make(map[string]map[int]int, len(record.Localities))
	covered := make(map[int]bool, len(years))
	unclassified := 0

	inRange := func(y int) bool {
		return len(years) > 0 && y >= years[0] && y <= years[len(years)-1]
	}

	for _, r := range records {
		if !inRange(r.Year) {
			unclassified++
			continue
		}
		covered[r.Year] = true
		if !record.KnownLocality(r.Locality) {
			unclassified++
			continue
		}
		if counts[r.Locality] == nil {
			counts[r.Locality] = make(map[int]int, len(years))
		}
		counts[r.Locality][r.Year]++
	}

	localities := append([]string(nil), record.Localities...)
	sort.Strings(localities)

	matrix := &analysis.CountMatrix{
		Years:        years,
		Localities:   localities,
		Counts:       make(map[string][]analysis.YearCount, len(localities)),
		Unclassified: unclassified,
	}
	for _, loc := range localities {
		row := make([]analysis.YearCount, 0, len(years))
		for _, y := range years {
			if !covered[y] {
				row = append(row, analysis.YearCount{Year: y, Missing: true})
				continue
			}
			row = append(row, analysis.YearCount{Year: y, Count: counts[loc][y]})
		}
		matrix.Counts[loc] = row
	}
	return matrix
}

// Classify labels one locality's yearly sequence. Years marked missing are
// skipped; changes are computed between consecutive usable years only.
func (s *AnalysisServiceImpl) Classify(locality string, counts []analysis.YearCount) analysis.TrendResult {
	result := analysis.TrendResult{Locality: locality, Counts: counts}

	usable := make([]analysis.YearCount, 0, len(counts))
	for _, yc := range counts {
		if !yc.Missing {
			usable = append(usable, yc)
		}
	}
	if len(usable) < s.params.MinYearlyPoints {
		result.Label = analysis.TrendInsufficientData
		return result
	}

	for i := 1; i < len(usable); i++ {
		result.Changes = append(result.Changes, analysis.PercentChange(
			usable[i-1].Year, usable[i].Year, usable[i-1].Count, usable[i].Count))
	}
	first, last := usable[0], usable[len(usable)-1]
	result.Net = analysis.PercentChange(first.Year, last.Year, first.Count, last.Count)

	positive, negative := 0, 0
	for _, c := range result.Changes {
		if c.Positive() {
			positive++
		} else if c.Negative() {
			negative++
		}
	}

	switch {
	case positive > negative && result.Net.Positive() && result.Net.Exceeds(s.params.NetChangeThreshold):
		result.Label = analysis.TrendIncreasing
	case negative > positive && result.Net.Negative() && result.Net.Exceeds(s.params.NetChangeThreshold):
		result.Label = analysis.TrendDecreasing
	default:
		// Ties between directions stay stable rather than guessing.
		result.Label = analysis.TrendStable
	}
	return result
}

// SelectAlertZones picks the localities whose trend direction is eligible and
// whose changes are either individually significant or sustained. New
// occurrences rank above every numeric net change; then larger magnitudes
// first, locality name breaking ties.
func (s *AnalysisServiceImpl) SelectAlertZones(trends []analysis.TrendResult) []analysis.AlertZone {
	var zones []analysis.AlertZone
	for _, t := range trends {
		if !s.directionEligible(t.Label) {
			continue
		}
		var triggers []analysis.Change
		for _, c := range t.Changes {
			if c.Exceeds(s.params.SignificanceThreshold) {
				triggers = append(triggers, c)
			}
		}
		run := longestRun(t.Changes)
		if len(triggers) == 0 && run < s.params.SustainedRunLength {
			continue
		}
		zones = append(zones, analysis.AlertZone{
			Locality:  t.Locality,
			Label:     t.Label,
			Net:       t.Net,
			TriggerBy: triggers,
			RunLength: run,
		})
	}

	sort.SliceStable(zones, func(i, j int) bool {
		a, b := zones[i], zones[j]
		ai, bi := a.Net.Kind == analysis.ChangeNewOccurrence, b.Net.Kind == analysis.ChangeNewOccurrence
		if ai != bi {
			return ai
		}
		am, bm := abs(a.Net.Percent), abs(b.Net.Percent)
		if am != bm {
			return am > bm
		}
		return a.Locality < b.Locality
	})
	return zones
}

func (s *AnalysisServiceImpl) directionEligible(label analysis.TrendLabel) bool {
	switch s.params.AlertDirections {
	case config.DirectionsIncrease:
		return label == analysis.TrendIncreasing
	case config.DirectionsDecrease:
		return label == analysis.TrendDecreasing
	default:
		return label == analysis.TrendIncreasing || label == analysis.TrendDecreasing
	}
}

// longestRun returns the length of the longest streak of consecutive changes
// sharing one direction. Flat changes break the streak.
func longestRun(changes []analysis.Change) int {
	best, cur := 0, 0
	up := false
	for _, c := range changes {
		switch {
		case c.Positive():
			if cur > 0 && up {
				cur++
			} else {
				cur, up = 1, true
			}
		case c.Negative():
			if cur > 0 && !up {
				cur++
			} else {
				cur, up = 1, false
			}
		default:
			cur = 0
		}
		if cur > best {
			best = cur
		}
	}
	return best
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// RegimeCrossTab tabulates health-regime shares city-wide and per locality.
// Only records inside the study range with a known locality participate.
func (s *AnalysisServiceImpl) RegimeCrossTab(records []record.Record) (analysis.RegimeBreakdown, []analysis.RegimeBreakdown) {
	years := s.params.StudyYears
	inRange := func(y int) bool {
		return len(years) > 0 && y >= years[0] && y <= years[len(years)-1]
	}

	city := newBreakdown("")
	perLocality := make(map[string]*analysis.RegimeBreakdown)

	for _, r := range records {
		if !inRange(r.Year) || !record.KnownLocality(r.Locality) {
			continue
		}
		city.Total++
		city.Counts[r.Regime]++
		b := perLocality[r.Locality]
		if b == nil {
			nb := newBreakdown(r.Locality)
			b = &nb
			perLocality[r.Locality] = b
		}
		b.Total++
		b.Counts[r.Regime]++
	}

	fillShares(&city)
	out := make([]analysis.RegimeBreakdown, 0, len(perLocality))
	for _, b := range perLocality {
		fillShares(b)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Locality < out[j].Locality })
	return city, out
}

func newBreakdown(locality string) analysis.RegimeBreakdown {
	return analysis.RegimeBreakdown{
		Locality: locality,
		Counts:   make(map[record.Regime]int, 4),
		Shares:   make(map[record.Regime]float64, 4),
	}
}

func fillShares(b *analysis.RegimeBreakdown) {
	for _, reg := range record.AllRegimes() {
		b.Shares[reg] = analysis.Share(b.Counts[reg], b.Total)
	}
}
