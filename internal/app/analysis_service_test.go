// internal/app/analysis_service_test.go
package app

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nna_analyzer/internal/domain/analysis"
	"nna_analyzer/internal/domain/record"
	"nna_analyzer/internal/infra/config"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func defaultParams() AnalysisParams {
	return AnalysisParams{
		StudyYears:            []int{2021, 2022, 2023, 2024, 2025},
		SignificanceThreshold: 20,
		NetChangeThreshold:    10,
		SustainedRunLength:    3,
		MinYearlyPoints:       2,
		AlertDirections:       config.DirectionsBoth,
	}
}

// yearlyRecords produces count records for one locality per year.
func yearlyRecords(locality string, countsByYear map[int]int) []record.Record {
	var out []record.Record
	for year, n := range countsByYear {
		for i := 0; i < n; i++ {
			out = append(out, record.Record{
				Locality: locality,
				Year:     year,
				Regime:   record.RegimeSubsidiado,
				Age:      -1,
			})
		}
	}
	return out
}

func TestAnalyze_SharpIncreaseBecomesAlert(t *testing.T) {
	svc := NewAnalysisServiceImpl(defaultParams(), testLogger())
	records := yearlyRecords("SUBA", map[int]int{
		2021: 10, 2022: 12, 2023: 11, 2024: 13, 2025: 30,
	})

	result, err := svc.Analyze(context.Background(), records)
	require.NoError(t, err)

	var suba *analysis.TrendResult
	for i := range result.Trends {
		if result.Trends[i].Locality == "SUBA" {
			suba = &result.Trends[i]
		}
	}
	require.NotNil(t, suba)
	assert.Equal(t, analysis.TrendIncreasing, suba.Label)
	assert.InDelta(t, 200.0, suba.Net.Percent, 1e-9)

	require.Len(t, result.Alerts, 1)
	alert := result.Alerts[0]
	assert.Equal(t, "SUBA", alert.Locality)
	require.Len(t, alert.TriggerBy, 1, "only the 2024 to 2025 jump crosses 20%%")
	assert.Equal(t, 2024, alert.TriggerBy[0].FromYear)
	assert.Equal(t, 2025, alert.TriggerBy[0].ToYear)
	assert.InDelta(t, 130.77, alert.TriggerBy[0].Percent, 0.01)
}

func TestAnalyze_AllZerosIsStableWithoutAlert(t *testing.T) {
	svc := NewAnalysisServiceImpl(defaultParams(), testLogger())
	// KENNEDY covers every study year so no year counts as missing; SUBA then
	// holds an observed zero for each of them.
	records := yearlyRecords("KENNEDY", map[int]int{
		2021: 1, 2022: 1, 2023: 1, 2024: 1, 2025: 1,
	})

	result, err := svc.Analyze(context.Background(), records)
	require.NoError(t, err)

	suba := trendFor(t, result, "SUBA")
	assert.Equal(t, analysis.TrendStable, suba.Label)
	assert.Equal(t, analysis.ChangePercent, suba.Net.Kind)
	assert.Equal(t, 0.0, suba.Net.Percent)

	for _, z := range result.Alerts {
		assert.NotEqual(t, "SUBA", z.Locality)
	}
}

func TestAnalyze_UncoveredYearsAreMissing(t *testing.T) {
	records := yearlyRecords("USME", map[int]int{2021: 5, 2025: 5})

	svc := NewAnalysisServiceImpl(defaultParams(), testLogger())
	result, err := svc.Analyze(context.Background(), records)
	require.NoError(t, err)

	usme := trendFor(t, result, "USME")
	require.Len(t, usme.Counts, 5)
	assert.False(t, usme.Counts[0].Missing)
	assert.True(t, usme.Counts[1].Missing)
	assert.True(t, usme.Counts[2].Missing)
	assert.True(t, usme.Counts[3].Missing)
	assert.False(t, usme.Counts[4].Missing)

	// Two usable points meet the default minimum; the flat change stays stable.
	assert.Equal(t, analysis.TrendStable, usme.Label)

	strict := defaultParams()
	strict.MinYearlyPoints = 3
	strictSvc := NewAnalysisServiceImpl(strict, testLogger())
	strictResult, err := strictSvc.Analyze(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, analysis.TrendInsufficientData, trendFor(t, strictResult, "USME").Label)
}

func TestAnalyze_UnclassifiedTally(t *testing.T) {
	records := yearlyRecords("BOSA", map[int]int{2021: 3, 2022: 3, 2023: 3, 2024: 3, 2025: 3})
	records = append(records,
		record.Record{Locality: "SOACHA", Year: 2022, Regime: record.RegimeOtro, Age: -1},
		record.Record{Locality: "BOSA", Year: 2019, Regime: record.RegimeOtro, Age: -1},
		record.Record{Locality: "BOSA", Year: 0, Regime: record.RegimeOtro, Age: -1},
	)

	svc := NewAnalysisServiceImpl(defaultParams(), testLogger())
	result, err := svc.Analyze(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Matrix.Unclassified)
	bosa := trendFor(t, result, "BOSA")
	assert.Equal(t, 3, bosa.Counts[0].Count, "out-of-range records never reach the matrix")
}

func TestSelectAlertZones_MonotonicInThreshold(t *testing.T) {
	records := append(
		yearlyRecords("SUBA", map[int]int{2021: 10, 2022: 15, 2023: 22, 2024: 33, 2025: 50}),
		yearlyRecords("KENNEDY", map[int]int{2021: 100, 2022: 130, 2023: 170, 2024: 220, 2025: 290})...,
	)

	loose := defaultParams()
	loose.SustainedRunLength = 100 // isolate the single-change rule
	looseSvc := NewAnalysisServiceImpl(loose, testLogger())
	looseResult, err := looseSvc.Analyze(context.Background(), records)
	require.NoError(t, err)

	tight := loose
	tight.SignificanceThreshold = 45
	tightSvc := NewAnalysisServiceImpl(tight, testLogger())
	tightResult, err := tightSvc.Analyze(context.Background(), records)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(tightResult.Alerts), len(looseResult.Alerts))
	looseSet := make(map[string]bool)
	for _, z := range looseResult.Alerts {
		looseSet[z.Locality] = true
	}
	for _, z := range tightResult.Alerts {
		assert.True(t, looseSet[z.Locality], "raising the threshold must not add alerts")
	}
}

func TestSelectAlertZones_AntiMonotonicInRunLength(t *testing.T) {
	// FONTIBON climbs mildly every year (longest run 4); USAQUEN's climb is
	// interrupted in 2023 (longest run 2). No single change crosses 50%.
	records := append(
		yearlyRecords("FONTIBON", map[int]int{2021: 100, 2022: 110, 2023: 121, 2024: 133, 2025: 146}),
		yearlyRecords("USAQUEN", map[int]int{2021: 100, 2022: 110, 2023: 104, 2024: 114, 2025: 126})...,
	)

	short := defaultParams()
	short.SignificanceThreshold = 50 // isolate the sustained-run rule
	short.SustainedRunLength = 2
	shortSvc := NewAnalysisServiceImpl(short, testLogger())
	shortResult, err := shortSvc.Analyze(context.Background(), records)
	require.NoError(t, err)

	long := short
	long.SustainedRunLength = 4
	longSvc := NewAnalysisServiceImpl(long, testLogger())
	longResult, err := longSvc.Analyze(context.Background(), records)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(shortResult.Alerts), len(longResult.Alerts),
		"lowering the required run length must never lose alerts")
	shortSet := make(map[string]bool)
	for _, z := range shortResult.Alerts {
		shortSet[z.Locality] = true
	}
	for _, z := range longResult.Alerts {
		assert.True(t, shortSet[z.Locality])
	}

	assert.True(t, shortSet["FONTIBON"])
	assert.True(t, shortSet["USAQUEN"])
	require.Len(t, longResult.Alerts, 1)
	assert.Equal(t, "FONTIBON", longResult.Alerts[0].Locality)
}

func TestSelectAlertZones_SustainedRunWithoutSpike(t *testing.T) {
	// Four consecutive mild increases, none above 20%, net above 10%.
	records := yearlyRecords("FONTIBON", map[int]int{
		2021: 100, 2022: 110, 2023: 121, 2024: 133, 2025: 146,
	})

	svc := NewAnalysisServiceImpl(defaultParams(), testLogger())
	result, err := svc.Analyze(context.Background(), records)
	require.NoError(t, err)

	found := false
	for _, z := range result.Alerts {
		if z.Locality == "FONTIBON" {
			found = true
			assert.Empty(t, z.TriggerBy)
			assert.Equal(t, 4, z.RunLength)
		}
	}
	assert.True(t, found, "a sustained run alone must flag the zone")
}

func TestSelectAlertZones_NewOccurrenceRanksFirst(t *testing.T) {
	records := append(
		yearlyRecords("SUMAPAZ", map[int]int{2022: 4, 2023: 5, 2024: 7, 2025: 9}),
		yearlyRecords("KENNEDY", map[int]int{2021: 10, 2022: 14, 2023: 20, 2024: 28, 2025: 40})...,
	)
	// KENNEDY covers 2021, so SUMAPAZ starts from an observed zero.

	svc := NewAnalysisServiceImpl(defaultParams(), testLogger())
	result, err := svc.Analyze(context.Background(), records)
	require.NoError(t, err)

	require.NotEmpty(t, result.Alerts)
	assert.Equal(t, "SUMAPAZ", result.Alerts[0].Locality)
	assert.Equal(t, analysis.ChangeNewOccurrence, result.Alerts[0].Net.Kind)
}

func TestAnalyze_Deterministic(t *testing.T) {
	records := append(
		yearlyRecords("SUBA", map[int]int{2021: 10, 2022: 15, 2023: 20, 2024: 30, 2025: 45}),
		yearlyRecords("BOSA", map[int]int{2021: 40, 2022: 30, 2023: 22, 2024: 16, 2025: 12})...,
	)

	svc := NewAnalysisServiceImpl(defaultParams(), testLogger())
	first, err := svc.Analyze(context.Background(), records)
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAnalyze_DecreaseOnlyDirection(t *testing.T) {
	records := append(
		yearlyRecords("SUBA", map[int]int{2021: 10, 2022: 15, 2023: 20, 2024: 30, 2025: 45}),
		yearlyRecords("BOSA", map[int]int{2021: 40, 2022: 30, 2023: 22, 2024: 16, 2025: 12})...,
	)

	params := defaultParams()
	params.AlertDirections = config.DirectionsDecrease
	svc := NewAnalysisServiceImpl(params, testLogger())
	result, err := svc.Analyze(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, result.Alerts, 1)
	assert.Equal(t, "BOSA", result.Alerts[0].Locality)
	assert.Equal(t, analysis.TrendDecreasing, result.Alerts[0].Label)
}

func TestRegimeCrossTab_SharesSumToHundred(t *testing.T) {
	records := []record.Record{
		{Locality: "SUBA", Year: 2022, Regime: record.RegimeSubsidiado, Age: -1},
		{Locality: "SUBA", Year: 2022, Regime: record.RegimeSubsidiado, Age: -1},
		{Locality: "SUBA", Year: 2023, Regime: record.RegimeContributivo, Age: -1},
		{Locality: "SUBA", Year: 2023, Regime: record.RegimeNoEspecificado, Age: -1},
		{Locality: "SUBA", Year: 2024, Regime: record.RegimeOtro, Age: -1},
	}

	svc := NewAnalysisServiceImpl(defaultParams(), testLogger())
	city, perLocality := svc.RegimeCrossTab(records)

	sum := 0.0
	for _, share := range city.Shares {
		sum += share
	}
	assert.InDelta(t, 100.0, sum, 1e-9)

	require.Len(t, perLocality, 1)
	assert.Equal(t, "SUBA", perLocality[0].Locality)
	assert.InDelta(t, 40.0, perLocality[0].Shares[record.RegimeSubsidiado], 1e-9)
}

func trendFor(t *testing.T, result *analysis.Result, locality string) analysis.TrendResult {
	t.Helper()
	for _, tr := range result.Trends {
		if tr.Locality == locality {
			return tr
		}
	}
	t.Fatalf("no trend for locality %s", locality)
	return analysis.TrendResult{}
}
