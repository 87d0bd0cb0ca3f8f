// internal/domain/analysis/ratio.go
package analysis

// PercentChange applies the single zero-division policy shared by the change
// calculator and the regime cross-tabulator:
//
//	prev == 0 && curr == 0  ->  numeric 0 (stable, not undefined)
//	prev == 0 && curr  > 0  ->  categorical new occurrence, never Inf or NaN
//	otherwise               ->  (curr - prev) / prev * 100
func PercentChange(fromYear, toYear, prev, curr int) Change {
	c := Change{FromYear: fromYear, ToYear: toYear}
	if prev == 0 {
		if curr == 0 {
			c.Kind = ChangePercent
			c.Percent = 0
			return c
		}
		c.Kind = ChangeNewOccurrence
		return c
	}
	c.Kind = ChangePercent
	c.Percent = float64(curr-prev) / float64(prev) * 100
	return c
}

// Share returns part/whole as a percentage, or 0 when whole is zero.
func Share(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
