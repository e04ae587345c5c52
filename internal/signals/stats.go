package signals

import (
	"math"
	"sort"
	"time"

	"finpersona/internal/core"
)

// Median returns the median of values. Returns 0 for an empty slice.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Mean returns the arithmetic mean of values. Returns 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDevPop returns the population standard deviation of values.
func StdDevPop(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// Percentile returns the p-th percentile (0-100) of values using linear
// interpolation between closest ranks. Returns 0 for an empty slice.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// DayGaps returns the gaps in days between consecutive dates. The input is
// sorted internally, so gap computation is invariant to input order.
func DayGaps(dates []time.Time) []float64 {
	if len(dates) < 2 {
		return nil
	}
	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i].Sub(sorted[i-1]).Hours()/24)
	}
	return gaps
}

// ratioInBand returns the fraction of gaps falling inside [lo, hi].
func ratioInBand(gaps []float64, lo, hi float64) float64 {
	if len(gaps) == 0 {
		return 0
	}
	var in int
	for _, g := range gaps {
		if g >= lo && g <= hi {
			in++
		}
	}
	return float64(in) / float64(len(gaps))
}

// sortedByDate returns transactions sorted ascending by date without
// mutating the input.
func sortedByDate(txns []core.Transaction) []core.Transaction {
	sorted := make([]core.Transaction, len(txns))
	copy(sorted, txns)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	return sorted
}

// monthsInWindow converts a day window to months, with a floor of one month
// so short windows do not inflate monthly averages.
func monthsInWindow(windowDays int) float64 {
	months := float64(windowDays) / 30
	if months < 1 {
		return 1
	}
	return months
}
