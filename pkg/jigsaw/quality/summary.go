package quality

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a set of scores.
type Summary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Median float64
}

// Summarize reports the distribution of scores. The zero Summary is
// returned for an empty slice.
func Summarize(scores []float64) Summary {
	if len(scores) == 0 {
		return Summary{}
	}
	sorted := slices.Clone(scores)
	slices.Sort(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) == 1 {
		std = 0
	}
	return Summary{
		Count:  len(sorted),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		Mean:   mean,
		StdDev: std,
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}
}

// Below counts the scores strictly below threshold.
func Below(scores []float64, threshold float64) int {
	n := 0
	for _, s := range scores {
		if s < threshold {
			n++
		}
	}
	return n
}
