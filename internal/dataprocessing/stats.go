package dataprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// madScale makes the median absolute deviation comparable to a standard deviation
// for normally distributed data.
const madScale = 0.6745

// present returns the non-NaN values of x.
func present(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// sortedPresent returns the non-NaN values of x in ascending order.
func sortedPresent(x []float64) []float64 {
	out := present(x)
	sort.Float64s(out)
	return out
}

// quantile interpolates linearly between closest ranks, the convention of
// pandas and numpy. sorted must be ascending and free of NaN.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// median of the non-NaN values of x; NaN when there are none.
func median(x []float64) float64 {
	return quantile(sortedPresent(x), 0.5)
}

// meanStd returns the mean and standard deviation of the non-NaN values of x.
// ddof selects the divisor n-ddof: 0 for the population, 1 for the sample.
// The deviation is 0 when fewer than ddof+1 values are present.
func meanStd(x []float64, ddof int) (mean, std float64) {
	vals := present(x)
	n := len(vals)
	if n == 0 {
		return math.NaN(), 0
	}
	if n <= ddof || n < 2 {
		return stat.Mean(vals, nil), 0
	}
	mean, sampleVar := stat.MeanVariance(vals, nil)
	variance := sampleVar * float64(n-1) / float64(n-ddof)
	return mean, math.Sqrt(variance)
}

// zScores computes (x-mean)/std with the population deviation. Missing cells and
// columns with zero deviation score 0.
func zScores(x []float64) []float64 {
	scores := make([]float64, len(x))
	mean, std := meanStd(x, 0)
	if std == 0 || math.IsNaN(std) {
		return scores
	}
	for i, v := range x {
		if !math.IsNaN(v) {
			scores[i] = (v - mean) / std
		}
	}
	return scores
}

// modifiedZScores computes 0.6745*(x-median)/MAD. Missing cells and columns whose
// MAD is zero score 0.
func modifiedZScores(x []float64) []float64 {
	scores := make([]float64, len(x))
	med := median(x)
	if math.IsNaN(med) {
		return scores
	}

	deviations := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			deviations = append(deviations, math.Abs(v-med))
		}
	}
	mad := median(deviations)
	if mad == 0 || math.IsNaN(mad) {
		return scores
	}

	for i, v := range x {
		if !math.IsNaN(v) {
			scores[i] = madScale * (v - med) / mad
		}
	}
	return scores
}
