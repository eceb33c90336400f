package stats

import (
	"math"
	"sort"
)

// MADScale rescales the median absolute deviation to be comparable with a
// standard deviation under a normal distribution.
const MADScale = 1.4826

// Mean calculates the arithmetic mean of a slice of float64 values
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

// WeightedMean calculates the weighted mean
func WeightedMean(values, weights []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sumWeighted, sumWeights float64
	for i, v := range values {
		w := 1.0
		if i < len(weights) {
			w = weights[i]
		}
		sumWeighted += v * w
		sumWeights += w
	}

	if sumWeights == 0 {
		return Mean(values)
	}

	return sumWeighted / sumWeights
}

// Median calculates the median value
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	// Copy to avoid modifying the original slice
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// MAD calculates the median absolute deviation
func MAD(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	median := Median(values)
	deviations := make([]float64, len(values))
	for i, v := range values {
		deviations[i] = math.Abs(v - median)
	}

	return Median(deviations)
}

// RobustThreshold returns median + k·1.4826·MAD, the robust upper bound
// used for anomaly flagging
func RobustThreshold(values []float64, k float64) (median, mad, threshold float64) {
	median = Median(values)
	mad = MAD(values)
	threshold = median + k*MADScale*mad
	return
}

// Quantile calculates the q-th quantile (0 <= q <= 1) with linear
// interpolation between closest ranks
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := float64(len(sorted))
	index := q * (n - 1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Min returns the minimum value
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the maximum value
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
