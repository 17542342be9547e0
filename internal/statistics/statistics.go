// Package statistics accumulates a distribution of game results, such as
// the number of moves a level took to clear.
package statistics

import (
	"math"
	"sort"
)

// Statistics tracks a sample of values. The zero value is ready to use.
type Statistics struct {
	Count  int
	Sum    float64
	Sum2   float64   // Sum of squares for variance calculation
	Values []float64 // Store all values for median/percentile calculation

	min, max float64
}

// Add incorporates a new value
func (s *Statistics) Add(v float64) {
	if s.Count == 0 || v < s.min {
		s.min = v
	}
	if s.Count == 0 || v > s.max {
		s.max = v
	}
	s.Count++
	s.Sum += v
	s.Sum2 += v * v
	s.Values = append(s.Values, v)
}

// Merge adds every value of o.
func (s *Statistics) Merge(o *Statistics) {
	for _, v := range o.Values {
		s.Add(v)
	}
}

// Min returns the smallest value, or 0 when empty.
func (s *Statistics) Min() float64 { return s.min }

// Max returns the largest value, or 0 when empty.
func (s *Statistics) Max() float64 { return s.max }

// Mean returns the arithmetic mean
func (s *Statistics) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Variance returns the sample variance
func (s *Statistics) Variance() float64 {
	if s.Count < 2 {
		return 0
	}
	mean := s.Mean()
	v := (s.Sum2 - float64(s.Count)*mean*mean) / float64(s.Count-1)
	// Rounding can push a constant sample slightly negative.
	return math.Max(v, 0)
}

// StdDev returns the sample standard deviation
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Count))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median value
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0),
// interpolating between neighbours.
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
