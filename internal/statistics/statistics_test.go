package statistics

import (
	"math"
	"testing"
)

func TestStatistics_Empty(t *testing.T) {
	stats := &Statistics{}

	if stats.Mean() != 0 {
		t.Errorf("Expected mean of 0 for empty stats, got %f", stats.Mean())
	}
	if stats.Variance() != 0 {
		t.Errorf("Expected variance of 0 for empty stats, got %f", stats.Variance())
	}
	if stats.StdError() != 0 {
		t.Errorf("Expected stderr of 0 for empty stats, got %f", stats.StdError())
	}
	if stats.Median() != 0 {
		t.Errorf("Expected median of 0 for empty stats, got %f", stats.Median())
	}
	if stats.Min() != 0 || stats.Max() != 0 {
		t.Errorf("Expected min/max of 0 for empty stats, got %f/%f", stats.Min(), stats.Max())
	}
}

func TestStatistics_SingleValue(t *testing.T) {
	stats := &Statistics{}
	stats.Add(7)

	if stats.Count != 1 {
		t.Errorf("Expected 1 value, got %d", stats.Count)
	}
	if stats.Mean() != 7 {
		t.Errorf("Expected mean of 7, got %f", stats.Mean())
	}
	if stats.Variance() != 0 {
		t.Errorf("Expected variance of 0 for single value, got %f", stats.Variance())
	}
	if stats.Median() != 7 {
		t.Errorf("Expected median of 7, got %f", stats.Median())
	}
	if stats.Min() != 7 || stats.Max() != 7 {
		t.Errorf("Expected min/max of 7, got %f/%f", stats.Min(), stats.Max())
	}
}

func TestStatistics_Distribution(t *testing.T) {
	stats := &Statistics{}
	for _, v := range []float64{6, 8, 10, 12} {
		stats.Add(v)
	}

	if stats.Mean() != 9 {
		t.Errorf("Expected mean of 9, got %f", stats.Mean())
	}
	// Sample variance of 6, 8, 10, 12 is 20/3
	if math.Abs(stats.Variance()-20.0/3) > 1e-9 {
		t.Errorf("Expected variance of %f, got %f", 20.0/3, stats.Variance())
	}
	if stats.Median() != 9 {
		t.Errorf("Expected median of 9, got %f", stats.Median())
	}
	if stats.Min() != 6 || stats.Max() != 12 {
		t.Errorf("Expected min 6 and max 12, got %f/%f", stats.Min(), stats.Max())
	}

	low, high := stats.ConfidenceInterval95()
	if low >= 9 || high <= 9 || math.Abs((9-low)-(high-9)) > 1e-9 {
		t.Errorf("Expected symmetric interval around 9, got [%f, %f]", low, high)
	}
}

func TestStatistics_Percentile(t *testing.T) {
	stats := &Statistics{}
	// Added out of order to check sorting
	for _, v := range []float64{5, 1, 4, 2, 3} {
		stats.Add(v)
	}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.25, 2},
		{0.5, 3},
		{0.9, 4.6},
		{1, 5},
	}
	for _, tt := range tests {
		if got := stats.Percentile(tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Percentile(%v) = %f, want %f", tt.p, got, tt.want)
		}
	}

	if stats.Values[0] != 5 {
		t.Error("Percentile must not reorder the stored values")
	}
}

func TestStatistics_ConstantSample(t *testing.T) {
	stats := &Statistics{}
	for range 1000 {
		stats.Add(0.1)
	}
	if stats.Variance() < 0 {
		t.Errorf("Variance must not be negative, got %g", stats.Variance())
	}
}

func TestStatistics_Merge(t *testing.T) {
	a, b := &Statistics{}, &Statistics{}
	a.Add(1)
	b.Add(3)
	b.Add(5)
	a.Merge(b)

	if a.Count != 3 || a.Mean() != 3 || a.Max() != 5 || a.Min() != 1 {
		t.Errorf("Unexpected merged stats: count=%d mean=%f min=%f max=%f", a.Count, a.Mean(), a.Min(), a.Max())
	}
}
