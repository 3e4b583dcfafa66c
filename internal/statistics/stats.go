// Package statistics summarises latency samples from repeated simulation runs.
package statistics

import (
	"math"
	"slices"
)

type Stats struct {
	N      int     `json:"n"`
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P95    float64 `json:"p95"`
	CV     float64 `json:"cvPercent"` // coefficient of variation
}

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

// StdDev is the sample standard deviation.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)-1))
}

// Percentile uses linear interpolation between closest ranks. p is in [0, 100].
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	p = math.Max(0, math.Min(100, p))
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func Calculate(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	s := Stats{
		N:      len(sorted),
		Median: percentileSorted(sorted, 50),
		Mean:   Mean(sorted),
		StdDev: StdDev(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		P95:    percentileSorted(sorted, 95),
	}
	if s.Mean != 0 {
		s.CV = s.StdDev / math.Abs(s.Mean) * 100
	}
	return s
}
