// Package stats summarizes the distribution of trial latencies
// collected for one flush policy
package stats

import (
	"fmt"
	"math"

	tdigest "github.com/caio/go-tdigest"
)

// compression of 100 keeps the tails accurate and the digest tiny
const digestCompression = 100

// Summary contains statistical measures for a set of trial latencies
type Summary struct {
	Count    int     // number of trials used to calculate these metrics
	MinMs    int64   // fastest trial in milliseconds
	MaxMs    int64   // slowest trial in milliseconds
	MeanMs   float64 // arithmetic mean in milliseconds
	StdDevMs float64 // population standard deviation in milliseconds
	P50Ms    float64 // median estimate in milliseconds
	P90Ms    float64 // 90th percentile estimate in milliseconds
	P99Ms    float64 // 99th percentile estimate in milliseconds
}

// Summarize computes a Summary over millis. an empty input yields the zero Summary.
func Summarize(millis []int64) (Summary, error) {
	if len(millis) == 0 {
		return Summary{}, nil
	}

	td, err := tdigest.New(tdigest.Compression(digestCompression))
	if err != nil {
		return Summary{}, fmt.Errorf("failed to create digest: %w", err)
	}

	// accumulate sums for mean and variance alongside the digest
	var sum, sumSquares float64
	s := Summary{
		Count: len(millis),
		MinMs: millis[0],
		MaxMs: millis[0],
	}
	for _, ms := range millis {
		v := float64(ms)
		if err := td.Add(v); err != nil {
			return Summary{}, fmt.Errorf("failed to add %d to digest: %w", ms, err)
		}
		sum += v
		sumSquares += v * v
		s.MinMs = min(s.MinMs, ms)
		s.MaxMs = max(s.MaxMs, ms)
	}

	n := float64(len(millis))
	s.MeanMs = sum / n

	// σ = √[(Σ(x²) - (Σ(x))²/n) / n]
	if len(millis) > 1 {
		variance := (sumSquares - sum*s.MeanMs) / n
		if variance >= 0 { // protect against floating point precision issues
			s.StdDevMs = math.Sqrt(variance)
		}
	}

	s.P50Ms = clamp(td.Quantile(0.50), s)
	s.P90Ms = clamp(td.Quantile(0.90), s)
	s.P99Ms = clamp(td.Quantile(0.99), s)

	return s, nil
}

// clamp keeps digest estimates inside the observed range
func clamp(q float64, s Summary) float64 {
	lo, hi := float64(s.MinMs), float64(s.MaxMs)
	if math.IsNaN(q) || q < lo {
		return lo
	}
	if q > hi {
		return hi
	}
	return q
}
