// Package stats computes the summary statistics and histogram data the
// simulation reports per scenario.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a sample of response times.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Max   float64 `json:"max"`
	P99   float64 `json:"p99"`
	P90   float64 `json:"p90"`
	P50   float64 `json:"p50"`
}

// Summarise computes mean, max and the 99th/90th/50th percentiles of the
// sample. The zero Summary is returned for an empty sample.
func Summarise(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return Summary{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		Max:   sorted[len(sorted)-1],
		P99:   stat.Quantile(0.99, stat.Empirical, sorted, nil),
		P90:   stat.Quantile(0.90, stat.Empirical, sorted, nil),
		P50:   stat.Quantile(0.50, stat.Empirical, sorted, nil),
	}
}

// Histogram is binned sample data ready for plotting.
type Histogram struct {
	// Edges has one more entry than Counts; bin i spans
	// [Edges[i], Edges[i+1]).
	Edges  []float64 `json:"edges"`
	Counts []float64 `json:"counts"`
}

// Bin sorts the sample into the given number of equal-width bins. An empty
// sample yields an empty histogram.
func Bin(values []float64, bins int) Histogram {
	if len(values) == 0 || bins <= 0 {
		return Histogram{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		// Degenerate sample: one bin of unit width around the value.
		hi = lo + 1
	}
	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)
	// Nudge the top edge so the sample maximum falls inside the last bin.
	edges[bins] = math.Nextafter(edges[bins], math.Inf(1))
	counts := stat.Histogram(nil, edges, sorted, nil)
	return Histogram{Edges: edges, Counts: counts}
}
