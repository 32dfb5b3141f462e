// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compare compares the frequency-weighted total latency of
// benchmark runs.
package compare

import (
	"errors"
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/tdnose/tdlatency/latency"
	"gonum.org/v1/gonum/floats"
)

// ErrZeroTotal reports a run whose total latency is zero and so cannot
// be compared against.
var ErrZeroTotal = errors.New("zero total latency")

// A Total is the summed weighted latency of one run over all time
// steps.
type Total struct {
	Label string
	Total float64
}

// A Pair compares two runs.
type Pair struct {
	Numerator, Denominator string
	NumTotal, DenTotal     float64

	// Ratio is NumTotal/DenTotal.
	Ratio float64

	// PercentReduction is how much less latency Numerator has than
	// Denominator, in percent. It is negative if Numerator is slower.
	PercentReduction float64

	// StepGeoMean is the geometric mean of the per-step ratios, over
	// the steps where both runs have a positive value. It is NaN if
	// there are none.
	StepGeoMean float64
}

// Plans are the upsert plan counts of one run.
type Plans struct {
	Label  string
	Counts []latency.PlanCount
}

// A Report is the comparison of a set of runs.
type Report struct {
	// Plans, if set, is printed ahead of the comparison.
	Plans []Plans

	// Totals lists each run in input order.
	Totals []Total

	// Pairs lists every ordered pair of distinct runs.
	Pairs []Pair
}

// sum adds the non-NaN values of xs.
func sum(xs []float64) float64 {
	var keep []float64
	for _, x := range xs {
		if !math.IsNaN(x) {
			keep = append(keep, x)
		}
	}
	return floats.Sum(keep)
}

// Runs compares the weighted total series of several runs. Each series
// is summed over its time steps (NaN steps contribute nothing), and
// every ordered pair (a, b) with a != b is reported in input order.
func Runs(series []latency.Series) (*Report, error) {
	r := &Report{}
	for _, s := range series {
		r.Totals = append(r.Totals, Total{s.Label, sum(s.Values)})
	}
	for i, a := range r.Totals {
		for j, b := range r.Totals {
			if i == j {
				continue
			}
			if b.Total == 0 {
				return nil, fmt.Errorf("comparing %s with %s: %s: %w", a.Label, b.Label, b.Label, ErrZeroTotal)
			}
			ratio := a.Total / b.Total
			r.Pairs = append(r.Pairs, Pair{
				Numerator:        a.Label,
				Denominator:      b.Label,
				NumTotal:         a.Total,
				DenTotal:         b.Total,
				Ratio:            ratio,
				PercentReduction: (1 - ratio) * 100,
				StepGeoMean:      stepGeoMean(series[i].Values, series[j].Values),
			})
		}
	}
	return r, nil
}

func stepGeoMean(a, b []float64) float64 {
	var ratios []float64
	for t := 0; t < len(a) && t < len(b); t++ {
		if a[t] > 0 && b[t] > 0 {
			ratios = append(ratios, a[t]/b[t])
		}
	}
	if len(ratios) == 0 {
		return math.NaN()
	}
	return stats.GeoMean(ratios)
}
