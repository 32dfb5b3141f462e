// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latency

import (
	"fmt"
	"math"

	"github.com/tdnose/tdlatency/benchlog"
)

// round5 rounds x to 5 decimal places.
func round5(x float64) float64 {
	return math.Round(x*1e5) / 1e5
}

// StepWeights returns the total execution weight of r at each time
// step.
//
// Each statement row carries its weights for every time step. Summing
// these lists over the rows of one time step gives the total weight per
// step; the benchmark fixes the workload mix up front, so every time
// step must arrive at the same totals (to 5 decimal places). The result
// is that common vector. A single-element result applies to every step.
func (a *Analysis) StepWeights(r *Run) ([]float64, error) {
	sums := make([][]float64, r.MaxTimestep+1)
	first := make([]int, r.MaxTimestep+1)
	recs := r.Records()
	for i := range recs {
		rec := &recs[i]
		if rec.IsTotal() {
			continue
		}
		ws, err := benchlog.ParseWeights(rec.Weight)
		if err != nil {
			return nil, &benchlog.SyntaxError{FileName: r.Log.FileName, Line: rec.Line, Msg: err.Error()}
		}
		t := rec.Timestep
		if sums[t] == nil {
			sums[t] = append([]float64{}, ws...)
			first[t] = rec.Line
			continue
		}
		if len(ws) != len(sums[t]) {
			return nil, fmt.Errorf("%s:%d: %d weights, line %d has %d: %w", r.Log.FileName, rec.Line, len(ws), first[t], len(sums[t]), ErrInconsistentWeights)
		}
		for j, w := range ws {
			sums[t][j] = round5(sums[t][j] + w)
		}
	}

	var W []float64
	wStep := -1
	for t, s := range sums {
		if s == nil {
			continue
		}
		if W == nil {
			W, wStep = s, t
			continue
		}
		if !sameWeights(W, s) {
			return nil, fmt.Errorf("%s: weights of time step %d %v differ from time step %d %v: %w", r.Log.FileName, t, s, wStep, W, ErrInconsistentWeights)
		}
	}
	if W == nil {
		return nil, fmt.Errorf("%s: no statement weights: %w", r.Log.FileName, ErrInconsistentWeights)
	}
	if len(W) != 1 && len(W) < r.MaxTimestep+1 {
		return nil, fmt.Errorf("%s: %d weights for %d time steps: %w", r.Log.FileName, len(W), r.MaxTimestep+1, ErrInconsistentWeights)
	}
	return W, nil
}

func sameWeights(x, y []float64) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if round5(x[i]) != round5(y[i]) {
			return false
		}
	}
	return true
}

// weightAt returns the weight of W at time step t.
func weightAt(W []float64, t int) (float64, error) {
	if len(W) == 1 {
		return W[0], nil
	}
	if t >= len(W) {
		return 0, fmt.Errorf("no weight for time step %d: %w", t, ErrInconsistentWeights)
	}
	return W[t], nil
}
