// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latency

import (
	"fmt"
	"math"

	"github.com/tdnose/tdlatency/benchlog"
	"github.com/tdnose/tdlatency/statement"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CheckTotals verifies that the subtotal rows of r are already
// weighted. Each group's subtotal must equal the sum of weight[t]·mean
// over the group's statements, and each grand total row the sum of the
// group subtotals at its step, within relative tolerance tol.
// Subtotal rows are otherwise trusted as given.
func CheckTotals(r *Run, tol float64) error {
	recs := r.Records()
	type groupStep struct {
		group string
		t     int
	}
	want := make(map[groupStep]float64)
	subtotals := make(map[int][]float64)
	for i := range recs {
		rec := &recs[i]
		if rec.Group == benchlog.Total {
			continue
		}
		if rec.IsTotal() {
			subtotals[rec.Timestep] = append(subtotals[rec.Timestep], rec.Mean)
			continue
		}
		w, err := rec.WeightAt(rec.Timestep)
		if err != nil {
			return &benchlog.SyntaxError{FileName: r.Log.FileName, Line: rec.Line, Msg: err.Error()}
		}
		want[groupStep{rec.Group, rec.Timestep}] += w * rec.Mean
	}

	for i := range recs {
		rec := &recs[i]
		if !rec.IsTotal() {
			continue
		}
		var exp float64
		if rec.Group == benchlog.Total {
			exp = floats.Sum(subtotals[rec.Timestep])
		} else {
			exp = want[groupStep{rec.Group, rec.Timestep}]
		}
		if math.Abs(exp-rec.Mean) > tol*math.Max(1, math.Abs(rec.Mean)) {
			return fmt.Errorf("%s:%d: %s total at time step %d is %v, rows give %v: %w", r.Log.FileName, rec.Line, rec.Group, rec.Timestep, rec.Mean, exp, ErrTotalMismatch)
		}
	}
	return nil
}

// A Fit is the agreement between estimated cost and measured latency of
// one statement series.
type Fit struct {
	Key statement.Key

	// R2 is the coefficient of determination of the costs as
	// predictors of the means. It is NaN if a cost is missing or the
	// series has fewer than two points.
	R2 float64
}

// CostFit returns the Fit of every non-total statement series of r, in
// order of first appearance.
func CostFit(r *Run) []Fit {
	var fits []Fit
	recs := r.Records()
	for _, k := range r.Index.Keys() {
		if statement.KindOf(k) == statement.Total {
			continue
		}
		pos := r.Index.Series(k)
		means := make([]float64, len(pos))
		costs := make([]float64, len(pos))
		for j, i := range pos {
			means[j], costs[j] = recs[i].Mean, recs[i].Cost
		}
		fit := Fit{Key: k, R2: math.NaN()}
		if len(pos) >= 2 && !floats.HasNaN(costs) {
			fit.R2 = stat.RSquaredFrom(costs, means, nil)
		}
		fits = append(fits, fit)
	}
	return fits
}
