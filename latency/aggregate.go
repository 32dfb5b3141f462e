// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latency

import (
	"fmt"
	"math"
	"strings"

	"github.com/aclements/go-moremath/stats"
	"github.com/tdnose/tdlatency/benchlog"
	"github.com/tdnose/tdlatency/statement"
)

// nanSeries returns a series of n NaNs.
func nanSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// byStep collects the metric of the records of r matching keep, per
// time step.
func (a *Analysis) byStep(r *Run, keep func(*benchlog.Record) bool) [][]float64 {
	vals := make([][]float64, a.Steps())
	recs := r.Records()
	for i := range recs {
		if keep(&recs[i]) {
			vals[recs[i].Timestep] = append(vals[recs[i].Timestep], a.Metric.value(&recs[i]))
		}
	}
	return vals
}

// QueryLatency returns the mean latency of the SELECT statements of r
// at each time step.
func (a *Analysis) QueryLatency(r *Run) []float64 {
	out := nanSeries(a.Steps())
	vals := a.byStep(r, func(rec *benchlog.Record) bool {
		return statement.Classify(rec.Name) == statement.Select
	})
	for t, xs := range vals {
		if len(xs) > 0 {
			out[t] = stats.Mean(xs)
		}
	}
	return out
}

// StatementCount returns, per time step, the number of distinct
// statements of group g in r. Statement names are compared up to the
// first "for", so that the per-partition variants of one statement
// count once.
func (a *Analysis) StatementCount(r *Run, g string) []int {
	names := make([]map[string]bool, a.Steps())
	recs := r.Records()
	for i := range recs {
		rec := &recs[i]
		if rec.Group != g || rec.IsTotal() {
			continue
		}
		if names[rec.Timestep] == nil {
			names[rec.Timestep] = make(map[string]bool)
		}
		base, _, _ := strings.Cut(rec.Name, "for")
		names[rec.Timestep][base] = true
	}
	counts := make([]int, len(names))
	for t, m := range names {
		counts[t] = len(m)
	}
	return counts
}

// GroupLatency returns the latency of group g in r at each time step:
// the sum over the group's statements divided by StatementCount.
func (a *Analysis) GroupLatency(r *Run, g string) []float64 {
	out := nanSeries(a.Steps())
	counts := a.StatementCount(r, g)
	vals := a.byStep(r, func(rec *benchlog.Record) bool {
		return rec.Group == g && !rec.IsTotal()
	})
	for t, xs := range vals {
		if counts[t] == 0 {
			continue
		}
		sum := 0.0
		for _, x := range xs {
			sum += x
		}
		out[t] = sum / float64(counts[t])
	}
	return out
}

// UpsertLatency returns the summed INSERT and UPDATE latency of r at
// each time step, divided by the number of upsert buckets. A run
// without upsert buckets yields the single-element series [0].
func (a *Analysis) UpsertLatency(r *Run) []float64 {
	n := r.Index.UpsertBuckets()
	if n == 0 {
		return []float64{0}
	}
	out := nanSeries(a.Steps())
	vals := a.byStep(r, func(rec *benchlog.Record) bool {
		return statement.Classify(rec.Name).IsUpsert()
	})
	for t := 0; t <= r.MaxTimestep; t++ {
		sum := 0.0
		for _, x := range vals[t] {
			sum += x
		}
		out[t] = sum / float64(n)
	}
	return out
}

// A PlanCount is the number of records of one upsert bucket per time
// step.
type PlanCount struct {
	Bucket string
	Counts []int
}

// PlanCounts returns the record counts of every upsert bucket of r.
func (a *Analysis) PlanCounts(r *Run) []PlanCount {
	var pcs []PlanCount
	recs := r.Records()
	for _, b := range r.Index.Buckets() {
		if !strings.Contains(b, "INSERT") && !strings.Contains(b, "UPDATE") {
			continue
		}
		pc := PlanCount{Bucket: b, Counts: make([]int, a.Steps())}
		for _, i := range r.Index.BucketRecords(b) {
			pc.Counts[recs[i].Timestep]++
		}
		pcs = append(pcs, pc)
	}
	return pcs
}

// WeightedGroupLatency returns the frequency-weighted latency of group g
// in r at each time step, given the run's step weights W (see
// StepWeights).
//
// The value at step t is the group's subtotal row divided by
// StatementCount, scaled by StatementCount/W[t] so that weights summing
// to less than 1 do not understate latency. A step with rows but no
// subtotal row uses the sum of weight[t]·latency over the group's rows
// as its subtotal.
func (a *Analysis) WeightedGroupLatency(r *Run, g string, W []float64) ([]float64, error) {
	subtotals, err := a.subtotals(r, g)
	if err != nil {
		return nil, err
	}
	counts := a.StatementCount(r, g)
	out := nanSeries(a.Steps())
	for t := range out {
		if counts[t] == 0 {
			continue
		}
		total := subtotals[t]
		if math.IsNaN(total) {
			if total, err = a.weightedSum(r, g, t); err != nil {
				return nil, err
			}
		}
		wt, err := weightAt(W, t)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Log.FileName, err)
		}
		if wt == 0 {
			return nil, fmt.Errorf("%s: time step %d has total weight 0: %w", r.Log.FileName, t, ErrInconsistentWeights)
		}
		sc := float64(counts[t])
		out[t] = (total / sc) * (sc / wt)
	}
	return out, nil
}

// subtotals returns the subtotal row of group g at each time step, or
// NaN where there is none.
func (a *Analysis) subtotals(r *Run, g string) ([]float64, error) {
	out := nanSeries(a.Steps())
	seen := make([]bool, a.Steps())
	line := make([]int, a.Steps())
	recs := r.Records()
	for i := range recs {
		rec := &recs[i]
		if rec.Group != g || !rec.IsTotal() {
			continue
		}
		if seen[rec.Timestep] {
			return nil, fmt.Errorf("%s:%d: group %s time step %d (first at line %d): %w", r.Log.FileName, rec.Line, g, rec.Timestep, line[rec.Timestep], ErrDuplicateTotal)
		}
		seen[rec.Timestep] = true
		line[rec.Timestep] = rec.Line
		out[rec.Timestep] = a.Metric.value(rec)
	}
	return out, nil
}

// weightedSum returns the sum of weight[t]·latency over the statements
// of group g at time step t.
func (a *Analysis) weightedSum(r *Run, g string, t int) (float64, error) {
	sum := 0.0
	recs := r.Records()
	for i := range recs {
		rec := &recs[i]
		if rec.Group != g || rec.IsTotal() || rec.Timestep != t {
			continue
		}
		w, err := rec.WeightAt(t)
		if err != nil {
			return 0, &benchlog.SyntaxError{FileName: r.Log.FileName, Line: rec.Line, Msg: err.Error()}
		}
		sum += w * a.Metric.value(rec)
	}
	return sum, nil
}

// WeightedTotal returns the frequency-weighted latency of r at each time
// step: the sum of WeightedGroupLatency over every group of the
// analysis except the grand total group. Groups absent from r, and
// steps where a group has no rows, contribute nothing. A step no group
// contributes to is NaN.
func (a *Analysis) WeightedTotal(r *Run) ([]float64, error) {
	W, err := a.StepWeights(r)
	if err != nil {
		return nil, err
	}
	out := nanSeries(a.Steps())
	for _, g := range a.Groups() {
		if !r.HasGroup(g) {
			continue
		}
		gl, err := a.WeightedGroupLatency(r, g, W)
		if err != nil {
			return nil, err
		}
		for t, v := range gl {
			switch {
			case math.IsNaN(v):
			case math.IsNaN(out[t]):
				out[t] = v
			default:
				out[t] += v
			}
		}
	}
	return out, nil
}

// WeightedTotals returns WeightedTotal for every run, in input order.
func (a *Analysis) WeightedTotals() ([]Series, error) {
	var ss []Series
	for _, r := range a.Runs {
		vals, err := a.WeightedTotal(r)
		if err != nil {
			return nil, err
		}
		ss = append(ss, Series{Label: r.Label, Values: vals})
	}
	return ss, nil
}
