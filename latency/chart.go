// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latency

import (
	"fmt"
	"math"
	"strings"

	"github.com/aclements/go-moremath/stats"
	"github.com/tdnose/tdlatency/statement"
)

// A Series is the per-step values of one run.
type Series struct {
	Label  string
	Values []float64

	// Err holds error bar half-widths parallel to Values, or is nil
	// if the series has no error bars.
	Err []float64
}

// A Chart is an ordered set of series to draw together.
type Chart struct {
	Title          string
	XLabel, YLabel string
	Series         []Series
}

const xLabel = "timestep"

// WeightedTotalChart charts WeightedTotal of every run.
func (a *Analysis) WeightedTotalChart() (*Chart, error) {
	ss, err := a.WeightedTotals()
	if err != nil {
		return nil, err
	}
	const title = "Frequency weighted average latency [s]"
	return &Chart{Title: title, XLabel: xLabel, YLabel: title, Series: ss}, nil
}

// GroupCharts returns one chart of GroupLatency per group.
func (a *Analysis) GroupCharts() []*Chart {
	var cs []*Chart
	for _, g := range a.Groups() {
		c := &Chart{XLabel: xLabel, YLabel: "Average latency of " + g + " [s]"}
		for _, r := range a.Runs {
			c.Series = append(c.Series, Series{Label: r.Label, Values: a.GroupLatency(r, g)})
		}
		cs = append(cs, c)
	}
	return cs
}

// QueryChart charts QueryLatency of every run.
func (a *Analysis) QueryChart() *Chart {
	c := &Chart{XLabel: xLabel, YLabel: "Average Query Latency [s]"}
	for _, r := range a.Runs {
		c.Series = append(c.Series, Series{Label: r.Label, Values: a.QueryLatency(r)})
	}
	return c
}

// UpsertChart charts UpsertLatency of every run.
func (a *Analysis) UpsertChart() *Chart {
	c := &Chart{Title: "Average Insert Latency [s]", XLabel: xLabel, YLabel: "Average Insert Latency [s]"}
	for _, r := range a.Runs {
		c.Series = append(c.Series, Series{Label: r.Label, Values: a.UpsertLatency(r)})
	}
	return c
}

// StatementCharts returns, for each SELECT statement of the first run,
// a latency chart with error bars of two standard errors and a chart of
// the estimated cost. INSERT, UPDATE and TOTAL series are skipped; any
// other statement is an error.
func (a *Analysis) StatementCharts() ([]*Chart, error) {
	var cs []*Chart
	first := a.Runs[0]
	for _, k := range first.Index.Keys() {
		switch statement.KindOf(k) {
		case statement.Insert, statement.Update, statement.Total:
			continue
		case statement.Select:
		default:
			rec := &first.Records()[first.Index.Series(k)[0]]
			return nil, fmt.Errorf("%s:%d: %q: %w", first.Log.FileName, rec.Line, k.Name, ErrUnrecognizedStatement)
		}

		title := k.Name
		if _, after, ok := strings.Cut(k.Name, "--"); ok {
			title = strings.TrimSpace(after)
		}
		latency := &Chart{Title: title, XLabel: "time step", YLabel: "Latency [s]"}
		cost := &Chart{Title: "COST\n" + k.String(), XLabel: "time step", YLabel: "Estimated Cost"}
		for _, r := range a.Runs {
			latency.Series = append(latency.Series, a.statementSeries(r, k, true))
			cost.Series = append(cost.Series, a.statementSeries(r, k, false))
		}
		cs = append(cs, latency, cost)
	}
	return cs, nil
}

// statementSeries returns the latency (or, if !latency, the cost) of
// series k of r per time step.
func (a *Analysis) statementSeries(r *Run, k statement.Key, latency bool) Series {
	s := Series{Label: r.Label, Values: nanSeries(a.Steps())}
	recs := r.Records()
	vals := make([][]float64, a.Steps())
	errs := make([][]float64, a.Steps())
	for _, i := range r.Index.Series(k) {
		rec := &recs[i]
		v := rec.Cost
		if latency {
			v = a.Metric.value(rec)
		}
		vals[rec.Timestep] = append(vals[rec.Timestep], v)
		errs[rec.Timestep] = append(errs[rec.Timestep], rec.StdErr)
	}
	for t, xs := range vals {
		if len(xs) > 0 {
			s.Values[t] = stats.Mean(xs)
		}
	}
	if !latency || !r.Log.Schema.HasStdErr() || len(r.Index.Series(k)) == 0 {
		return s
	}
	s.Err = make([]float64, a.Steps())
	for t, es := range errs {
		if len(es) == 0 {
			continue
		}
		se := stats.Mean(es)
		if math.IsNaN(se) {
			// Draw no error bars rather than partial ones.
			s.Err = nil
			return s
		}
		s.Err[t] = 2 * se
	}
	return s
}
