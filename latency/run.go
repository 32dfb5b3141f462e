// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package latency computes per-time-step latency aggregates over
// benchmark runs.
//
// An Analysis holds one or more runs in input order. Every per-step
// series it produces has one value per time step from 0 to the
// largest time step of any run, so the series of different runs can be
// overlaid directly. A step with no contributing rows is NaN unless an
// aggregate defines otherwise.
package latency

import (
	"errors"
	"fmt"

	"github.com/tdnose/tdlatency/benchlog"
	"github.com/tdnose/tdlatency/statement"
)

var (
	// ErrInconsistentWeights reports per-step weight totals that
	// differ between time steps or do not line up.
	ErrInconsistentWeights = errors.New("inconsistent weights")

	// ErrDuplicateTotal reports two subtotal rows for one group and
	// time step.
	ErrDuplicateTotal = errors.New("duplicate TOTAL row")

	// ErrUnrecognizedStatement reports a statement that is none of
	// SELECT, INSERT, UPDATE or TOTAL.
	ErrUnrecognizedStatement = errors.New("unrecognized statement kind")

	// ErrTotalMismatch reports a subtotal row that disagrees with
	// the rows it summarizes.
	ErrTotalMismatch = errors.New("TOTAL row does not match its rows")
)

// Metric selects the measured value that latency aggregates use.
type Metric int

const (
	// Mean is the arithmetic mean of a statement's executions.
	Mean Metric = iota
	// MiddleMean is the trimmed mean, where the log records one.
	MiddleMean
)

// ParseMetric parses a metric name as it appears in a log header.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "mean":
		return Mean, nil
	case "middle_mean":
		return MiddleMean, nil
	}
	return 0, fmt.Errorf("unknown metric %q", s)
}

func (m Metric) value(r *benchlog.Record) float64 {
	if m == MiddleMean {
		return r.MiddleMean
	}
	return r.Mean
}

// A Run is one benchmark log together with its statement index.
type Run struct {
	Label       string
	Log         *benchlog.Log
	Index       *statement.Index
	MaxTimestep int

	groups []string
}

// NewRun indexes a loaded log.
func NewRun(l *benchlog.Log, opts statement.Options) *Run {
	r := &Run{
		Label:       l.Label,
		Log:         l,
		Index:       statement.NewIndex(l.Records, opts),
		MaxTimestep: l.MaxTimestep(),
	}
	seen := make(map[string]bool)
	for i := range l.Records {
		if g := l.Records[i].Group; !seen[g] {
			seen[g] = true
			r.groups = append(r.groups, g)
		}
	}
	return r
}

// Records returns the records of r in file order.
func (r *Run) Records() []benchlog.Record {
	return r.Log.Records
}

// Groups returns the groups of r, including the grand total group, in
// order of first appearance.
func (r *Run) Groups() []string {
	return r.groups
}

// HasGroup reports whether any record of r belongs to group g.
func (r *Run) HasGroup(g string) bool {
	for _, have := range r.groups {
		if have == g {
			return true
		}
	}
	return false
}

// An Analysis is a fixed set of runs sharing one time horizon.
type Analysis struct {
	Runs []*Run

	// MaxTimestep is the largest time step of any run.
	MaxTimestep int

	// Metric is the measured value to aggregate.
	Metric Metric
}

// NewAnalysis returns an Analysis over runs, which must be non-empty
// and each hold at least one record.
func NewAnalysis(runs []*Run, metric Metric) (*Analysis, error) {
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs to analyze")
	}
	a := &Analysis{Runs: runs, MaxTimestep: -1, Metric: metric}
	for _, r := range runs {
		if len(r.Records()) == 0 {
			return nil, fmt.Errorf("%s: no records: %w", r.Log.FileName, benchlog.ErrMalformedInput)
		}
		if metric == MiddleMean && !r.Log.Schema.HasMiddleMean() {
			return nil, fmt.Errorf("%s: no middle_mean column: %w", r.Log.FileName, benchlog.ErrMalformedInput)
		}
		if r.MaxTimestep > a.MaxTimestep {
			a.MaxTimestep = r.MaxTimestep
		}
	}
	return a, nil
}

// Steps returns the length of every per-step series of a.
func (a *Analysis) Steps() int {
	return a.MaxTimestep + 1
}

// Labels returns the run labels in input order.
func (a *Analysis) Labels() []string {
	labels := make([]string, len(a.Runs))
	for i, r := range a.Runs {
		labels[i] = r.Label
	}
	return labels
}

// Groups returns the union of the groups of all runs, except the grand
// total group, in order of first appearance.
func (a *Analysis) Groups() []string {
	var groups []string
	seen := map[string]bool{benchlog.Total: true}
	for _, r := range a.Runs {
		for _, g := range r.groups {
			if !seen[g] {
				seen[g] = true
				groups = append(groups, g)
			}
		}
	}
	return groups
}
