// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchlog reads the CSV-like logs written by time-dependent
// schema benchmarks.
//
// A log starts with a header line naming its columns, for example
//
//	timestep,label,group,name,weight,mean,cost,standard_error
//
// followed by one line per measured statement and time step. The name
// and weight columns may contain commas and are then quoted. Benchmark
// drivers that restart mid-run re-emit the header; such lines are
// dropped.
//
// Unlike a streaming format, a log is always consumed whole: Load
// returns every record of a file or an error, never a prefix.
package benchlog

import (
	"errors"
	"fmt"
)

// ErrMalformedInput is matched (via errors.Is) by every error caused
// by the content of a log rather than by I/O.
var ErrMalformedInput = errors.New("malformed input")

// A SyntaxError reports a malformed line in a benchmark log.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrMalformedInput
}

// Sentinel values of the group and name columns.
const (
	// Total is the group and name of a time step's grand total row,
	// and the name of each group's subtotal row.
	Total = "TOTAL"
)

// A Record is one measurement row of a log.
type Record struct {
	// Timestep is the discrete simulation time index.
	Timestep int

	// Label identifies the benchmark run. It is the label column if
	// the log has one, otherwise the label the log was loaded with.
	Label string

	// Group is a table or transaction group name, or Total.
	Group string

	// Name identifies the statement. Rows named Total hold
	// frequency-weighted subtotals.
	Name string

	// Weight is the unparsed weight cell; see ParseWeights.
	Weight string

	// Mean is the measured latency in seconds.
	Mean float64

	// Cost is the estimated cost, or NaN if none was recorded.
	Cost float64

	// StdErr is the standard error of Mean. It is only meaningful
	// if the log's Schema has a standard_error column.
	StdErr float64

	// MiddleMean is the trimmed mean, or NaN.
	MiddleMean float64

	// Line is the 1-based line this record was read from.
	Line int
}

// IsTotal reports whether r is a subtotal or grand total row.
func (r *Record) IsTotal() bool {
	return r.Name == Total
}

// A Schema describes the columns of one log.
type Schema struct {
	// Columns is the header, in order.
	Columns []string

	pos map[string]int
}

// Column names understood by the reader.
const (
	colTimestep   = "timestep"
	colLabel      = "label"
	colGroup      = "group"
	colName       = "name"
	colWeight     = "weight"
	colMean       = "mean"
	colCost       = "cost"
	colStdErr     = "standard_error"
	colMiddleMean = "middle_mean"
)

var requiredColumns = []string{colTimestep, colGroup, colName, colWeight, colMean}

func newSchema(columns []string) (*Schema, string) {
	s := &Schema{Columns: columns, pos: make(map[string]int)}
	for i, c := range columns {
		if _, dup := s.pos[c]; dup {
			return nil, fmt.Sprintf("duplicate column %q", c)
		}
		s.pos[c] = i
	}
	for _, c := range requiredColumns {
		if _, ok := s.pos[c]; !ok {
			return nil, fmt.Sprintf("missing %q column", c)
		}
	}
	return s, ""
}

// Index returns the position of column name, or -1.
func (s *Schema) Index(name string) int {
	if i, ok := s.pos[name]; ok {
		return i
	}
	return -1
}

// HasStdErr reports whether records carry a standard error.
func (s *Schema) HasStdErr() bool { return s.Index(colStdErr) >= 0 }

// HasCost reports whether the log has a cost column.
func (s *Schema) HasCost() bool { return s.Index(colCost) >= 0 }

// HasLabel reports whether records carry their own run label.
func (s *Schema) HasLabel() bool { return s.Index(colLabel) >= 0 }

// HasMiddleMean reports whether the log has a middle_mean column.
func (s *Schema) HasMiddleMean() bool { return s.Index(colMiddleMean) >= 0 }

// A Log is the complete content of one benchmark log file.
type Log struct {
	Label    string
	FileName string
	Schema   *Schema
	Records  []Record
}

// MaxTimestep returns the largest time step in l, or -1 if l has no
// records.
func (l *Log) MaxTimestep() int {
	max := -1
	for i := range l.Records {
		if l.Records[i].Timestep > max {
			max = l.Records[i].Timestep
		}
	}
	return max
}
