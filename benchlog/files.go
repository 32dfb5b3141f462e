// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Files loads one log per path, in order.
//
// By default, a log's label is its file's base name up to the first
// ".", with duplicate labels disambiguated by appending "#N". If
// AllowLabels is true, entries in Paths may be of the form label=path,
// and the label part is used as given.
type Files struct {
	// Paths is the list of logs to read.
	Paths []string

	// AllowLabels indicates that custom labels are allowed in
	// Paths. This is generally the desired behavior when the list
	// comes from command-line arguments.
	AllowLabels bool

	// Open opens a path. If nil, os.Open is used.
	Open func(path string) (io.ReadCloser, error)
}

type input struct {
	path      string
	label     string
	isLabeled bool
}

func (f *Files) inputs() []input {
	var inputs []input
	labelCount := make(map[string]int)
	for _, path := range f.Paths {
		inp := input{path: path}
		if i := strings.Index(path, "="); f.AllowLabels && i >= 0 {
			inp.label, inp.path = path[:i], path[i+1:]
			inp.isLabeled = true
		} else {
			inp.label = defaultLabel(path)
			labelCount[inp.label]++
		}
		inputs = append(inputs, inp)
	}

	// Two runs with one label would be overlaid as one series.
	labelI := make(map[string]int)
	for i := range inputs {
		inp := &inputs[i]
		if inp.isLabeled || labelCount[inp.label] == 1 {
			continue
		}
		l := inp.label
		inp.label = fmt.Sprintf("%s#%d", l, labelI[l])
		labelI[l]++
	}
	return inputs
}

// defaultLabel derives a run label from a path.
func defaultLabel(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}

// Load reads every log. It fails on the first unreadable or malformed
// log.
func (f *Files) Load() ([]*Log, error) {
	open := f.Open
	if open == nil {
		open = func(path string) (io.ReadCloser, error) { return os.Open(path) }
	}
	var logs []*Log
	for _, inp := range f.inputs() {
		r, err := open(inp.path)
		if err != nil {
			return nil, err
		}
		l, err := Load(r, inp.path, inp.label)
		r.Close()
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, nil
}
