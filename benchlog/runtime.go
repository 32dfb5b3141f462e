// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Delimiters of the running time block in schema optimizer output.
const (
	runningTimeBegin = "<running time log> ==========================="
	runningTimeEnd   = "</running time log> ==========================="
)

// RunningTime holds the event timestamps of one optimizer run, in
// milliseconds, keyed by event name (for example "START_PRUNING").
type RunningTime struct {
	FileName string
	Events   map[string]int64
}

// A Phase is a named part of an optimizer run.
type Phase struct {
	Name    string
	Seconds float64
}

// PhaseNames lists the phases reported by RunningTime.Phases, in
// order. "OTHER" is everything not covered by another phase.
var PhaseNames = []string{"CF_ENUMERATION", "PLAN_ENUMERATION", "MIGPLAN_ENUMERATION", "PRUNING", "OPTIMIZATION", "OTHER"}

var phaseEvents = map[string]string{
	"CF_ENUMERATION":      "CF_ENUMERATION",
	"PLAN_ENUMERATION":    "QUERY_PLAN_ENUMERATION",
	"MIGPLAN_ENUMERATION": "MIGRATION_PLAN_ENUMERATION",
	"PRUNING":             "PRUNING",
	"OPTIMIZATION":        "WHOLE_OPTIMIZATION",
}

// ReadRunningTime extracts the running time block from optimizer
// output. The block is a header line of event names followed by a line
// of millisecond timestamps; an empty timestamp counts as 0. Lines after
// the first value line are ignored.
func ReadRunningTime(r io.Reader, fileName string) (*RunningTime, error) {
	s := bufio.NewScanner(r)
	s.Buffer(nil, maxLineLen)
	var block []string
	var blockLine int
	in := false
	for line := 1; s.Scan(); line++ {
		text := strings.TrimSuffix(s.Text(), "\r")
		if text == runningTimeEnd {
			in = false
		}
		if in {
			if block == nil {
				blockLine = line
			}
			block = append(block, text)
		}
		if text == runningTimeBegin {
			in = true
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	if len(block) < 2 {
		return nil, &SyntaxError{fileName, blockLine, "no running time block"}
	}

	names, msg := splitFields(block[0])
	if msg != "" {
		return nil, &SyntaxError{fileName, blockLine, msg}
	}
	values, msg := splitFields(block[1])
	if msg != "" {
		return nil, &SyntaxError{fileName, blockLine + 1, msg}
	}
	if len(names) != len(values) {
		return nil, &SyntaxError{fileName, blockLine + 1, fmt.Sprintf("have %d values for %d events", len(values), len(names))}
	}
	rt := &RunningTime{FileName: fileName, Events: make(map[string]int64, len(names))}
	for i, name := range names {
		var v int64
		if values[i] != "" {
			var err error
			if v, err = strconv.ParseInt(values[i], 10, 64); err != nil {
				return nil, &SyntaxError{fileName, blockLine + 1, fmt.Sprintf("bad time %q for %s", values[i], name)}
			}
		}
		rt.Events[name] = v
	}
	return rt, nil
}

func (rt *RunningTime) span(event string) (int64, error) {
	start, ok1 := rt.Events["START_"+event]
	end, ok2 := rt.Events["END_"+event]
	if !ok1 || !ok2 {
		return 0, fmt.Errorf("%s: missing START_%s or END_%s: %w", rt.FileName, event, event, ErrMalformedInput)
	}
	return end - start, nil
}

// Phases returns the duration of each of PhaseNames, in seconds.
func (rt *RunningTime) Phases() ([]Phase, error) {
	start, ok1 := rt.Events["START"]
	end, ok2 := rt.Events["END"]
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%s: missing START or END: %w", rt.FileName, ErrMalformedInput)
	}
	other := end - start
	var phases []Phase
	for _, name := range PhaseNames[:len(PhaseNames)-1] {
		ms, err := rt.span(phaseEvents[name])
		if err != nil {
			return nil, err
		}
		other -= ms
		phases = append(phases, Phase{name, float64(ms) / 1000})
	}
	phases = append(phases, Phase{"OTHER", float64(other) / 1000})
	return phases, nil
}
