// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseWeights parses the weight cell of a record. The cell is either
// a list of numbers such as "[0.5, 0.25]", holding one weight per time
// step, or a single number, which applies to every step and is
// returned as a one-element list.
func ParseWeights(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var ws []float64
		if err := json.Unmarshal([]byte(s), &ws); err != nil {
			return nil, fmt.Errorf("bad weight list %q: %w", s, ErrMalformedInput)
		}
		return ws, nil
	}
	w, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("bad weight %q: %w", s, ErrMalformedInput)
	}
	return []float64{w}, nil
}

// WeightAt returns the weight of r at time step t. A single weight
// applies to every step.
func (r *Record) WeightAt(t int) (float64, error) {
	ws, err := ParseWeights(r.Weight)
	if err != nil {
		return 0, err
	}
	if len(ws) == 1 {
		return ws[0], nil
	}
	if t < 0 || t >= len(ws) {
		return 0, fmt.Errorf("weight list of %d entries has no time step %d: %w", len(ws), t, ErrMalformedInput)
	}
	return ws[t], nil
}
