// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Clean copies the record lines of raw benchmark output from r to w.
// A line is kept if it splits into exactly fields fields and its first
// field is "timestep" or an unsigned integer. Everything else the
// benchmark printed, including lines that fail to split, is dropped.
func Clean(r io.Reader, w io.Writer, fields int) error {
	s := bufio.NewScanner(r)
	s.Buffer(nil, maxLineLen)
	bw := bufio.NewWriter(w)
	for s.Scan() {
		line := strings.TrimSuffix(s.Text(), "\r")
		f, msg := splitFields(line)
		if msg != "" || len(f) != fields {
			continue
		}
		if f[0] != colTimestep && !isUint(f[0]) {
			continue
		}
		bw.WriteString(line)
		bw.WriteByte('\n')
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("reading benchmark output: %w", err)
	}
	return bw.Flush()
}

func isUint(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
