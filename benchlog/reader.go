// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// A Reader reads records from a benchmark log.
//
// Its API is modeled on bufio.Scanner. The first malformed line stops
// the Reader; Err reports it.
type Reader struct {
	s        *bufio.Scanner
	fileName string
	label    string
	line     int

	header string
	schema *Schema

	rec Record
	err error
}

// maxLineLen bounds a single log line. Weight lists of long runs can
// get large.
const maxLineLen = 16 << 20

// NewReader returns a Reader for the log in r. fileName is used in
// error messages; label is the run label assigned to records of a log
// without a label column.
func NewReader(r io.Reader, fileName, label string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName, label)
	return reader
}

// Reset resets the reader to begin reading from a new input.
func (r *Reader) Reset(ior io.Reader, fileName, label string) {
	s := bufio.NewScanner(ior)
	s.Buffer(nil, maxLineLen)
	*r = Reader{s: s, fileName: fileName, label: label}
}

func (r *Reader) newSyntaxError(format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{r.fileName, r.line, fmt.Sprintf(format, args...)}
}

// readHeader consumes the first line of the input.
func (r *Reader) readHeader() bool {
	if !r.s.Scan() {
		if err := r.s.Err(); err != nil {
			r.err = fmt.Errorf("%s: %w", r.fileName, err)
		} else {
			r.err = &SyntaxError{r.fileName, 0, "empty log: missing header"}
		}
		return false
	}
	r.line++
	r.header = strings.TrimSuffix(r.s.Text(), "\r")
	fields, err := splitFields(r.header)
	if err != "" {
		r.err = r.newSyntaxError("header: %s", err)
		return false
	}
	schema, msg := newSchema(fields)
	if msg != "" {
		r.err = r.newSyntaxError("header: %s", msg)
		return false
	}
	r.schema = schema
	return true
}

// Scan advances to the next record and reports whether one was read.
// When Scan returns false, the caller should consult Err.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	if r.schema == nil && !r.readHeader() {
		return false
	}
	for r.s.Scan() {
		r.line++
		line := strings.TrimSuffix(r.s.Text(), "\r")
		// Drivers that restart re-emit the header verbatim.
		if line == r.header {
			continue
		}
		if err := r.parseRecord(line); err != nil {
			r.err = err
			return false
		}
		return true
	}
	if err := r.s.Err(); err != nil {
		r.err = fmt.Errorf("%s:%d: %w", r.fileName, r.line, err)
	}
	return false
}

func (r *Reader) parseRecord(line string) *SyntaxError {
	fields, msg := splitFields(line)
	if msg != "" {
		return r.newSyntaxError("%s", msg)
	}
	if len(fields) != len(r.schema.Columns) {
		return r.newSyntaxError("have %d fields, header has %d", len(fields), len(r.schema.Columns))
	}
	s := r.schema
	rec := Record{
		Label:      r.label,
		Group:      fields[s.pos[colGroup]],
		Name:       fields[s.pos[colName]],
		Weight:     fields[s.pos[colWeight]],
		Cost:       math.NaN(),
		StdErr:     math.NaN(),
		MiddleMean: math.NaN(),
		Line:       r.line,
	}

	ts, err := strconv.Atoi(fields[s.pos[colTimestep]])
	if err != nil || ts < 0 {
		return r.newSyntaxError("bad timestep %q", fields[s.pos[colTimestep]])
	}
	rec.Timestep = ts

	if rec.Mean, err = strconv.ParseFloat(fields[s.pos[colMean]], 64); err != nil {
		return r.newSyntaxError("bad mean %q", fields[s.pos[colMean]])
	}
	if i := s.Index(colLabel); i >= 0 && fields[i] != "" {
		rec.Label = fields[i]
	}
	if i := s.Index(colCost); i >= 0 && fields[i] != "" {
		if rec.Cost, err = strconv.ParseFloat(fields[i], 64); err != nil {
			return r.newSyntaxError("bad cost %q", fields[i])
		}
	}
	if i := s.Index(colStdErr); i >= 0 {
		if rec.StdErr, err = strconv.ParseFloat(fields[i], 64); err != nil {
			return r.newSyntaxError("bad standard_error %q", fields[i])
		}
	}
	if i := s.Index(colMiddleMean); i >= 0 && fields[i] != "" {
		if rec.MiddleMean, err = strconv.ParseFloat(fields[i], 64); err != nil {
			return r.newSyntaxError("bad middle_mean %q", fields[i])
		}
	}
	r.rec = rec
	return nil
}

// Record returns the record read by the last successful Scan.
func (r *Reader) Record() Record {
	return r.rec
}

// Err returns the error that stopped Scan, or nil if Scan reached the
// end of a well-formed log.
func (r *Reader) Err() error {
	return r.err
}

// Schema returns the schema of the log, or nil before the header has
// been read.
func (r *Reader) Schema() *Schema {
	return r.schema
}

// Load reads a complete log. Either every record is returned or an
// error is; there are no partial results.
func Load(r io.Reader, fileName, label string) (*Log, error) {
	reader := NewReader(r, fileName, label)
	l := &Log{Label: label, FileName: fileName}
	for reader.Scan() {
		l.Records = append(l.Records, reader.Record())
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	l.Schema = reader.Schema()
	return l, nil
}

// splitFields splits a comma-separated line. A field may be enclosed
// in double quotes, in which case it may contain commas and doubled
// quotes. Unquoted fields are trimmed of surrounding spaces. On
// failure, msg describes the problem.
func splitFields(line string) (fields []string, msg string) {
	for {
		for len(line) > 0 && line[0] == ' ' {
			line = line[1:]
		}
		if len(line) > 0 && line[0] == '"' {
			var b strings.Builder
			i := 1
			for {
				j := strings.IndexByte(line[i:], '"')
				if j < 0 {
					return nil, "unterminated quoted field"
				}
				b.WriteString(line[i : i+j])
				i += j + 1
				if i < len(line) && line[i] == '"' {
					b.WriteByte('"')
					i++
					continue
				}
				break
			}
			fields = append(fields, b.String())
			line = strings.TrimLeft(line[i:], " ")
			if line == "" {
				return fields, ""
			}
			if line[0] != ',' {
				return nil, "unexpected text after quoted field"
			}
			line = line[1:]
			continue
		}
		field, rest, more := strings.Cut(line, ",")
		fields = append(fields, strings.TrimRight(field, " "))
		if !more {
			return fields, ""
		}
		line = rest
	}
}
