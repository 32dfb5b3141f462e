// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"
)

func printRecords(rs []Record) string {
	var b strings.Builder
	for _, r := range rs {
		fmt.Fprintf(&b, "%d %s %q %q %q %v %v %v %v\n", r.Timestep, r.Label, r.Group, r.Name, r.Weight, r.Mean, r.Cost, r.StdErr, r.MiddleMean)
	}
	return b.String()
}

func TestReader(t *testing.T) {
	type testCase struct {
		name, input, want string
	}
	for _, test := range []testCase{
		{
			"basic",
			`timestep,group,name,weight,mean,cost,standard_error
0,GroupA,"SELECT -- q1","[0.5,0.5]",0.023,0.019,0.001
1,GroupA,"SELECT -- q1","[0.5,0.5]",0.025,,0.002
`,
			`0 run "GroupA" "SELECT -- q1" "[0.5,0.5]" 0.023 0.019 0.001 NaN
1 run "GroupA" "SELECT -- q1" "[0.5,0.5]" 0.025 NaN 0.002 NaN
`,
		},
		{
			"driver layout",
			`timestep,label,group,name,weight,mean,cost,standard_error,middle_mean,values
0,v1,items,"UPDATE items SET a = ?, b = ? -- u1",[1.0],0.5,3,0.1,0.45,"[0.4, 0.5]"
0,,TOTAL,TOTAL,1.0,0.5,,NaN,,[]
`,
			`0 v1 "items" "UPDATE items SET a = ?, b = ? -- u1" "[1.0]" 0.5 3 0.1 0.45
0 run "TOTAL" "TOTAL" "1.0" 0.5 NaN NaN NaN
`,
		},
		{
			"no optional columns",
			"timestep,group,name,weight,mean\n3,G,SELECT q,1,2\n",
			`3 run "G" "SELECT q" "1" 2 NaN NaN NaN
`,
		},
		{
			"duplicate header",
			`timestep,group,name,weight,mean
0,G,"SELECT -- q","[1.0]",2.0
timestep,group,name,weight,mean
0,TOTAL,TOTAL,"[1.0]",2.0
`,
			`0 run "G" "SELECT -- q" "[1.0]" 2 NaN NaN NaN
0 run "TOTAL" "TOTAL" "[1.0]" 2 NaN NaN NaN
`,
		},
		{
			"escaped quotes and CRLF",
			"timestep,group,name,weight,mean\r\n0, G ,\"SELECT \"\"x\"\", y\",1,1.5\r\n",
			`0 run "G" "SELECT \"x\", y" "1" 1.5 NaN NaN NaN
`,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			l, err := Load(strings.NewReader(test.input), "test", "run")
			if err != nil {
				t.Fatal(err)
			}
			if got := printRecords(l.Records); got != test.want {
				t.Errorf("want:\n%sgot:\n%s", test.want, got)
			}
		})
	}
}

func TestReaderErrors(t *testing.T) {
	for _, test := range []struct {
		name, input, want string
	}{
		{"empty", "", "test:0: empty log: missing header"},
		{"missing column", "timestep,group,name,mean\n", `test:1: header: missing "weight" column`},
		{"blank line", "timestep,group,name,weight,mean\n0,G,SELECT a,[1],1\n\n1,G,SELECT a,[1],2\n", "test:3: have 1 fields, header has 5"},
		{"space line", "timestep,group,name,weight,mean\n0,G,SELECT a,[1],1\n   \n1,G,SELECT a,[1],2\n", "test:3: have 1 fields, header has 5"},
		{"short row", "timestep,group,name,weight,mean\n0,G,SELECT,1\n", "test:2: have 4 fields, header has 5"},
		{"long row", "timestep,group,name,weight,mean\n0,G,SELECT q,1,2,3\n", "test:2: have 6 fields, header has 5"},
		{"bad timestep", "timestep,group,name,weight,mean\n0,G,SELECT,1,1\nx,G,SELECT,1,2\n", `test:3: bad timestep "x"`},
		{"negative timestep", "timestep,group,name,weight,mean\n-1,G,SELECT,1,2\n", `test:2: bad timestep "-1"`},
		{"bad mean", "timestep,group,name,weight,mean\n0,G,SELECT,1,\n", `test:2: bad mean ""`},
		{"bad cost", "timestep,group,name,weight,mean,cost\n0,G,SELECT,1,1,abc\n", `test:2: bad cost "abc"`},
		{"unterminated", "timestep,group,name,weight,mean\n0,G,\"SELECT,1,1\n", "test:2: unterminated quoted field"},
		{"junk after quote", "timestep,group,name,weight,mean\n0,G,\"SELECT\"x,1,1\n", "test:2: unexpected text after quoted field"},
	} {
		t.Run(test.name, func(t *testing.T) {
			l, err := Load(strings.NewReader(test.input), "test", "run")
			if err == nil {
				t.Fatalf("want error %q, got %d records", test.want, len(l.Records))
			}
			if l != nil {
				t.Errorf("partial result returned with error")
			}
			if err.Error() != test.want {
				t.Errorf("want error %q, got %q", test.want, err)
			}
			if !errors.Is(err, ErrMalformedInput) {
				t.Errorf("error %v does not match ErrMalformedInput", err)
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Errorf("error %v is not a *SyntaxError", err)
			}
		})
	}
}

func TestLoadDeterministic(t *testing.T) {
	const input = `timestep,group,name,weight,mean,cost,standard_error
0,A,"SELECT -- q1","[0.5,0.5]",0.1,,0.01
0,A,"INSERT -- i1","[0.5,0.5]",0.2,2,0.02
1,A,"SELECT -- q1","[0.5,0.5]",0.3,1,NaN
`
	l1, err := Load(strings.NewReader(input), "f", "a")
	if err != nil {
		t.Fatal(err)
	}
	l2, err := Load(strings.NewReader(input), "f", "a")
	if err != nil {
		t.Fatal(err)
	}
	// NaN defeats DeepEqual, so compare the printed form as well as
	// the remaining structure.
	if p1, p2 := printRecords(l1.Records), printRecords(l2.Records); p1 != p2 {
		t.Errorf("parses differ:\n%s\n%s", p1, p2)
	}
	if !reflect.DeepEqual(l1.Schema, l2.Schema) {
		t.Errorf("schemas differ: %+v, %+v", l1.Schema, l2.Schema)
	}
	if !l1.Schema.HasStdErr() || !l1.Schema.HasCost() || l1.Schema.HasMiddleMean() || l1.Schema.HasLabel() {
		t.Errorf("wrong schema flags for %v", l1.Schema.Columns)
	}
	if got := l1.MaxTimestep(); got != 1 {
		t.Errorf("MaxTimestep = %d, want 1", got)
	}
	if !math.IsNaN(l1.Records[2].StdErr) {
		t.Errorf("StdErr = %v, want NaN", l1.Records[2].StdErr)
	}
}

func TestSplitFields(t *testing.T) {
	for _, test := range []struct {
		in   string
		want []string
	}{
		{"", []string{""}},
		{"a", []string{"a"}},
		{"a,,b,", []string{"a", "", "b", ""}},
		{` a , b `, []string{"a", "b"}},
		{`"a,b",c`, []string{"a,b", "c"}},
		{`"a""b" , "c"`, []string{`a"b`, "c"}},
		{`"[0.5, 0.5]"`, []string{"[0.5, 0.5]"}},
	} {
		got, msg := splitFields(test.in)
		if msg != "" {
			t.Errorf("splitFields(%q): %s", test.in, msg)
			continue
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("splitFields(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

func TestParseWeights(t *testing.T) {
	for _, test := range []struct {
		in   string
		want []float64
	}{
		{"[0.5,0.5]", []float64{0.5, 0.5}},
		{" [0.25, 0.75, 1] ", []float64{0.25, 0.75, 1}},
		{"[]", []float64{}},
		{"1.0", []float64{1}},
	} {
		got, err := ParseWeights(test.in)
		if err != nil {
			t.Errorf("ParseWeights(%q): %v", test.in, err)
			continue
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("ParseWeights(%q) = %v, want %v", test.in, got, test.want)
		}
	}
	for _, bad := range []string{"", "[0.5,", "x", "[\"a\"]"} {
		if _, err := ParseWeights(bad); !errors.Is(err, ErrMalformedInput) {
			t.Errorf("ParseWeights(%q): want ErrMalformedInput, got %v", bad, err)
		}
	}

	r := Record{Weight: "[0.1,0.2]"}
	if w, err := r.WeightAt(1); err != nil || w != 0.2 {
		t.Errorf("WeightAt(1) = %v, %v, want 0.2", w, err)
	}
	if _, err := r.WeightAt(2); err == nil {
		t.Errorf("WeightAt(2) succeeded on a two-step list")
	}
	r.Weight = "0.3"
	if w, err := r.WeightAt(7); err != nil || w != 0.3 {
		t.Errorf("WeightAt(7) = %v, %v, want 0.3", w, err)
	}
}
