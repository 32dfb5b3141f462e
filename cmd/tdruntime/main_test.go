// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const optimizerOutput = `optimizer output
<running time log> ===========================
START,START_CF_ENUMERATION,END_CF_ENUMERATION,START_QUERY_PLAN_ENUMERATION,END_QUERY_PLAN_ENUMERATION,START_MIGRATION_PLAN_ENUMERATION,END_MIGRATION_PLAN_ENUMERATION,START_PRUNING,END_PRUNING,START_WHOLE_OPTIMIZATION,END_WHOLE_OPTIMIZATION,END
0,1000,3000,3000,4500,4500,5000,,,5000,9000,10000
</running time log> ===========================
`

func TestRuntime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tpch.log")
	if err := os.WriteFile(path, []byte(optimizerOutput), 0666); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "running_time.png")

	var stdout, stderr bytes.Buffer
	if err := tdruntime(&stdout, &stderr, []string{"-o", out, "tpch=" + path}); err != nil {
		t.Fatalf("tdruntime: %v\n%s", err, stderr.String())
	}
	lines := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("want header and one row, got:\n%s", stdout.String())
	}
	wantHeader := []string{"run", "CF_ENUMERATION", "PLAN_ENUMERATION", "MIGPLAN_ENUMERATION", "PRUNING", "OPTIMIZATION", "OTHER"}
	if got := strings.Fields(lines[0]); !reflect.DeepEqual(got, wantHeader) {
		t.Errorf("header = %q, want %q", got, wantHeader)
	}
	wantRow := []string{"tpch", "2.000", "1.500", "0.500", "0.000", "4.000", "2.000"}
	if got := strings.Fields(lines[1]); !reflect.DeepEqual(got, wantRow) {
		t.Errorf("row = %q, want %q", got, wantRow)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("chart not written: %v", err)
	}
}

func TestRuntimeErrors(t *testing.T) {
	dir := t.TempDir()
	noBlock := filepath.Join(dir, "empty.log")
	if err := os.WriteFile(noBlock, []byte("nothing here\n"), 0666); err != nil {
		t.Fatal(err)
	}
	for _, args := range [][]string{
		{},
		{noBlock},
		{filepath.Join(dir, "missing.log")},
	} {
		var stdout, stderr bytes.Buffer
		if err := tdruntime(&stdout, &stderr, args); err == nil {
			t.Errorf("tdruntime %q: want error", args)
		}
	}
}
