// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestFiles(t *testing.T) {
	const content = "timestep,group,name,weight,mean\n0,G,SELECT q,1,1\n"
	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.log.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0666); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0777); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "a.csv"), []byte(content), 0666); err != nil {
		t.Fatal(err)
	}
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.log.txt")
	subA := filepath.Join(dir, "sub", "a.csv")

	check := func(t *testing.T, f *Files, want []string) {
		t.Helper()
		logs, err := f.Load()
		if err != nil {
			t.Fatal(err)
		}
		var got []string
		for _, l := range logs {
			got = append(got, l.Label)
			if l.Records[0].Label != l.Label {
				t.Errorf("record label %q, log label %q", l.Records[0].Label, l.Label)
			}
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("want labels %q, got %q", want, got)
		}
	}

	t.Run("basic", func(t *testing.T) {
		check(t, &Files{Paths: []string{a, b}}, []string{"a", "b"})
	})
	t.Run("duplicates", func(t *testing.T) {
		check(t, &Files{Paths: []string{a, b, subA}}, []string{"a#0", "b", "a#1"})
	})
	t.Run("labels", func(t *testing.T) {
		check(t, &Files{Paths: []string{"base=" + a, "new=" + a, b}, AllowLabels: true}, []string{"base", "new", "b"})
	})
	t.Run("labels not allowed", func(t *testing.T) {
		_, err := (&Files{Paths: []string{"base=" + a}}).Load()
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("want ErrNotExist, got %v", err)
		}
	})
	t.Run("opener", func(t *testing.T) {
		var opened []string
		f := &Files{
			Paths: []string{"gs://bucket/x.csv"},
			Open: func(path string) (io.ReadCloser, error) {
				opened = append(opened, path)
				return io.NopCloser(strings.NewReader(content)), nil
			},
		}
		check(t, f, []string{"x"})
		if !reflect.DeepEqual(opened, []string{"gs://bucket/x.csv"}) {
			t.Errorf("opened %q", opened)
		}
	})
	t.Run("malformed", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.csv")
		if err := os.WriteFile(bad, []byte("timestep,group,name,weight,mean\nx,G,S,1,1\n"), 0666); err != nil {
			t.Fatal(err)
		}
		logs, err := (&Files{Paths: []string{a, bad}}).Load()
		if !errors.Is(err, ErrMalformedInput) || logs != nil {
			t.Errorf("want ErrMalformedInput and no logs, got %d logs, %v", len(logs), err)
		}
	})
}
