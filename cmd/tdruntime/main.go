// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Tdruntime reports how long each phase of schema optimization took.
//
// Usage:
//
//	tdruntime [-o chart.pdf] [label=]output.log...
//
// Each input is the output of one optimizer run containing a
// "<running time log>" block. Tdruntime prints the seconds spent in
// each phase of every run, and with -o draws them as stacked bars.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/tdnose/tdlatency/benchlog"
	"github.com/tdnose/tdlatency/chart"
	"github.com/tdnose/tdlatency/internal/texttab"
)

func main() {
	log.SetPrefix("tdruntime: ")
	log.SetFlags(0)
	if err := tdruntime(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func tdruntime(w, wErr io.Writer, args []string) error {
	flags := flag.NewFlagSet("tdruntime", flag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: tdruntime [flags] [label=]output.log...\n")
		flags.PrintDefaults()
	}
	flagOut := flags.String("o", "", "draw the phases as stacked bars into `file`")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return fmt.Errorf("no input files")
	}

	var (
		labels []string
		phases [][]benchlog.Phase
	)
	for _, arg := range flags.Args() {
		label, path, ok := strings.Cut(arg, "=")
		if !ok {
			label, path = arg, arg
		}
		ps, err := readPhases(path)
		if err != nil {
			return err
		}
		labels = append(labels, label)
		phases = append(phases, ps)
	}

	var tab texttab.Table
	tab.Row().Cell("run")
	for _, name := range benchlog.PhaseNames {
		tab.Cell(name, texttab.Right)
	}
	for i, ps := range phases {
		tab.Row().Cell(labels[i])
		for _, p := range ps {
			tab.Cell(strconv.FormatFloat(p.Seconds, 'f', 3, 64), texttab.Right)
		}
	}
	if err := tab.Format(w); err != nil {
		return err
	}

	if *flagOut != "" {
		return chart.RunningTime(*flagOut, labels, phases, chart.Width, chart.Height)
	}
	return nil
}

func readPhases(path string) ([]benchlog.Phase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rt, err := benchlog.ReadRunningTime(f, path)
	if err != nil {
		return nil, err
	}
	return rt.Phases()
}
