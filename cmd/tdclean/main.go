// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Tdclean extracts the CSV log from raw benchmark output.
//
// Usage:
//
//	tdclean [-fields n] [file...]
//
// Tdclean copies to standard output the lines of its inputs, or of
// standard input if there are none, that have exactly n fields and
// start with "timestep" or a time step number. The result can be given
// to tdbench.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/tdnose/tdlatency/benchlog"
)

func main() {
	log.SetPrefix("tdclean: ")
	log.SetFlags(0)
	if err := tdclean(os.Stdin, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func tdclean(stdin io.Reader, w, wErr io.Writer, args []string) error {
	flags := flag.NewFlagSet("tdclean", flag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: tdclean [flags] [file...]\n")
		flags.PrintDefaults()
	}
	flagFields := flags.Int("fields", 10, "keep lines with `n` fields")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *flagFields <= 0 {
		return fmt.Errorf("-fields must be positive")
	}
	if flags.NArg() == 0 {
		return benchlog.Clean(stdin, w, *flagFields)
	}
	for _, path := range flags.Args() {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		err = benchlog.Clean(f, w, *flagFields)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
