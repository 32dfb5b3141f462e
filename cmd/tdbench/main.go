// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Tdbench aggregates and compares time-dependent benchmark logs.
//
// Usage:
//
//	tdbench [flags] log.csv [log.csv ...]
//
// Each input is the CSV log of one benchmark run: a header line naming
// the columns, then one row per statement series and time step. Inputs
// may be local paths or gs://bucket/object URLs, and may be written as
// label=path to name the run; otherwise the run is named after the
// file, up to its first ".".
//
// Tdbench prints the upsert plan counts of each run, the summed
// frequency-weighted latency of each run, and the ratio of every pair
// of runs:
//
//	$ tdbench base.csv tuned.csv
//	=base
//	  --Aggregated-INSERT INTO orders
//	      [3, 3, 3]
//	TOTAL diff
//	label  total [s]
//	base         9.2
//	tuned        4.6
//
//	label1 / label2   ratio   reduced  step geomean
//	base / tuned     2.0000  -100.00%        2.0000
//	tuned / base     0.5000   +50.00%        0.5000
//
// The -format flag selects csv or html output for the comparison
// instead.
//
// With -o, tdbench also draws the charts of the analysis into the given
// directory: the weighted total latency, the average latency of each
// statement group, of all queries and of all inserts, and the latency
// and estimated cost of every query series. The -ext flag selects the
// image format.
//
// With -db driver:dsn, the charts and the comparison are stored in a
// MySQL or SQLite database, for example -db sqlite3:results.db.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	gcs "cloud.google.com/go/storage"
	_ "github.com/go-sql-driver/mysql"
	"github.com/tdnose/tdlatency/benchlog"
	"github.com/tdnose/tdlatency/chart"
	"github.com/tdnose/tdlatency/compare"
	"github.com/tdnose/tdlatency/internal/texttab"
	"github.com/tdnose/tdlatency/latency"
	"github.com/tdnose/tdlatency/statement"
	"github.com/tdnose/tdlatency/store"
	_ "github.com/tdnose/tdlatency/store/sqlite3"
)

func main() {
	log.SetPrefix("tdbench: ")
	log.SetFlags(0)
	if err := tdbench(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

// totalTolerance is the relative tolerance of -check-totals.
const totalTolerance = 1e-6

func tdbench(w, wErr io.Writer, args []string) error {
	flags := flag.NewFlagSet("tdbench", flag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: tdbench [flags] [label=]log.csv...\n")
		flags.PrintDefaults()
	}
	var (
		flagOut        = flags.String("o", "", "draw charts into `dir`")
		flagExt        = flags.String("ext", "pdf", "chart image `format`: pdf, png, svg")
		flagFormat     = flags.String("format", "text", "print comparison as `format`: text, csv, html")
		flagDB         = flags.String("db", "", "store the analysis in `driver:dsn` (mysql or sqlite3)")
		flagConcatKeys = flags.Bool("concat-keys", false, "key statement series by the concatenated group and name")
		flagCheck      = flags.Bool("check-totals", false, "check that TOTAL rows agree with the weighted rows")
		flagR2         = flags.Bool("r2", false, "print how well estimated costs predict latency")
		flagMetric     = flags.String("metric", "mean", "latency `column`: mean or middle_mean")
		flagVerbose    = flags.Bool("v", false, "print verbose log messages")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return fmt.Errorf("no input logs")
	}
	metric, err := latency.ParseMetric(*flagMetric)
	if err != nil {
		return err
	}
	var format func(io.Writer, *compare.Report) error
	switch *flagFormat {
	case "text":
		format = compare.FormatText
	case "csv":
		format = compare.FormatCSV
	case "html":
		format = compare.FormatHTML
	default:
		return fmt.Errorf("unknown -format %q", *flagFormat)
	}

	ctx := context.Background()
	opener := &gcsOpener{ctx: ctx}
	defer opener.Close()
	files := benchlog.Files{Paths: flags.Args(), AllowLabels: true, Open: opener.Open}
	logs, err := files.Load()
	if err != nil {
		return err
	}
	var runs []*latency.Run
	for _, l := range logs {
		if *flagVerbose {
			fmt.Fprintf(wErr, "%s: %s, %d records\n", l.Label, l.FileName, len(l.Records))
		}
		runs = append(runs, latency.NewRun(l, statement.Options{ConcatKeys: *flagConcatKeys}))
	}
	a, err := latency.NewAnalysis(runs, metric)
	if err != nil {
		return err
	}
	if *flagCheck {
		for _, r := range runs {
			if err := latency.CheckTotals(r, totalTolerance); err != nil {
				return err
			}
		}
	}

	totals, err := a.WeightedTotalChart()
	if err != nil {
		return err
	}
	report, err := compare.Runs(totals.Series)
	if err != nil {
		return err
	}
	for _, r := range runs {
		report.Plans = append(report.Plans, compare.Plans{Label: r.Label, Counts: a.PlanCounts(r)})
	}
	// Statement charts fail on unrecognized statements; build them
	// before printing anything.
	var charts []*latency.Chart
	if *flagOut != "" || *flagDB != "" {
		charts, err = allCharts(a, totals)
		if err != nil {
			return err
		}
	}
	if err := format(w, report); err != nil {
		return err
	}
	if *flagR2 {
		if err := printFits(w, runs); err != nil {
			return err
		}
	}

	if *flagOut != "" {
		if err := drawCharts(wErr, *flagOut, *flagExt, charts, *flagVerbose); err != nil {
			return err
		}
	}
	if *flagDB != "" {
		driver, dsn, ok := strings.Cut(*flagDB, ":")
		if !ok {
			return fmt.Errorf("-db %q: want driver:dsn", *flagDB)
		}
		db, err := store.OpenSQL(driver, dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		an, err := db.SaveAnalysis(ctx, a.Labels(), charts, report)
		if err != nil {
			return err
		}
		fmt.Fprintf(wErr, "saved analysis %d\n", an.ID)
	}
	return nil
}

// allCharts returns every chart of a, starting with totals.
func allCharts(a *latency.Analysis, totals *latency.Chart) ([]*latency.Chart, error) {
	charts := []*latency.Chart{totals}
	charts = append(charts, a.GroupCharts()...)
	charts = append(charts, a.QueryChart(), a.UpsertChart())
	stmts, err := a.StatementCharts()
	if err != nil {
		return nil, err
	}
	return append(charts, stmts...), nil
}

// drawCharts saves charts into dir. Charts without data are skipped
// with a warning.
func drawCharts(wErr io.Writer, dir, ext string, charts []*latency.Chart, verbose bool) error {
	if err := os.MkdirAll(dir, 0777); err != nil {
		return err
	}
	seen := make(map[string]int)
	for _, c := range charts {
		name := chart.FileName(c, ext)
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%s#%d.%s", strings.TrimSuffix(name, "."+ext), n, ext)
		}
		seen[chart.FileName(c, ext)]++
		path := filepath.Join(dir, name)
		err := chart.Save(c, path, chart.Width, chart.Height)
		if errors.Is(err, chart.ErrNoData) {
			fmt.Fprintf(wErr, "skipping %s: %v\n", name, err)
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if verbose {
			fmt.Fprintf(wErr, "wrote %s\n", path)
		}
	}
	return nil
}

func printFits(w io.Writer, runs []*latency.Run) error {
	var tab texttab.Table
	tab.Row().Cell("label").Cell("statement").Cell("R²", texttab.Right)
	for _, r := range runs {
		for _, f := range latency.CostFit(r) {
			tab.Row().Cell(r.Label).Cell(f.Key.String()).Cell(fmt.Sprintf("%.4f", f.R2), texttab.Right)
		}
	}
	if _, err := fmt.Fprintf(w, "\n"); err != nil {
		return err
	}
	return tab.Format(w)
}

// gcsOpener opens local files, and gs://bucket/object URLs through a
// Cloud Storage client created on first use.
type gcsOpener struct {
	ctx    context.Context
	client *gcs.Client
}

func (o *gcsOpener) Open(path string) (io.ReadCloser, error) {
	rest, ok := strings.CutPrefix(path, "gs://")
	if !ok {
		return os.Open(path)
	}
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return nil, fmt.Errorf("%s: want gs://bucket/object", path)
	}
	if o.client == nil {
		c, err := gcs.NewClient(o.ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		o.client = c
	}
	r, err := o.client.Bucket(bucket).Object(object).NewReader(o.ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

func (o *gcsOpener) Close() error {
	if o.client == nil {
		return nil
	}
	return o.client.Close()
}
