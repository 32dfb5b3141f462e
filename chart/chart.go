// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart draws latency charts with gonum/plot.
//
// It only renders: every value it draws is computed by package latency.
package chart

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tdnose/tdlatency/benchlog"
	"github.com/tdnose/tdlatency/latency"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrNoData is returned for a chart without a single finite value.
var ErrNoData = errors.New("nothing to plot")

// Default chart size.
const (
	Width  = 7 * vg.Inch
	Height = 4 * vg.Inch
)

// titleWidth is the number of characters after which titles wrap.
const titleWidth = 90

func wrapTitle(title string) string {
	var b strings.Builder
	n := 0
	for _, r := range title {
		b.WriteRune(r)
		n++
		if n%titleWidth == 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// errPoints are points with symmetric error bars.
type errPoints struct {
	plotter.XYs
	plotter.YErrors
}

// segments splits vals into runs of consecutive finite values.
func segments(vals []float64) [][2]int {
	var segs [][2]int
	start := -1
	for i, v := range vals {
		finite := !math.IsNaN(v) && !math.IsInf(v, 0)
		switch {
		case finite && start < 0:
			start = i
		case !finite && start >= 0:
			segs = append(segs, [2]int{start, i})
			start = -1
		}
	}
	if start >= 0 {
		segs = append(segs, [2]int{start, len(vals)})
	}
	return segs
}

// Plot builds the plot of c. Each series is drawn as a line with point
// markers, broken at NaN values. Series with error bars get them when
// all their half-widths are finite.
func Plot(c *latency.Chart) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = wrapTitle(c.Title)
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Legend.Top = true

	ymax, steps := 0.0, 0
	drawn := false
	for i, s := range c.Series {
		if len(s.Values) > steps {
			steps = len(s.Values)
		}
		var thumbs []plot.Thumbnailer
		for _, seg := range segments(s.Values) {
			xys := make(plotter.XYs, seg[1]-seg[0])
			for j := range xys {
				xys[j].X = float64(seg[0] + j)
				xys[j].Y = s.Values[seg[0]+j]
				ymax = math.Max(ymax, xys[j].Y)
			}
			line, points, err := plotter.NewLinePoints(xys)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", s.Label, err)
			}
			line.Color = plotutil.Color(i)
			line.Width = vg.Points(1.2)
			points.Color = plotutil.Color(i)
			points.Shape = plotutil.Shape(i)
			points.Radius = vg.Points(2)
			p.Add(line, points)
			if thumbs == nil {
				thumbs = []plot.Thumbnailer{line, points}
			}
			drawn = true
		}
		if eb, ok, err := errorBars(s); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Label, err)
		} else if ok {
			eb.Color = plotutil.Color(i)
			p.Add(eb)
		}
		if thumbs != nil {
			p.Legend.Add(s.Label, thumbs...)
		}
	}
	if !drawn {
		return nil, fmt.Errorf("%q: %w", c.Title+c.YLabel, ErrNoData)
	}

	p.Y.Min = 0
	if ymax > 0 {
		p.Y.Max = ymax * 1.05
	}
	p.X.Min = 0
	if steps > 1 {
		p.X.Max = float64(steps - 1)
	}
	return p, nil
}

func errorBars(s latency.Series) (*plotter.YErrorBars, bool, error) {
	if s.Err == nil || len(s.Err) != len(s.Values) {
		return nil, false, nil
	}
	var pts errPoints
	for t, v := range s.Values {
		e := s.Err[t]
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return nil, false, nil
		}
		if math.IsNaN(v) {
			continue
		}
		pts.XYs = append(pts.XYs, plotter.XY{X: float64(t), Y: v})
		pts.YErrors = append(pts.YErrors, struct{ Low, High float64 }{e, e})
	}
	if len(pts.XYs) == 0 {
		return nil, false, nil
	}
	eb, err := plotter.NewYErrorBars(pts)
	if err != nil {
		return nil, false, err
	}
	return eb, true, nil
}

// Save draws c to path. The image format follows the extension of path
// (for example .pdf, .png or .svg).
func Save(c *latency.Chart, path string, w, h vg.Length) error {
	p, err := Plot(c)
	if err != nil {
		return err
	}
	return p.Save(w, h, path)
}

// FileName returns the base file name for c: the part of its title after
// the last "--" and its Y label, joined by "_".
func FileName(c *latency.Chart, ext string) string {
	title := c.Title
	if i := strings.LastIndex(title, "--"); i >= 0 {
		title = title[i+2:]
	}
	name := strings.TrimSpace(title) + "_" + strings.TrimSpace(c.YLabel)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '\n', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	return name + "." + ext
}

// RunningTime draws the optimizer phases of several runs as stacked
// bars, one bar per run.
func RunningTime(path string, names []string, phases [][]benchlog.Phase, w, h vg.Length) error {
	if len(names) == 0 || len(names) != len(phases) {
		return fmt.Errorf("%d names for %d runs: %w", len(names), len(phases), ErrNoData)
	}
	p := plot.New()
	p.X.Label.Text = "workloads"
	p.Y.Label.Text = "Running Time [s]"
	p.Legend.Top = true

	var below *plotter.BarChart
	for i, name := range benchlog.PhaseNames {
		vals := make(plotter.Values, len(phases))
		for j, run := range phases {
			if i >= len(run) || run[i].Name != name {
				return fmt.Errorf("%s: missing phase %s", names[j], name)
			}
			vals[j] = run[i].Seconds
		}
		bars, err := plotter.NewBarChart(vals, vg.Points(20))
		if err != nil {
			return err
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		if below != nil {
			bars.StackOn(below)
		}
		p.Add(bars)
		p.Legend.Add(name, bars)
		below = bars
	}
	p.NominalX(names...)
	return p.Save(w, h, path)
}
