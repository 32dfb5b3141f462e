// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compare

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/google/safehtml/template"
	"github.com/tdnose/tdlatency/internal/texttab"
)

func fmtTotal(x float64) string {
	return strconv.FormatFloat(x, 'g', 6, 64)
}

func fmtRatio(x float64) string {
	if math.IsNaN(x) {
		return "~"
	}
	return strconv.FormatFloat(x, 'f', 4, 64)
}

func fmtReduction(x float64) string {
	return fmt.Sprintf("%+.2f%%", x)
}

func fmtCounts(counts []int) string {
	s := make([]string, len(counts))
	for i, c := range counts {
		s[i] = strconv.Itoa(c)
	}
	return "[" + strings.Join(s, ", ") + "]"
}

// FormatPlans writes the upsert plan counts of r: for each run a line
// "=label", then each bucket and its per-step record counts.
func FormatPlans(w io.Writer, r *Report) error {
	var b strings.Builder
	for _, p := range r.Plans {
		fmt.Fprintf(&b, "=%s\n", p.Label)
		for _, pc := range p.Counts {
			fmt.Fprintf(&b, "  --%s\n", pc.Bucket)
			fmt.Fprintf(&b, "      %s\n", fmtCounts(pc.Counts))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// FormatText writes r as plain text tables.
func FormatText(w io.Writer, r *Report) error {
	if err := FormatPlans(w, r); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "TOTAL diff\n"); err != nil {
		return err
	}
	var tab texttab.Table
	tab.Row().Cell("label").Cell("total [s]", texttab.Right)
	for _, t := range r.Totals {
		tab.Row().Cell(t.Label).Cell(fmtTotal(t.Total), texttab.Right)
	}
	if err := tab.Format(w); err != nil {
		return err
	}
	if len(r.Pairs) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n"); err != nil {
		return err
	}
	tab = texttab.Table{}
	tab.Row().Cell("label1 / label2").Cell("ratio", texttab.Right).Cell("reduced", texttab.Right).Cell("step geomean", texttab.Right)
	for _, p := range r.Pairs {
		tab.Row().Cell(p.Numerator+" / "+p.Denominator).
			Cell(fmtRatio(p.Ratio), texttab.Right).
			Cell(fmtReduction(p.PercentReduction), texttab.Right).
			Cell(fmtRatio(p.StepGeoMean), texttab.Right)
	}
	return tab.Format(w)
}

// FormatCSV writes one CSV row per pair of r.
func FormatCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"numerator", "denominator", "numerator_total", "denominator_total", "ratio", "percent_reduction", "step_geomean"})
	f := func(x float64) string { return strconv.FormatFloat(x, 'g', 10, 64) }
	for _, p := range r.Pairs {
		cw.Write([]string{p.Numerator, p.Denominator, f(p.NumTotal), f(p.DenTotal), f(p.Ratio), f(p.PercentReduction), f(p.StepGeoMean)})
	}
	cw.Flush()
	return cw.Error()
}

const htmlReport = `<table class='tdlatency'>
<tbody>
<tr><th>label<th>total [s]
{{- range .Totals}}
<tr><td>{{.Label}}<td>{{.Total}}
{{- end}}
</tbody>
{{- if .Pairs}}
<tbody>
<tr><th>label1<th>label2<th>ratio<th>reduced<th>step geomean
{{- range .Pairs}}
<tr><td>{{.Numerator}}<td>{{.Denominator}}<td>{{.Ratio}}<td>{{.Reduction}}<td>{{.GeoMean}}
{{- end}}
</tbody>
{{- end}}
</table>
`

var htmlTemplate = template.Must(template.New("report").Parse(htmlReport))

type htmlTotal struct {
	Label, Total string
}

type htmlPair struct {
	Numerator, Denominator, Ratio, Reduction, GeoMean string
}

// FormatHTML writes r as an HTML table.
func FormatHTML(w io.Writer, r *Report) error {
	var data struct {
		Totals []htmlTotal
		Pairs  []htmlPair
	}
	for _, t := range r.Totals {
		data.Totals = append(data.Totals, htmlTotal{t.Label, fmtTotal(t.Total)})
	}
	for _, p := range r.Pairs {
		data.Pairs = append(data.Pairs, htmlPair{p.Numerator, p.Denominator, fmtRatio(p.Ratio), fmtReduction(p.PercentReduction), fmtRatio(p.StepGeoMean)})
	}
	return htmlTemplate.Execute(w, data)
}
