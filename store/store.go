// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store records analyses in a SQL database: the series of every
// chart and the pairwise comparison of the runs.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"github.com/tdnose/tdlatency/compare"
	"github.com/tdnose/tdlatency/latency"
)

// DB is a database of analyses. It's safe for concurrent use by
// multiple goroutines.
type DB struct {
	sql *sql.DB
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a
// connection to driverName. It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is evaluated with . as a map containing one entry whose
// key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Analyses (
	AnalysisID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Created BIGINT,
	Labels VARCHAR(8192)
);
CREATE TABLE IF NOT EXISTS Charts (
	AnalysisID BIGINT UNSIGNED,
	ChartID INT,
	Title VARCHAR(8192),
	XLabel VARCHAR(255),
	YLabel VARCHAR(255),
	PRIMARY KEY (AnalysisID, ChartID),
	FOREIGN KEY (AnalysisID) REFERENCES Analyses(AnalysisID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS SeriesPoints (
	AnalysisID BIGINT UNSIGNED,
	ChartID INT,
	SeriesID INT,
	Label VARCHAR(255),
	Step INT,
	Value DOUBLE,
	Err DOUBLE,
	PRIMARY KEY (AnalysisID, ChartID, SeriesID, Step),
	FOREIGN KEY (AnalysisID, ChartID) REFERENCES Charts(AnalysisID, ChartID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS Comparisons (
	AnalysisID BIGINT UNSIGNED,
	PairID INT,
	Numerator VARCHAR(255),
	Denominator VARCHAR(255),
	NumTotal DOUBLE,
	DenTotal DOUBLE,
	Ratio DOUBLE,
	PercentReduction DOUBLE,
	StepGeoMean DOUBLE,
	PRIMARY KEY (AnalysisID, PairID),
{{if not .sqlite3}}
	Index (Numerator(100), Denominator(100)),
{{end}}
	FOREIGN KEY (AnalysisID) REFERENCES Analyses(AnalysisID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS ComparisonsLabels ON Comparisons(Numerator, Denominator);
{{end}}
`))

func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// now is overridden by tests.
var now = time.Now

// An Analysis is a stored analysis.
type Analysis struct {
	ID      int64
	Created time.Time
	Labels  []string
}

// nullFloat maps NaN to NULL.
func nullFloat(x float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: x, Valid: !math.IsNaN(x)}
}

func fromNull(x sql.NullFloat64) float64 {
	if !x.Valid {
		return math.NaN()
	}
	return x.Float64
}

// SaveAnalysis stores charts and the comparison report of one analysis
// in a single transaction and returns the new analysis. report may be
// nil.
func (db *DB) SaveAnalysis(ctx context.Context, labels []string, charts []*latency.Chart, report *compare.Report) (a *Analysis, err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	created := now().UTC().Truncate(time.Second)
	res, err := tx.ExecContext(ctx, "INSERT INTO Analyses(Created, Labels) VALUES (?, ?)", created.Unix(), strings.Join(labels, "\n"))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	insertChart, err := tx.PrepareContext(ctx, "INSERT INTO Charts(AnalysisID, ChartID, Title, XLabel, YLabel) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return nil, err
	}
	defer insertChart.Close()
	insertPoint, err := tx.PrepareContext(ctx, "INSERT INTO SeriesPoints(AnalysisID, ChartID, SeriesID, Label, Step, Value, Err) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return nil, err
	}
	defer insertPoint.Close()

	for ci, c := range charts {
		if _, err := insertChart.ExecContext(ctx, id, ci, c.Title, c.XLabel, c.YLabel); err != nil {
			return nil, err
		}
		for si, s := range c.Series {
			for t, v := range s.Values {
				e := sql.NullFloat64{}
				if t < len(s.Err) {
					e = nullFloat(s.Err[t])
				}
				if _, err := insertPoint.ExecContext(ctx, id, ci, si, s.Label, t, nullFloat(v), e); err != nil {
					return nil, err
				}
			}
		}
	}

	if report != nil {
		for pi, p := range report.Pairs {
			if _, err := tx.ExecContext(ctx, "INSERT INTO Comparisons(AnalysisID, PairID, Numerator, Denominator, NumTotal, DenTotal, Ratio, PercentReduction, StepGeoMean) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
				id, pi, p.Numerator, p.Denominator, nullFloat(p.NumTotal), nullFloat(p.DenTotal), nullFloat(p.Ratio), nullFloat(p.PercentReduction), nullFloat(p.StepGeoMean)); err != nil {
				return nil, err
			}
		}
	}
	return &Analysis{ID: id, Created: created, Labels: labels}, nil
}

// CountAnalyses returns the number of stored analyses.
func (db *DB) CountAnalyses(ctx context.Context) (int, error) {
	var n int
	err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Analyses").Scan(&n)
	return n, err
}

// Analysis returns the stored analysis with the given id.
func (db *DB) Analysis(ctx context.Context, id int64) (*Analysis, error) {
	var (
		created int64
		labels  string
	)
	err := db.sql.QueryRowContext(ctx, "SELECT Created, Labels FROM Analyses WHERE AnalysisID = ?", id).Scan(&created, &labels)
	if err != nil {
		return nil, err
	}
	a := &Analysis{ID: id, Created: time.Unix(created, 0).UTC()}
	if labels != "" {
		a.Labels = strings.Split(labels, "\n")
	}
	return a, nil
}

// Charts returns the charts of analysis id in the order they were
// saved. A series gets error values only if at least one was stored.
func (db *DB) Charts(ctx context.Context, id int64) ([]*latency.Chart, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT ChartID, Title, XLabel, YLabel FROM Charts WHERE AnalysisID = ? ORDER BY ChartID", id)
	if err != nil {
		return nil, err
	}
	var charts []*latency.Chart
	chartIDs := make(map[int]*latency.Chart)
	for rows.Next() {
		var (
			ci int
			c  latency.Chart
		)
		if err := rows.Scan(&ci, &c.Title, &c.XLabel, &c.YLabel); err != nil {
			rows.Close()
			return nil, err
		}
		charts = append(charts, &c)
		chartIDs[ci] = &c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.sql.QueryContext(ctx, "SELECT ChartID, SeriesID, Label, Step, Value, Err FROM SeriesPoints WHERE AnalysisID = ? ORDER BY ChartID, SeriesID, Step", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lastChart, lastSeries := -1, -1
	var (
		s      *latency.Series
		hasErr bool
	)
	finish := func() {
		if s != nil && !hasErr {
			s.Err = nil
		}
	}
	for rows.Next() {
		var (
			ci, si, step int
			label        string
			v, e         sql.NullFloat64
		)
		if err := rows.Scan(&ci, &si, &label, &step, &v, &e); err != nil {
			return nil, err
		}
		c := chartIDs[ci]
		if c == nil {
			return nil, fmt.Errorf("analysis %d: points for missing chart %d", id, ci)
		}
		if ci != lastChart || si != lastSeries {
			finish()
			c.Series = append(c.Series, latency.Series{Label: label})
			s = &c.Series[len(c.Series)-1]
			hasErr = false
			lastChart, lastSeries = ci, si
		}
		if step != len(s.Values) {
			return nil, fmt.Errorf("analysis %d: chart %d series %d: step %d out of order", id, ci, si, step)
		}
		s.Values = append(s.Values, fromNull(v))
		s.Err = append(s.Err, fromNull(e))
		hasErr = hasErr || e.Valid
	}
	finish()
	return charts, rows.Err()
}

// Comparisons returns the stored pairs of analysis id in the order
// they were saved.
func (db *DB) Comparisons(ctx context.Context, id int64) ([]compare.Pair, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT Numerator, Denominator, NumTotal, DenTotal, Ratio, PercentReduction, StepGeoMean FROM Comparisons WHERE AnalysisID = ? ORDER BY PairID", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var pairs []compare.Pair
	for rows.Next() {
		var (
			p                        compare.Pair
			num, den, ratio, red, gm sql.NullFloat64
		)
		if err := rows.Scan(&p.Numerator, &p.Denominator, &num, &den, &ratio, &red, &gm); err != nil {
			return nil, err
		}
		p.NumTotal, p.DenTotal = fromNull(num), fromNull(den)
		p.Ratio, p.PercentReduction, p.StepGeoMean = fromNull(ratio), fromNull(red), fromNull(gm)
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// DeleteAnalysis removes analysis id together with its charts and
// comparisons.
func (db *DB) DeleteAnalysis(ctx context.Context, id int64) error {
	res, err := db.sql.ExecContext(ctx, "DELETE FROM Analyses WHERE AnalysisID = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	return db.sql.Close()
}
