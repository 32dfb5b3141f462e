// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package statement indexes the records of a benchmark log by the
// statement they measure.
//
// Every record belongs to exactly one statement series, identified by
// its (group, name) Key. Series of INSERT and UPDATE statements are
// additionally reachable through an aggregated bucket per logical
// table, which upsert latency is computed over. The index holds record
// positions only; it never copies, merges or drops a record.
package statement

import (
	"strings"

	"github.com/tdnose/tdlatency/benchlog"
)

// A Key identifies a statement series.
type Key struct {
	Group, Name string
}

// String returns the historical "group_name" form of k.
func (k Key) String() string {
	return k.Group + "_" + k.Name
}

// Kind classifies a statement by its name.
type Kind int

const (
	Unknown Kind = iota
	Select
	Insert
	Update
	Total
)

func (k Kind) String() string {
	switch k {
	case Select:
		return "SELECT"
	case Insert:
		return "INSERT"
	case Update:
		return "UPDATE"
	case Total:
		return "TOTAL"
	}
	return "unknown"
}

// IsUpsert reports whether k modifies data.
func (k Kind) IsUpsert() bool {
	return k == Insert || k == Update
}

// Classify returns the kind of a statement name.
func Classify(name string) Kind {
	switch {
	case strings.HasPrefix(name, "SELECT"):
		return Select
	case strings.HasPrefix(name, "INSERT"):
		return Insert
	case strings.HasPrefix(name, "UPDATE"):
		return Update
	case strings.Contains(name, benchlog.Total):
		return Total
	}
	return Unknown
}

// KindOf classifies a series key. Subtotal series of a group (name
// TOTAL) and the grand total series are both Total.
func KindOf(k Key) Kind {
	if kind := Classify(k.Name); kind != Unknown {
		return kind
	}
	if strings.Contains(k.String(), benchlog.Total) {
		return Total
	}
	return Unknown
}

// BucketPrefix starts the name of every aggregated bucket.
const BucketPrefix = "Aggregated-"

// BucketOf returns the aggregated bucket of an INSERT or UPDATE series:
// BucketPrefix followed by the "group_name" form of k up to the first
// " -- ".
func BucketOf(k Key) string {
	id, _, _ := strings.Cut(k.String(), " -- ")
	return BucketPrefix + id
}
