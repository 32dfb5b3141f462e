// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package statement

import (
	"sort"
	"strings"

	"github.com/tdnose/tdlatency/benchlog"
)

// Options control how records are assigned to series.
type Options struct {
	// ConcatKeys identifies series by the concatenation group+name
	// instead of the (group, name) pair, so that ("ab", "c") and
	// ("a", "bc") share a series. Reports produced by older tools
	// were keyed this way.
	ConcatKeys bool
}

// An Index maps statement keys and aggregated buckets to the records
// of one log.
type Index struct {
	records []benchlog.Record

	opts   Options
	keys   []Key
	series map[Key][]int
	// canon maps a series identity to the key that stands for it.
	canon map[Key]Key

	buckets   []string
	bucketMap map[string][]Key
}

// NewIndex indexes records. The records must not be modified while the
// Index is in use.
func NewIndex(records []benchlog.Record, opts Options) *Index {
	x := &Index{
		records:   records,
		opts:      opts,
		series:    make(map[Key][]int),
		canon:     make(map[Key]Key),
		bucketMap: make(map[string][]Key),
	}
	// With ConcatKeys, the first key seen for an identity stands
	// for all of it.
	for i := range records {
		k := Key{records[i].Group, records[i].Name}
		id := x.identity(k)
		if c, ok := x.canon[id]; ok {
			k = c
		} else {
			x.canon[id] = k
			x.keys = append(x.keys, k)
		}
		x.series[k] = append(x.series[k], i)
	}
	for _, k := range x.keys {
		if !Classify(k.Name).IsUpsert() {
			continue
		}
		b := BucketOf(k)
		if _, ok := x.bucketMap[b]; !ok {
			x.buckets = append(x.buckets, b)
		}
		x.bucketMap[b] = append(x.bucketMap[b], k)
	}
	return x
}

func (x *Index) identity(k Key) Key {
	if x.opts.ConcatKeys {
		return Key{Name: k.Group + k.Name}
	}
	return k
}

// Records returns the indexed records.
func (x *Index) Records() []benchlog.Record {
	return x.records
}

// Keys returns the distinct series keys in order of first appearance.
func (x *Index) Keys() []Key {
	return x.keys
}

// Series returns the positions of the records of series k, in file
// order. With ConcatKeys, k may be any key of the series, such as the
// key another log's Index chose for it.
func (x *Index) Series(k Key) []int {
	c, ok := x.canon[x.identity(k)]
	if !ok {
		return nil
	}
	return x.series[c]
}

// Buckets returns the aggregated bucket names in order of first
// appearance.
func (x *Index) Buckets() []string {
	return x.buckets
}

// Bucket returns the keys of the series filed under bucket b.
func (x *Index) Bucket(b string) []Key {
	return x.bucketMap[b]
}

// BucketRecords returns the positions of all records of bucket b, in
// file order.
func (x *Index) BucketRecords(b string) []int {
	var pos []int
	for _, k := range x.bucketMap[b] {
		pos = append(pos, x.series[k]...)
	}
	sort.Ints(pos)
	return pos
}

// UpsertBuckets returns the number of buckets that name an INSERT or
// UPDATE statement.
func (x *Index) UpsertBuckets() int {
	n := 0
	for _, b := range x.buckets {
		if strings.Contains(b, "INSERT") || strings.Contains(b, "UPDATE") {
			n++
		}
	}
	return n
}
