// Package store is the document store behind the simulation: JSON documents in named
// collections, addressed by key, with a simple field-equality query.
package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Store is a key-value document store.
type Store interface {
	// Get returns the document or an error wrapping airlinesim.ErrNotFound.
	Get(ctx context.Context, collection, key string) ([]byte, error)
	Put(ctx context.Context, collection, key string, doc []byte) error
	Query(ctx context.Context, collection string, q Query) ([][]byte, error)
}

// Query selects documents whose top-level Field equals Value. An empty Field matches every document.
type Query struct {
	Field      string
	Value      any
	OrderBy    string
	Descending bool
	Limit      int
}

// apply filters, orders and limits raw documents. Documents that are not JSON objects are skipped.
func (q Query) apply(docs [][]byte) [][]byte {
	type row struct {
		raw    []byte
		fields map[string]any
	}

	rows := make([]row, 0, len(docs))
	for _, d := range docs {
		var fields map[string]any
		if err := json.Unmarshal(d, &fields); err != nil {
			continue
		}
		if q.Field != "" && !equalValues(fields[q.Field], q.Value) {
			continue
		}
		rows = append(rows, row{raw: d, fields: fields})
	}

	if q.OrderBy != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			c := compareValues(rows[i].fields[q.OrderBy], rows[j].fields[q.OrderBy])
			if q.Descending {
				return c > 0
			}
			return c < 0
		})
	}

	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}

	out := make([][]byte, len(rows))
	for i, r := range rows {
		out[i] = r.raw
	}
	return out
}

// equalValues compares a decoded JSON value against a Go value. Numbers compare as float64.
func equalValues(got, want any) bool {
	if g, ok := toFloat(got); ok {
		if w, ok := toFloat(want); ok {
			return g == w
		}
		return false
	}
	return got == want
}

// compareValues orders numbers numerically, RFC 3339 timestamps chronologically, and everything else as strings.
func compareValues(a, b any) int {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	sa, _ := a.(string)
	sb, _ := b.(string)
	ta, errA := time.Parse(time.RFC3339Nano, sa)
	tb, errB := time.Parse(time.RFC3339Nano, sb)
	if errA == nil && errB == nil {
		return ta.Compare(tb)
	}
	return strings.Compare(sa, sb)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}
