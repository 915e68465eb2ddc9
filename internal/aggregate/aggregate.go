// Package aggregate groups trade records by caller-supplied keys and reduces
// each group to a single number.
//
// Pipeline: filter → group (first-seen key order) → reduce. A key appears in
// the result only when at least one record passed the predicate for it, so
// Has(key) and Value(key) answer different questions.
package aggregate

import "meatflow/internal/model"

// KeyFunc extracts a grouping key from a record.
type KeyFunc[K comparable] func(model.TradeRecord) K

// Reducer folds the records of one group into a value.
type Reducer func(group []model.TradeRecord) float64

// Predicate selects records that take part in aggregation. A nil Predicate
// accepts every record.
type Predicate func(model.TradeRecord) bool

type Entry[K comparable] struct {
	Key   K
	Value float64
}

// Groups is a reduced single-level grouping. Keys keep first-seen input
// order.
type Groups[K comparable] struct {
	keys   []K
	values map[K]float64
}

func (g *Groups[K]) Has(key K) bool {
	if g == nil {
		return false
	}
	_, ok := g.values[key]
	return ok
}

func (g *Groups[K]) Get(key K) (float64, bool) {
	if g == nil {
		return 0, false
	}
	v, ok := g.values[key]
	return v, ok
}

// Value returns the reduced value for key, or 0 when the key is absent.
func (g *Groups[K]) Value(key K) float64 {
	v, _ := g.Get(key)
	return v
}

func (g *Groups[K]) Len() int {
	if g == nil {
		return 0
	}
	return len(g.keys)
}

func (g *Groups[K]) Keys() []K {
	if g == nil {
		return nil
	}
	out := make([]K, len(g.keys))
	copy(out, g.keys)
	return out
}

func (g *Groups[K]) Entries() []Entry[K] {
	if g == nil {
		return nil
	}
	out := make([]Entry[K], 0, len(g.keys))
	for _, key := range g.keys {
		out = append(out, Entry[K]{Key: key, Value: g.values[key]})
	}
	return out
}

// Map returns a copy of the grouping as a plain map.
func (g *Groups[K]) Map() map[K]float64 {
	out := make(map[K]float64, g.Len())
	if g == nil {
		return out
	}
	for key, v := range g.values {
		out[key] = v
	}
	return out
}

// By filters records with pred, groups them by key and reduces every group.
func By[K comparable](records []model.TradeRecord, key KeyFunc[K], reduce Reducer, pred Predicate) *Groups[K] {
	buckets, order := bucket(records, key, pred)
	groups := &Groups[K]{
		keys:   order,
		values: make(map[K]float64, len(order)),
	}
	for _, k := range order {
		groups.values[k] = reduce(buckets[k])
	}
	return groups
}

// NestedGroups is a two-level grouping: outer key → inner Groups.
type NestedGroups[O, I comparable] struct {
	keys  []O
	inner map[O]*Groups[I]
}

func (n *NestedGroups[O, I]) Keys() []O {
	if n == nil {
		return nil
	}
	out := make([]O, len(n.keys))
	copy(out, n.keys)
	return out
}

func (n *NestedGroups[O, I]) Len() int {
	if n == nil {
		return 0
	}
	return len(n.keys)
}

// Inner returns the inner grouping for an outer key, or nil.
func (n *NestedGroups[O, I]) Inner(key O) *Groups[I] {
	if n == nil {
		return nil
	}
	return n.inner[key]
}

func (n *NestedGroups[O, I]) Get(outer O, inner I) (float64, bool) {
	return n.Inner(outer).Get(inner)
}

// Nested groups by outer then inner key and reduces each leaf group. The
// reducer sees exactly the records it would see in a flat grouping on the
// composite key.
func Nested[O, I comparable](records []model.TradeRecord, outer KeyFunc[O], inner KeyFunc[I], reduce Reducer, pred Predicate) *NestedGroups[O, I] {
	buckets, order := bucket(records, outer, pred)
	nested := &NestedGroups[O, I]{
		keys:  order,
		inner: make(map[O]*Groups[I], len(order)),
	}
	for _, k := range order {
		nested.inner[k] = By(buckets[k], inner, reduce, nil)
	}
	return nested
}

func bucket[K comparable](records []model.TradeRecord, key KeyFunc[K], pred Predicate) (map[K][]model.TradeRecord, []K) {
	buckets := make(map[K][]model.TradeRecord)
	order := make([]K, 0)
	for _, record := range records {
		if pred != nil && !pred(record) {
			continue
		}
		k := key(record)
		if _, exists := buckets[k]; !exists {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], record)
	}
	return buckets, order
}
