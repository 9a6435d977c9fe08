// Package generics implements generic data structure functions missing from the stdlib.
package generics

import (
	"cmp"
	"iter"
	"maps"
	"slices"

	"golang.org/x/exp/constraints"
)

// Number is any integer or float type.
type Number interface {
	constraints.Integer | constraints.Float
}

// SliceMap executes the given function sequentially for every element on in, and returns a mapped slice.
func SliceMap[In, Out any](in []In, fn func(e In) Out) (out []Out) {
	out = make([]Out, len(in))
	for ii, e := range in {
		out[ii] = fn(e)
	}
	return
}

// SliceOrdering returns the indices of s ordered by the values of s, in increasing order,
// or decreasing order if reverse is true.
//
// The ordering is stable: equal values keep their original relative order, in either direction.
func SliceOrdering[T Number](s []T, reverse bool) []int {
	indices := make([]int, len(s))
	for ii := range indices {
		indices[ii] = ii
	}
	slices.SortStableFunc(indices, func(a, b int) int {
		if reverse {
			return cmp.Compare(s[b], s[a])
		}
		return cmp.Compare(s[a], s[b])
	})
	return indices
}

// KeysSlice returns the keys of the map, sorted.
func KeysSlice[M interface{ ~map[K]V }, K cmp.Ordered, V any](m M) []K {
	return slices.Sorted(maps.Keys(m))
}

// SortedKeysAndValues returns an iterator over keys and values of a map m in a sorted fashion by the keys.
//
// It extracts the keys, sort them and then iterate over, so it's convenient but not fast.
func SortedKeysAndValues[M interface{ ~map[K]V }, K cmp.Ordered, V any](m M) iter.Seq2[K, V] {
	sortedKeys := KeysSlice(m)
	return func(yield func(K, V) bool) {
		for _, key := range sortedKeys {
			if !yield(key, m[key]) {
				break
			}
		}
	}
}

// Sum of the values of a slice.
func Sum[T Number](s []T) (sum T) {
	for _, v := range s {
		sum += v
	}
	return
}
