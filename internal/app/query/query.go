// Package query is the generic filter → sort → window pipeline applied to
// any normalized entity collection. It knows nothing about entities beyond
// the accessors it is given.
package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/dalemusser/strataboard/internal/app/system/paging"
	"github.com/dalemusser/strataboard/internal/app/system/search"
)

// Predicate reports whether an item passes a filter.
type Predicate[T any] func(T) bool

// Comparator orders two items like cmp.Compare.
type Comparator[T any] func(a, b T) int

// Sorters maps whitelisted sort field names to comparators.
type Sorters[T any] map[string]Comparator[T]

// Spec describes one view slice.
type Spec[T any] struct {
	Filters    []Predicate[T]
	Sort       string // field name looked up in Sorters; unknown keeps input order
	Descending bool
	Start      int // 1-based; 0 means 1
	Size       int // 0 means no windowing
}

// Result is the filtered, sorted and windowed subset.
type Result[T any] struct {
	Items   []T          `json:"items"`
	Matched int          `json:"matched"`
	Range   paging.Range `json:"range"`
}

// All combines predicates conjunctively. Nil predicates are skipped.
func All[T any](ps ...Predicate[T]) Predicate[T] {
	return func(v T) bool {
		for _, p := range ps {
			if p != nil && !p(v) {
				return false
			}
		}
		return true
	}
}

// Text matches a case-insensitive substring against the given string fields.
// An empty query returns nil (no filter).
func Text[T any](q string, fields ...func(T) string) Predicate[T] {
	if strings.TrimSpace(q) == "" {
		return nil
	}
	return func(v T) bool {
		vals := make([]string, len(fields))
		for i, f := range fields {
			vals[i] = f(v)
		}
		return search.Matches(q, vals...)
	}
}

// Equals matches a string field against want, ignoring case. An empty
// want, or "all", returns nil (no filter).
func Equals[T any](want string, field func(T) string) Predicate[T] {
	want = strings.TrimSpace(want)
	if want == "" || strings.EqualFold(want, "all") {
		return nil
	}
	return func(v T) bool {
		return search.EqualsAnyFold(field(v), want)
	}
}

// AtLeast matches a numeric field against a minimum threshold.
func AtLeast[T any, N cmp.Ordered](min N, field func(T) N) Predicate[T] {
	return func(v T) bool {
		return field(v) >= min
	}
}

// By builds a comparator from an ordered field accessor.
func By[T any, K cmp.Ordered](key func(T) K) Comparator[T] {
	return func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	}
}

// ByFold builds a comparator on a string field, ignoring case and diacritics.
func ByFold[T any](key func(T) string) Comparator[T] {
	return func(a, b T) int {
		return cmp.Compare(search.Fold(key(a)), search.Fold(key(b)))
	}
}

// Run filters, stable-sorts and windows items. The input slice is never
// modified; equal sort keys keep their input order.
func Run[T any](items []T, sorters Sorters[T], spec Spec[T]) Result[T] {
	keep := All(spec.Filters...)
	out := make([]T, 0, len(items))
	for _, v := range items {
		if keep(v) {
			out = append(out, v)
		}
	}

	if c, ok := sorters[strings.ToLower(strings.TrimSpace(spec.Sort))]; ok {
		if spec.Descending {
			slices.SortStableFunc(out, func(a, b T) int { return c(b, a) })
		} else {
			slices.SortStableFunc(out, c)
		}
	}

	res := Result[T]{Items: out, Matched: len(out)}
	if spec.Size > 0 {
		res.Items, res.Range = paging.Window(out, spec.Start, spec.Size)
	} else {
		res.Range = paging.ComputeRange(1, len(out))
		res.Range.Total = len(out)
	}
	return res
}
