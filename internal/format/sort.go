package format

import (
	"slices"
	"strings"
)

// SortOrder returns the stable permutation that orders samples by their
// label keys. keys holds one sequence per active label in precedence order
// (class, then subclass, then subject); all sequences have the same length.
// Samples that tie on every key keep their input order.
func SortOrder(keys ...[]string) []int {
	n := 0
	if len(keys) > 0 {
		n = len(keys[0])
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		for _, k := range keys {
			if c := strings.Compare(k[a], k[b]); c != 0 {
				return c
			}
		}
		return 0
	})
	return order
}

// permute returns xs reordered so that out[i] = xs[order[i]].
func permute[T any](xs []T, order []int) []T {
	if xs == nil {
		return nil
	}
	out := make([]T, len(order))
	for i, j := range order {
		out[i] = xs[j]
	}
	return out
}

// compose returns the permutation equivalent to applying first and then next.
func compose(first, next []int) []int {
	out := make([]int, len(next))
	for i, j := range next {
		out[i] = first[j]
	}
	return out
}
