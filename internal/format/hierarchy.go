package format

import (
	"fmt"
	"sort"
	"strings"
)

// depth returns the number of separators in name.
func depth(name string) int { return strings.Count(name, Separator) }

// parent returns name without its last level, or "" for a top-level name.
func parent(name string) string {
	i := strings.LastIndex(name, Separator)
	if i < 0 {
		return ""
	}
	return name[:i]
}

// ancestors returns every non-empty proper prefix of name, deepest first.
func ancestors(name string) []string {
	var out []string
	for p := parent(name); p != ""; p = parent(p) {
		out = append(out, p)
	}
	return out
}

// IsHierarchical reports whether any feature name carries a level separator.
func IsHierarchical(t *FeatureTable) bool {
	for _, n := range t.names {
		if strings.Contains(n, Separator) {
			return true
		}
	}
	return false
}

// CompleteHierarchy adds a row for every ancestor prefix of every feature
// name that is not already in the table. A synthesized row is the
// elementwise sum of its direct children, that is the rows whose name is the
// prefix plus one more level. Explicit rows are never modified.
//
// Each round stages the deepest missing prefixes, computes them from the
// table as it stands, and merges them afterwards. Deeper levels are thus
// complete before their parents are summed. It returns the added names in
// the order they were added.
func CompleteHierarchy(t *FeatureTable) ([]string, error) {
	if !IsHierarchical(t) {
		return nil, nil
	}

	maxRounds := 0
	for _, n := range t.names {
		if d := depth(n); d > maxRounds {
			maxRounds = d
		}
	}

	return completeLevels(t, maxRounds)
}

// completeLevels runs at most maxRounds completion rounds. Every round closes
// one depth level, so the deepest name's depth always suffices.
func completeLevels(t *FeatureTable, maxRounds int) ([]string, error) {
	var added []string
	for round := 0; ; round++ {
		pending := missingAncestors(t)
		if len(pending) == 0 {
			return added, nil
		}
		if round >= maxRounds {
			return added, fmt.Errorf("%w: %d prefixes still missing after %d rounds (e.g. %q)",
				ErrHierarchyUnresolved, len(pending), round, pending[0])
		}

		deepest := depth(pending[0])
		children := childIndex(t)
		staged := make(map[string][]float64)
		var order []string
		for _, p := range pending {
			if depth(p) != deepest {
				break
			}
			sum, err := sumChildren(t, children[p], p)
			if err != nil {
				return added, err
			}
			staged[p] = sum
			order = append(order, p)
		}

		for _, p := range order {
			if _, err := t.Set(p, staged[p]); err != nil {
				return added, err
			}
			added = append(added, p)
		}
	}
}

// sumChildren adds up the rows at kids elementwise.
func sumChildren(t *FeatureTable, kids []int, prefix string) ([]float64, error) {
	if len(kids) == 0 {
		return nil, fmt.Errorf("%w: prefix %q has no child rows", ErrHierarchyUnresolved, prefix)
	}
	sum := make([]float64, t.samples)
	for _, k := range kids {
		for j, v := range t.values[k] {
			sum[j] += v
		}
	}
	return sum, nil
}

// missingAncestors lists absent prefixes sorted deepest first, then by name.
func missingAncestors(t *FeatureTable) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, n := range t.names {
		for _, a := range ancestors(n) {
			if t.Has(a) {
				continue
			}
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := depth(out[i]), depth(out[j])
		if di != dj {
			return di > dj
		}
		return out[i] < out[j]
	})
	return out
}

// childIndex maps every prefix to the rows directly beneath it, in table order.
func childIndex(t *FeatureTable) map[string][]int {
	idx := make(map[string][]int)
	for i, n := range t.names {
		if p := parent(n); p != "" {
			idx[p] = append(idx[p], i)
		}
	}
	return idx
}
