package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseFeatures converts string feature rows into a FeatureTable. Any value
// that is not a finite float is a fatal ErrFormat; samples are numbered from
// 1 in row order. A name repeated later
// in the input replaces the earlier row; the replaced names are returned.
func ParseFeatures(names []string, rows [][]string, samples int) (*FeatureTable, []string, error) {
	t := NewFeatureTable(samples)
	var dups []string
	for i, row := range rows {
		values := make([]float64, len(row))
		for j, cell := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: feature %q sample %d: %q is not a number", ErrFormat, names[i], j+1, cell)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, nil, fmt.Errorf("%w: feature %q sample %d: %q is not a finite number", ErrFormat, names[i], j+1, cell)
			}
			values[j] = v
		}
		replaced, err := t.Set(names[i], values)
		if err != nil {
			return nil, nil, err
		}
		if replaced {
			dups = append(dups, names[i])
		}
	}
	return t, dups, nil
}

// BasisTotals returns the per-sample denominator used by Normalize.
//
// For a hierarchical table the basis is the sum over top-level features,
// which avoids counting a clade together with its descendants. When that sum
// is zero for a sample, or the table is flat, the basis is the sum over all
// features.
func BasisTotals(t *FeatureTable) []float64 {
	hier := IsHierarchical(t)
	totals := make([]float64, t.samples)
	for j := 0; j < t.samples; j++ {
		var top, all float64
		for i, n := range t.names {
			v := t.values[i][j]
			all += v
			if !strings.Contains(n, Separator) {
				top += v
			}
		}
		if hier && top != 0 {
			totals[j] = top
		} else {
			totals[j] = all
		}
	}
	return totals
}

// Normalize rescales every sample so that its basis total equals target.
// A sample whose basis total is zero is set to all zeros. A negative target
// leaves the table untouched. It returns the indices of zeroed samples.
func Normalize(t *FeatureTable, target float64) []int {
	if target < 0 {
		return nil
	}
	totals := BasisTotals(t)
	factors := make([]float64, len(totals))
	var zeroed []int
	for j, total := range totals {
		if total == 0 {
			zeroed = append(zeroed, j)
			continue
		}
		factors[j] = target / total
	}
	for _, row := range t.values {
		for j := range row {
			row[j] *= factors[j]
		}
	}
	return zeroed
}
