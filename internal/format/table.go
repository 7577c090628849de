package format

import "fmt"

// FeatureTable maps feature names to per-sample values, keeping insertion order.
type FeatureTable struct {
	samples int
	names   []string
	index   map[string]int
	values  [][]float64
}

// NewFeatureTable returns an empty table for the given number of samples.
func NewFeatureTable(samples int) *FeatureTable {
	return &FeatureTable{samples: samples, index: make(map[string]int)}
}

// Samples returns the number of values per feature.
func (t *FeatureTable) Samples() int { return t.samples }

// Len returns the number of features.
func (t *FeatureTable) Len() int { return len(t.names) }

// Names returns feature names in insertion order.
func (t *FeatureTable) Names() []string { return append([]string(nil), t.names...) }

// Has reports whether name is present.
func (t *FeatureTable) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Get returns the values of name. The slice is owned by the table.
func (t *FeatureTable) Get(name string) ([]float64, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.values[i], true
}

// Set stores values under name, replacing an existing row in place. It
// reports whether a row was replaced.
func (t *FeatureTable) Set(name string, values []float64) (bool, error) {
	if len(values) != t.samples {
		return false, fmt.Errorf("%w: feature %q has %d values, expected %d", ErrFormat, name, len(values), t.samples)
	}
	if i, ok := t.index[name]; ok {
		t.values[i] = values
		return true, nil
	}
	t.index[name] = len(t.names)
	t.names = append(t.names, name)
	t.values = append(t.values, values)
	return false, nil
}

// Each calls fn for every feature in insertion order.
func (t *FeatureTable) Each(fn func(name string, values []float64)) {
	for i, n := range t.names {
		fn(n, t.values[i])
	}
}

// reorder permutes every row so that value i comes from position order[i].
func (t *FeatureTable) reorder(order []int) {
	for i, row := range t.values {
		t.values[i] = permute(row, order)
	}
}
