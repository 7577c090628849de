package format

import (
	"fmt"

	"go.uber.org/zap"
)

// NoNormalization disables rescaling; any negative target has the same effect.
const NoNormalization = -1.0

// RawMatrix is the common representation produced by the input readers.
// Every row is a named sequence of string cells, one cell per sample. Label
// rows and feature rows are only told apart once a LabelRequest is applied.
type RawMatrix struct {
	Names []string
	Rows  [][]string
}

// Samples returns the number of sample columns.
func (m RawMatrix) Samples() int {
	if len(m.Rows) == 0 {
		return 0
	}
	return len(m.Rows[0])
}

// Validate reports ragged rows and a names/rows length mismatch.
func (m RawMatrix) Validate() error {
	if len(m.Names) != len(m.Rows) {
		return fmt.Errorf("%w: %d row names for %d rows", ErrFormat, len(m.Names), len(m.Rows))
	}
	n := m.Samples()
	for i, row := range m.Rows {
		if len(row) != n {
			return fmt.Errorf("%w: row %d (%q) has %d values, expected %d", ErrFormat, i+1, m.Names[i], len(row), n)
		}
	}
	return nil
}

// Column is an optional zero-based row selector for a label dimension.
// The zero value selects nothing.
type Column struct {
	index int
	set   bool
}

// None selects no row.
var None = Column{}

// At selects the row with zero-based index i.
func At(i int) Column { return Column{index: i, set: true} }

// FromOneBased converts a 1-based external row number. Values below 1 mean absent.
func FromOneBased(n int) Column {
	if n < 1 {
		return None
	}
	return At(n - 1)
}

// Index returns the selected row and whether one is selected.
func (c Column) Index() (int, bool) { return c.index, c.set }

// IsSet reports whether a row is selected.
func (c Column) IsSet() bool { return c.set }

// OneBased returns the 1-based row number, or 0 when absent.
func (c Column) OneBased() int {
	if !c.set {
		return 0
	}
	return c.index + 1
}

func (c Column) String() string {
	if !c.set {
		return "none"
	}
	return fmt.Sprintf("row %d", c.index+1)
}

// LabelRequest selects which raw rows hold the class, subclass and subject labels.
type LabelRequest struct {
	Class    Column
	Subclass Column
	Subject  Column
}

// Labels holds the per-sample label sequences in final sample order.
type Labels struct {
	Class    []string
	Subclass []string
	// Subject is nil when no subject row is active.
	Subject []string
	// SubclassDefaulted is true when no subclass row was active and every
	// subclass was derived from its class.
	SubclassDefaulted bool
}

// Slice is the half-open index range [Start, End) over the sorted samples.
type Slice struct {
	Start int
	End   int
}

// Len returns the number of samples in the range.
func (s Slice) Len() int { return s.End - s.Start }

// Dataset is the output of Transform.
type Dataset struct {
	Features       *FeatureTable
	Labels         Labels
	ClassSlices    map[string]Slice
	SubclassSlices map[string]Slice
	ClassHierarchy map[string][]string
	// ClassOrder lists classes in slice order.
	ClassOrder []string
	// Norm is the normalization target that was applied, NoNormalization if none.
	Norm float64
	// Order maps final sample positions to raw column positions.
	Order []int
}

// Options tunes Transform.
type Options struct {
	// Norm is the per-sample target total. Negative disables normalization.
	Norm float64
	// MergeSmallSubclasses enables the small-group merge step.
	MergeSmallSubclasses bool
	// MinSubclassSize is the minimum run length kept by the merge step.
	MinSubclassSize int
	// Logger receives diagnostics. Nil discards them.
	Logger *zap.Logger
}

// DefaultOptions mirrors the formatter command-line defaults.
func DefaultOptions() Options {
	return Options{
		Norm:            NoNormalization,
		MinSubclassSize: 10,
	}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
