package input

import (
	"fmt"

	"lefseformat/internal/format"
)

// Orientation says whether features are laid out on rows or on columns.
type Orientation string

const (
	FeaturesOnRows    Orientation = "rows"
	FeaturesOnColumns Orientation = "columns"
)

// ParseOrientation accepts "rows"/"r" and "columns"/"c".
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "r", "rows", "":
		return FeaturesOnRows, nil
	case "c", "columns":
		return FeaturesOnColumns, nil
	}
	return "", fmt.Errorf("invalid feature orientation %q (valid: rows, columns)", s)
}

// Orient returns m with features on rows.
func Orient(m format.RawMatrix, o Orientation) (format.RawMatrix, error) {
	if o != FeaturesOnColumns {
		return m, nil
	}
	return Transpose(m)
}

// Transpose swaps rows and columns, treating the row names as the first
// column of the grid.
func Transpose(m format.RawMatrix) (format.RawMatrix, error) {
	if err := m.Validate(); err != nil {
		return m, err
	}
	width := m.Samples() + 1
	out := format.RawMatrix{
		Names: make([]string, width),
		Rows:  make([][]string, width),
	}
	for c := 0; c < width; c++ {
		row := make([]string, len(m.Rows))
		for r := range m.Rows {
			if c == 0 {
				row[r] = m.Names[r]
			} else {
				row[r] = m.Rows[r][c-1]
			}
		}
		out.Names[c] = row[0]
		out.Rows[c] = row[1:]
	}
	return out, nil
}
