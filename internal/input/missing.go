package input

import (
	"fmt"
	"strings"

	"lefseformat/internal/format"
)

// MissingPolicy selects how empty cells are handled before formatting.
type MissingPolicy string

const (
	// DropFeatures removes every feature row with an empty cell.
	DropFeatures MissingPolicy = "f"
	// DropSamples removes every sample column with an empty cell.
	DropSamples MissingPolicy = "s"
	// DefaultMissing is the formatter's default code. It matches neither
	// removal policy, so empty cells are left for the parser to reject.
	DefaultMissing MissingPolicy = "d"
)

// ParseMissingPolicy validates a policy code.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch p := MissingPolicy(s); p {
	case DropFeatures, DropSamples, DefaultMissing:
		return p, nil
	case "":
		return DefaultMissing, nil
	}
	return "", fmt.Errorf("invalid missing-value policy %q (valid: f, s, d)", s)
}

func isMissing(cell string) bool { return strings.TrimSpace(cell) == "" }

// ApplyMissingPolicy removes rows or columns holding empty cells. Label rows
// selected by req are never removed; when feature rows are dropped the
// returned request is renumbered to keep pointing at the same label rows.
// It also returns the number of removed rows or columns.
func ApplyMissingPolicy(m format.RawMatrix, p MissingPolicy, req format.LabelRequest) (format.RawMatrix, format.LabelRequest, int) {
	switch p {
	case DropFeatures:
		return dropFeatures(m, req)
	case DropSamples:
		out, n := dropSamples(m)
		return out, req, n
	default:
		return m, req, 0
	}
}

func dropFeatures(m format.RawMatrix, req format.LabelRequest) (format.RawMatrix, format.LabelRequest, int) {
	protected := make(map[int]bool)
	for _, c := range []format.Column{req.Class, req.Subclass, req.Subject} {
		if i, ok := c.Index(); ok {
			protected[i] = true
		}
	}

	var out format.RawMatrix
	remap := make(map[int]int)
	removed := 0
	for i, row := range m.Rows {
		if !protected[i] && hasMissing(row) {
			removed++
			continue
		}
		remap[i] = len(out.Rows)
		out.Names = append(out.Names, m.Names[i])
		out.Rows = append(out.Rows, row)
	}

	move := func(c format.Column) format.Column {
		i, ok := c.Index()
		if !ok {
			return c
		}
		if j, ok := remap[i]; ok {
			return format.At(j)
		}
		return c
	}
	req = format.LabelRequest{Class: move(req.Class), Subclass: move(req.Subclass), Subject: move(req.Subject)}
	return out, req, removed
}

func dropSamples(m format.RawMatrix) (format.RawMatrix, int) {
	n := m.Samples()
	keep := make([]int, 0, n)
	for j := 0; j < n; j++ {
		ok := true
		for _, row := range m.Rows {
			if j < len(row) && isMissing(row[j]) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, j)
		}
	}

	out := format.RawMatrix{Names: m.Names, Rows: make([][]string, len(m.Rows))}
	for i, row := range m.Rows {
		r := make([]string, len(keep))
		for k, j := range keep {
			r[k] = row[j]
		}
		out.Rows[i] = r
	}
	return out, n - len(keep)
}

func hasMissing(row []string) bool {
	for _, c := range row {
		if isMissing(c) {
			return true
		}
	}
	return false
}
