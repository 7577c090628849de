package input

import (
	"fmt"
	"slices"

	"lefseformat/internal/format"
)

// LabelOptions holds the user's label-row selection as 1-based row numbers.
// Zero or negative numbers mean the dimension is not used.
type LabelOptions struct {
	Class    int
	Subclass int
	Subject  int
	// BIOMClass and BIOMSubclass name sample metadata rows of a BIOM table.
	BIOMClass    string
	BIOMSubclass string
}

// Request converts the numbered selection into a format.LabelRequest.
func (o LabelOptions) Request() format.LabelRequest {
	return format.LabelRequest{
		Class:    format.FromOneBased(o.Class),
		Subclass: format.FromOneBased(o.Subclass),
		Subject:  format.FromOneBased(o.Subject),
	}
}

// Default BIOM rows: the id row is the subject, then class, then subclass.
const (
	biomSubjectRow  = 1
	biomClassRow    = 2
	biomSubclassRow = 3
)

// ResolveRequest picks the label rows for src. Text input uses the numbered
// selection as given. BIOM input derives its rows from the metadata layout:
// the id row is always the subject, the first metadata key is the class and
// the second, when present, the subclass. BIOMClass and BIOMSubclass override
// those defaults by name; an unknown name restores both defaults and is
// reported as a diagnostic.
func ResolveRequest(src *Source, o LabelOptions) (format.LabelRequest, []format.Diagnostic) {
	if src.Format != FormatBIOM {
		return o.Request(), nil
	}

	var diags []format.Diagnostic
	n := len(src.MetadataNames)
	if n > 0 {
		o.Subject = biomSubjectRow
	}
	if n == 2 {
		o.Class = biomClassRow
	}
	if n >= 3 {
		o.Class, o.Subclass = biomClassRow, biomSubclassRow

		bad := false
		if o.BIOMClass != "" {
			if i := slices.Index(src.MetadataNames, o.BIOMClass); i >= 0 {
				o.Class = i + 1
			} else {
				bad = true
			}
		}
		if o.BIOMSubclass != "" {
			if i := slices.Index(src.MetadataNames, o.BIOMSubclass); i >= 0 {
				o.Subclass = i + 1
			} else {
				bad = true
			}
		}
		if bad {
			msg := fmt.Sprintf("invalid biom class %q or subclass %q, using defaults: first metadata is class, second is subclass",
				o.BIOMClass, o.BIOMSubclass)
			diags = append(diags, format.Diagnostic{Stage: format.StageLabels, Message: msg})
			o.Class, o.Subclass = biomClassRow, biomSubclassRow
		}
	}
	return o.Request(), diags
}

// DropUnusedMetadata removes the BIOM sample metadata rows that req does not
// select, so they are not parsed as features, and renumbers req to match.
// Text sources are returned unchanged.
func DropUnusedMetadata(src *Source, req format.LabelRequest) (format.RawMatrix, format.LabelRequest) {
	m := src.Matrix
	meta := len(src.MetadataNames)
	if src.Format != FormatBIOM || meta == 0 {
		return m, req
	}

	selected := make(map[int]bool)
	for _, c := range []format.Column{req.Class, req.Subclass, req.Subject} {
		if i, ok := c.Index(); ok {
			selected[i] = true
		}
	}

	var out format.RawMatrix
	remap := make(map[int]int)
	for i := range m.Rows {
		if i < meta && !selected[i] {
			continue
		}
		remap[i] = len(out.Rows)
		out.Names = append(out.Names, m.Names[i])
		out.Rows = append(out.Rows, m.Rows[i])
	}

	move := func(c format.Column) format.Column {
		if i, ok := c.Index(); ok {
			if j, ok := remap[i]; ok {
				return format.At(j)
			}
		}
		return c
	}
	return out, format.LabelRequest{Class: move(req.Class), Subclass: move(req.Subclass), Subject: move(req.Subject)}
}
