package format

import "fmt"

// Diagnostic is a recoverable problem resolved locally with a fallback.
type Diagnostic struct {
	Stage   string
	Message string
}

func (d Diagnostic) String() string { return d.Stage + ": " + d.Message }

// ResolveLabels checks a label request against a matrix with rows rows and
// replaces unusable selections with the documented defaults:
//
//   - a missing or out-of-range class row falls back to the first row;
//   - an out-of-range subclass or subject row is dropped;
//   - a subclass or subject row that repeats an earlier selection is dropped.
//
// Every fallback is reported as a Diagnostic. Resolution never fails.
func ResolveLabels(req LabelRequest, rows int) (LabelRequest, []Diagnostic) {
	var diags []Diagnostic
	warn := func(format string, args ...any) {
		diags = append(diags, Diagnostic{Stage: StageLabels, Message: fmt.Sprintf(format, args...)})
	}

	out := req
	ci, ok := req.Class.Index()
	switch {
	case !ok:
		warn("no class row selected, using row 1")
		out.Class = At(0)
	case ci < 0 || ci >= rows:
		warn("class %s out of range (%d rows), using row 1", req.Class, rows)
		out.Class = At(0)
	}

	used := map[int]string{}
	classIdx, _ := out.Class.Index()
	used[classIdx] = "class"

	check := func(name string, c Column) Column {
		i, ok := c.Index()
		if !ok {
			return None
		}
		if i < 0 || i >= rows {
			warn("%s %s out of range (%d rows), ignoring it", name, c, rows)
			return None
		}
		if prev, dup := used[i]; dup {
			warn("%s %s is already used as %s, ignoring it", name, c, prev)
			return None
		}
		used[i] = name
		return c
	}
	out.Subclass = check("subclass", req.Subclass)
	out.Subject = check("subject", req.Subject)
	return out, diags
}

// active returns the label rows in class, subclass, subject precedence,
// omitting absent slots.
func (r LabelRequest) active() []int {
	var idx []int
	for _, c := range []Column{r.Class, r.Subclass, r.Subject} {
		if i, ok := c.Index(); ok {
			idx = append(idx, i)
		}
	}
	return idx
}
