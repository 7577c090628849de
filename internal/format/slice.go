package format

import "slices"

// Slices groups the range maps produced by ComputeSlices.
type Slices struct {
	Class     map[string]Slice
	Subclass  map[string]Slice
	Hierarchy map[string][]string
	// ClassOrder lists classes in the order their ranges appear.
	ClassOrder []string
}

// ComputeSlices scans sorted labels once and returns the range of every class
// and subclass plus the subclasses observed under each class.
//
// The scan assumes every class is contiguous and every subclass is contiguous
// within its class. That is what SortOrder guarantees; the scan itself does
// not re-check it.
func ComputeSlices(class, subclass []string) Slices {
	s := Slices{
		Class:     make(map[string]Slice),
		Subclass:  make(map[string]Slice),
		Hierarchy: make(map[string][]string),
	}
	n := len(class)
	if n == 0 {
		return s
	}

	prevClass, prevSub := class[0], subclass[0]
	classStart, subStart := 0, 0
	var subs []string

	closeSub := func(end int) {
		s.Subclass[prevSub] = Slice{Start: subStart, End: end}
		if !slices.Contains(subs, prevSub) {
			subs = append(subs, prevSub)
		}
	}
	closeClass := func(end int) {
		s.Class[prevClass] = Slice{Start: classStart, End: end}
		s.Hierarchy[prevClass] = subs
		s.ClassOrder = append(s.ClassOrder, prevClass)
	}

	for i := 1; i < n; i++ {
		classChanged := class[i] != prevClass
		if classChanged || subclass[i] != prevSub {
			closeSub(i)
			subStart = i
		}
		if classChanged {
			closeClass(i)
			subs = nil
			classStart = i
		}
		prevClass, prevSub = class[i], subclass[i]
	}
	closeSub(n)
	closeClass(n)
	return s
}
