package format

import "slices"

// OtherSubclass is the catch-all label given to merged subclasses. Merged
// samples are labelled "<class>_other" so the sentinel stays class-scoped.
const OtherSubclass = "other"

// MergeSmallSubclasses relabels subclass runs shorter than minSize to the
// class-scoped catch-all label. Labels must be in sorted order, so a run is a
// maximal stretch of equal (class, subclass) pairs.
//
// The very first run is always kept, whatever its length. It returns the new
// labels and the distinct subclass labels that were merged away.
func MergeSmallSubclasses(class, subclass []string, minSize int) ([]string, []string) {
	out := slices.Clone(subclass)
	var merged []string
	seen := make(map[string]bool)

	for start := 0; start < len(out); {
		end := start + 1
		for end < len(out) && class[end] == class[start] && subclass[end] == subclass[start] {
			end++
		}
		if start > 0 && end-start < minSize {
			label := class[start] + "_" + OtherSubclass
			for i := start; i < end; i++ {
				out[i] = label
			}
			if !seen[subclass[start]] {
				seen[subclass[start]] = true
				merged = append(merged, subclass[start])
			}
		}
		start = end
	}
	return out, merged
}
