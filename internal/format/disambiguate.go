package format

import "slices"

// DisambiguateSubclasses renames every subclass label that occurs under more
// than one class to "<class>_<subclass>". Labels owned by a single class are
// returned unchanged. Renaming repeats until no label is shared across
// classes. A rename can still equal another label of the same class, so the
// result may need a re-sort before slicing.
func DisambiguateSubclasses(class, subclass []string) []string {
	out := slices.Clone(subclass)
	for round := 0; round <= len(out); round++ {
		shared := sharedSubclasses(class, out)
		if len(shared) == 0 {
			break
		}
		for i, sc := range out {
			if _, ok := shared[sc]; ok {
				out[i] = class[i] + "_" + sc
			}
		}
	}
	return out
}

func sharedSubclasses(class, subclass []string) map[string]struct{} {
	owners := make(map[string]map[string]struct{})
	for i, sc := range subclass {
		set, ok := owners[sc]
		if !ok {
			set = make(map[string]struct{})
			owners[sc] = set
		}
		set[class[i]] = struct{}{}
	}
	shared := make(map[string]struct{})
	for sc, set := range owners {
		if len(set) > 1 {
			shared[sc] = struct{}{}
		}
	}
	return shared
}
