// Package format turns a parsed abundance matrix into the class-ordered,
// slice-indexed dataset consumed by the biomarker discovery engine.
//
// The pipeline is a single synchronous pass over data already in memory:
//
//	raw matrix + label request
//	  -> SanitizeNames, ParseFeatures
//	  -> SortOrder          (sample columns by class, subclass, subject)
//	  -> DisambiguateSubclasses (followed by a stable re-sort)
//	  -> MergeSmallSubclasses   (optional, followed by a stable re-sort)
//	  -> ComputeSlices
//	  -> CompleteHierarchy, Normalize
//
// Transform runs every step in order. The individual steps are exported so
// callers and tests can use them in isolation.
package format
