// Package input reads abundance matrices from disk into format.RawMatrix.
//
// Two source formats are supported: tab-delimited text, where the first column
// holds row names, and BIOM 1.0 JSON tables. The package also owns the steps
// that run before the core transform: orientation, the missing-value policy
// and the label-row defaults that apply to BIOM tables.
package input
