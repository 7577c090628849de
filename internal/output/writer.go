// Package output persists formatted datasets.
//
// Datasets are written as a JSON document shaped like the formatter's
// historical pickle (feats, norm, cls, class_sl, subclass_sl,
// class_hierarchy) or as a SQLite database. An optional tab-separated side
// table mirrors the final sample order for inspection.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"lefseformat/internal/format"
)

// Format selects the dataset encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatSQLite Format = "sqlite"
)

// ParseFormat validates a dataset format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatSQLite:
		return f, nil
	case "":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("invalid output format %q (valid: json, sqlite)", s)
}

// Write stores ds at path in the given format.
func Write(path string, f Format, ds *format.Dataset) error {
	switch f {
	case FormatJSON, "":
		return writeFileAtomic(path, func(w io.Writer) error { return WriteJSON(w, ds) })
	case FormatSQLite:
		return SaveSQLite(path, ds)
	default:
		return fmt.Errorf("invalid output format %q", f)
	}
}

// WriteTableFile writes the side table to path.
func WriteTableFile(path string, ds *format.Dataset) error {
	return writeFileAtomic(path, func(w io.Writer) error { return WriteTable(w, ds) })
}

// writeFileAtomic writes through a temporary file in the target directory and
// renames it into place, so a failed write never leaves a partial file.
func writeFileAtomic(path string, fn func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
