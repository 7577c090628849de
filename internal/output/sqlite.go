package output

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"lefseformat/internal/format"
)

const schema = `
CREATE TABLE meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE samples (
	position     INTEGER PRIMARY KEY,
	raw_position INTEGER NOT NULL,
	class        TEXT NOT NULL,
	subclass     TEXT NOT NULL,
	subject      TEXT
);
CREATE TABLE features (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE feature_values (
	feature_id INTEGER NOT NULL REFERENCES features(id),
	position   INTEGER NOT NULL REFERENCES samples(position),
	value      REAL NOT NULL,
	PRIMARY KEY (feature_id, position)
);
CREATE TABLE slices (
	kind      TEXT NOT NULL,
	label     TEXT NOT NULL,
	start_pos INTEGER NOT NULL,
	end_pos   INTEGER NOT NULL,
	PRIMARY KEY (kind, label)
);
CREATE TABLE hierarchy (
	class    TEXT NOT NULL,
	ordinal  INTEGER NOT NULL,
	subclass TEXT NOT NULL,
	PRIMARY KEY (class, ordinal)
);
`

// SaveSQLite writes ds into a new SQLite database at path. An existing file
// is replaced only after the new database has been fully written.
func SaveSQLite(path string, ds *format.Dataset) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp := filepath.Join(dir, "."+filepath.Base(path)+".tmp")
	_ = os.Remove(tmp)
	defer os.Remove(tmp)

	db, err := sql.Open("sqlite", tmp)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := saveDataset(db, ds); err != nil {
		db.Close()
		return err
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func saveDataset(db *sql.DB, ds *format.Dataset) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	meta := map[string]string{
		"norm":     strconv.FormatFloat(ds.Norm, 'g', -1, 64),
		"samples":  strconv.Itoa(ds.Features.Samples()),
		"features": strconv.Itoa(ds.Features.Len()),
	}
	for k, v := range meta {
		if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("failed to insert meta: %w", err)
		}
	}

	for i, class := range ds.Labels.Class {
		var subject any
		if ds.Labels.Subject != nil {
			subject = ds.Labels.Subject[i]
		}
		raw := i
		if i < len(ds.Order) {
			raw = ds.Order[i]
		}
		if _, err := tx.Exec(`INSERT INTO samples (position, raw_position, class, subclass, subject) VALUES (?, ?, ?, ?, ?)`,
			i, raw, class, ds.Labels.Subclass[i], subject); err != nil {
			return fmt.Errorf("failed to insert sample %d: %w", i, err)
		}
	}

	valueStmt, err := tx.Prepare(`INSERT INTO feature_values (feature_id, position, value) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare value insert: %w", err)
	}
	defer valueStmt.Close()

	var insertErr error
	id := 0
	ds.Features.Each(func(name string, values []float64) {
		if insertErr != nil {
			return
		}
		id++
		if _, err := tx.Exec(`INSERT INTO features (id, name) VALUES (?, ?)`, id, name); err != nil {
			insertErr = fmt.Errorf("failed to insert feature %q: %w", name, err)
			return
		}
		for j, v := range values {
			if _, err := valueStmt.Exec(id, j, v); err != nil {
				insertErr = fmt.Errorf("failed to insert value of %q: %w", name, err)
				return
			}
		}
	})
	if insertErr != nil {
		return insertErr
	}

	for kind, m := range map[string]map[string]format.Slice{"class": ds.ClassSlices, "subclass": ds.SubclassSlices} {
		for label, s := range m {
			if _, err := tx.Exec(`INSERT INTO slices (kind, label, start_pos, end_pos) VALUES (?, ?, ?, ?)`, kind, label, s.Start, s.End); err != nil {
				return fmt.Errorf("failed to insert slice: %w", err)
			}
		}
	}
	for class, subs := range ds.ClassHierarchy {
		for i, sub := range subs {
			if _, err := tx.Exec(`INSERT INTO hierarchy (class, ordinal, subclass) VALUES (?, ?, ?)`, class, i, sub); err != nil {
				return fmt.Errorf("failed to insert hierarchy: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset: %w", err)
	}
	return nil
}
