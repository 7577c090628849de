package format

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// defaultSubclassSuffix builds the subclass of samples without a subclass row.
const defaultSubclassSuffix = "_subcl"

// Transform runs the whole pipeline over raw and returns the formatted dataset.
//
// Label selection problems are fixed with ResolveLabels and logged as
// warnings. Malformed values and unresolvable hierarchies abort the run with
// a *StageError; no partial dataset is returned in that case.
func Transform(raw RawMatrix, req LabelRequest, opts Options) (*Dataset, error) {
	log := opts.logger()
	start := time.Now()

	if err := raw.Validate(); err != nil {
		return nil, stageErr(StageValidate, err)
	}
	n := raw.Samples()
	if n == 0 {
		return nil, stageErr(StageValidate, ErrNoSamples)
	}

	req, diags := ResolveLabels(req, len(raw.Rows))
	for _, d := range diags {
		log.Warn("label selection adjusted", zap.String("stage", d.Stage), zap.String("detail", d.Message))
	}

	// Split label rows from feature rows, keeping feature order.
	labelRows := make(map[int]bool)
	for _, i := range req.active() {
		labelRows[i] = true
	}
	var featNames []string
	var featRows [][]string
	for i, row := range raw.Rows {
		if labelRows[i] {
			continue
		}
		featNames = append(featNames, raw.Names[i])
		featRows = append(featRows, row)
	}
	featNames = SanitizeNames(featNames)

	// Parsed before sorting so errors name the input column.
	table, dups, err := ParseFeatures(featNames, featRows, n)
	if err != nil {
		return nil, stageErr(StageParse, err)
	}
	if len(dups) > 0 {
		log.Warn("duplicate feature names after sanitization, keeping the last row", zap.Strings("features", dups))
	}

	ci, _ := req.Class.Index()
	labels := Labels{Class: append([]string(nil), raw.Rows[ci]...)}
	if si, ok := req.Subclass.Index(); ok {
		labels.Subclass = append([]string(nil), raw.Rows[si]...)
	}
	if ui, ok := req.Subject.Index(); ok {
		labels.Subject = append([]string(nil), raw.Rows[ui]...)
	}

	order := SortOrder(labels.sortKeys()...)
	labels = labels.permuted(order)

	if labels.Subclass == nil {
		labels.SubclassDefaulted = true
		labels.Subclass = make([]string, n)
		for i, c := range labels.Class {
			labels.Subclass[i] = c + defaultSubclassSuffix
		}
	}

	// A renamed subclass can sort differently from the label it replaced,
	// for example "x" becoming "A_x" next to an existing "A_x" run.
	labels.Subclass = DisambiguateSubclasses(labels.Class, labels.Subclass)
	labels, order = labels.resorted(order)

	if opts.MergeSmallSubclasses && !labels.SubclassDefaulted {
		merged, names := MergeSmallSubclasses(labels.Class, labels.Subclass, opts.MinSubclassSize)
		if len(names) > 0 {
			log.Warn("merged small subclasses",
				zap.Strings("subclasses", names),
				zap.Int("min_size", opts.MinSubclassSize))
			labels.Subclass = merged
			labels, order = labels.resorted(order)
		}
	}

	sl := ComputeSlices(labels.Class, labels.Subclass)
	log.Debug("samples sliced",
		zap.Int("samples", n),
		zap.Int("classes", len(sl.Class)),
		zap.Int("subclasses", len(sl.Subclass)))

	table.reorder(order)

	added, err := CompleteHierarchy(table)
	if err != nil {
		return nil, stageErr(StageHierarchy, err)
	}
	if len(added) > 0 {
		log.Debug("hierarchy completed", zap.Int("added", len(added)))
	}

	norm := opts.Norm
	if norm < 0 {
		norm = NoNormalization
	} else {
		for _, j := range Normalize(table, norm) {
			log.Warn("sample has zero basis total, values set to zero",
				zap.String("stage", StageNormalize), zap.Int("sample", j))
		}
	}

	log.Info("matrix formatted",
		zap.Int("samples", n),
		zap.Int("features", table.Len()),
		zap.Int("classes", len(sl.Class)),
		zap.Duration("elapsed", time.Since(start)))

	return &Dataset{
		Features:       table,
		Labels:         labels,
		ClassSlices:    sl.Class,
		SubclassSlices: sl.Subclass,
		ClassHierarchy: sl.Hierarchy,
		ClassOrder:     sl.ClassOrder,
		Norm:           norm,
		Order:          order,
	}, nil
}

func (l Labels) permuted(order []int) Labels {
	return Labels{
		Class:             permute(l.Class, order),
		Subclass:          permute(l.Subclass, order),
		Subject:           permute(l.Subject, order),
		SubclassDefaulted: l.SubclassDefaulted,
	}
}

// sortKeys returns the active label sequences in sort precedence.
func (l Labels) sortKeys() [][]string {
	keys := [][]string{l.Class}
	if l.Subclass != nil {
		keys = append(keys, l.Subclass)
	}
	if l.Subject != nil {
		keys = append(keys, l.Subject)
	}
	return keys
}

// resorted stably re-sorts relabelled samples. The returned order still maps
// final positions to raw columns.
func (l Labels) resorted(order []int) (Labels, []int) {
	next := SortOrder(l.sortKeys()...)
	return l.permuted(next), compose(order, next)
}

// LabelNames returns the active label dimensions in output order.
func (l Labels) LabelNames() []string {
	names := []string{"class", "subclass"}
	if l.Subject != nil {
		names = append(names, "subject")
	}
	return names
}

// Row returns the label sequence of the named dimension.
func (l Labels) Row(name string) ([]string, error) {
	switch name {
	case "class":
		return l.Class, nil
	case "subclass":
		return l.Subclass, nil
	case "subject":
		if l.Subject != nil {
			return l.Subject, nil
		}
	}
	return nil, fmt.Errorf("no %q labels", name)
}
