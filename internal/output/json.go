package output

import (
	"encoding/json"
	"fmt"
	"io"

	"lefseformat/internal/format"
)

// Document is the JSON form of a dataset.
type Document struct {
	Features       map[string][]float64 `json:"feats"`
	FeatureOrder   []string             `json:"feat_order"`
	Norm           float64              `json:"norm"`
	Labels         map[string][]string  `json:"cls"`
	ClassSlices    map[string][2]int    `json:"class_sl"`
	SubclassSlices map[string][2]int    `json:"subclass_sl"`
	ClassHierarchy map[string][]string  `json:"class_hierarchy"`
	SampleOrder    []int                `json:"sample_order"`
}

// NewDocument converts ds into its JSON form.
func NewDocument(ds *format.Dataset) Document {
	doc := Document{
		Features:       make(map[string][]float64, ds.Features.Len()),
		FeatureOrder:   ds.Features.Names(),
		Norm:           ds.Norm,
		Labels:         map[string][]string{"class": ds.Labels.Class, "subclass": ds.Labels.Subclass},
		ClassSlices:    pairs(ds.ClassSlices),
		SubclassSlices: pairs(ds.SubclassSlices),
		ClassHierarchy: ds.ClassHierarchy,
		SampleOrder:    ds.Order,
	}
	if ds.Labels.Subject != nil {
		doc.Labels["subject"] = ds.Labels.Subject
	}
	ds.Features.Each(func(name string, values []float64) {
		doc.Features[name] = values
	})
	return doc
}

func pairs(m map[string]format.Slice) map[string][2]int {
	out := make(map[string][2]int, len(m))
	for k, s := range m {
		out[k] = [2]int{s.Start, s.End}
	}
	return out
}

// WriteJSON encodes ds to w.
func WriteJSON(w io.Writer, ds *format.Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(ds)); err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	return nil
}

// ReadJSON decodes a document written by WriteJSON.
func ReadJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return &doc, nil
}
