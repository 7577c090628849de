package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lefseformat/internal/output"
	"lefseformat/internal/runner"
)

// Summary palette
var (
	accentColor = lipgloss.Color("#8BC34A")
	mutedColor  = lipgloss.Color("#6B7280")
	borderColor = lipgloss.Color("#2A3850")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	keyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)
)

func row(key string, value any) string {
	return keyStyle.Render(key+":") + " " + fmt.Sprint(value)
}

// renderResults draws one box per finished job.
func renderResults(results []*runner.Result) string {
	boxes := make([]string, 0, len(results))
	for _, res := range results {
		lines := []string{
			titleStyle.Render(res.Job.Output),
			row("input", res.Job.Input),
			row("samples", res.Samples),
			row("features", res.Features),
		}
		if res.Dropped > 0 {
			lines = append(lines, row("dropped", res.Dropped))
		}
		if res.Job.Table != "" {
			lines = append(lines, row("table", res.Job.Table))
		}
		lines = append(lines, row("run", res.RunID))
		boxes = append(boxes, boxStyle.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

// renderDocument summarizes a decoded JSON dataset.
func renderDocument(path string, doc *output.Document) string {
	norm := "none"
	if doc.Norm >= 0 {
		norm = fmt.Sprint(doc.Norm)
	}

	lines := []string{
		titleStyle.Render(path),
		row("samples", len(doc.Labels["class"])),
		row("features", len(doc.FeatureOrder)),
		row("norm", norm),
	}
	for _, class := range slicesByStart(doc.ClassSlices) {
		sl := doc.ClassSlices[class]
		lines = append(lines, row(class, fmt.Sprintf("%d samples, subclasses: %s",
			sl[1]-sl[0], strings.Join(doc.ClassHierarchy[class], ", "))))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// slicesByStart orders slice labels by their start position.
func slicesByStart(m map[string][2]int) []string {
	labels := make([]string, 0, len(m))
	for l := range m {
		labels = append(labels, l)
	}
	slices.SortFunc(labels, func(a, b string) int { return m[a][0] - m[b][0] })
	return labels
}
