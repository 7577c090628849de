package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"lefseformat/internal/format"
)

// WriteTable writes the tab-separated side table: one line per active label
// dimension, then one line per feature, all in final sample order.
func WriteTable(w io.Writer, ds *format.Dataset) error {
	bw := bufio.NewWriter(w)
	for _, name := range ds.Labels.LabelNames() {
		row, err := ds.Labels.Row(name)
		if err != nil {
			return err
		}
		writeLine(bw, name, row)
	}

	var cells []string
	ds.Features.Each(func(name string, values []float64) {
		cells = cells[:0]
		for _, v := range values {
			cells = append(cells, strconv.FormatFloat(v, 'g', -1, 64))
		}
		writeLine(bw, name, cells)
	})
	return bw.Flush()
}

func writeLine(w *bufio.Writer, name string, cells []string) {
	w.WriteString(name)
	if len(cells) > 0 {
		w.WriteByte('\t')
		w.WriteString(strings.Join(cells, "\t"))
	}
	w.WriteByte('\n')
}
