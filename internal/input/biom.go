package input

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"lefseformat/internal/format"
)

// IDRowName names the sample id row of a decoded BIOM table.
const IDRowName = "ID"

// hdf5Magic prefixes BIOM 2.x files, which are HDF5 containers.
var hdf5Magic = []byte("\x89HDF\r\n\x1a\n")

// biomTable is the subset of the BIOM 1.0 JSON schema used here.
type biomTable struct {
	Format     string      `json:"format"`
	MatrixType string      `json:"matrix_type"`
	Shape      []int       `json:"shape"`
	Data       [][]float64 `json:"data"`
	Rows       []biomEntry `json:"rows"`
	Columns    []biomEntry `json:"columns"`
}

type biomEntry struct {
	ID       string                 `json:"id"`
	Metadata map[string]interface{} `json:"metadata"`
}

// ReadBIOM decodes a BIOM 1.0 JSON table. The result has the sample id row
// first, then one row per sample metadata key in sorted key order, then one
// row per observation. Observations are named by their taxonomy joined with
// "|" when present, otherwise by their id. It also returns the metadata row
// names, the id row included.
func ReadBIOM(r io.Reader) (format.RawMatrix, []string, error) {
	var m format.RawMatrix
	data, err := io.ReadAll(r)
	if err != nil {
		return m, nil, fmt.Errorf("failed to read biom table: %w", err)
	}
	if bytes.HasPrefix(data, hdf5Magic) {
		return m, nil, fmt.Errorf("%w: BIOM 2.x (HDF5) tables are not supported, convert to JSON first", ErrUnsupportedFormat)
	}

	var tbl biomTable
	if err := json.Unmarshal(data, &tbl); err != nil {
		return m, nil, fmt.Errorf("%w: invalid biom json: %v", format.ErrFormat, err)
	}

	nObs, nSamples := len(tbl.Rows), len(tbl.Columns)
	if len(tbl.Shape) == 2 && (tbl.Shape[0] != nObs || tbl.Shape[1] != nSamples) {
		return m, nil, fmt.Errorf("%w: biom shape %v does not match %d rows and %d columns",
			format.ErrFormat, tbl.Shape, nObs, nSamples)
	}
	if nSamples == 0 {
		return m, nil, ErrEmptyInput
	}

	values, err := tbl.dense()
	if err != nil {
		return m, nil, err
	}

	ids := make([]string, nSamples)
	for j, c := range tbl.Columns {
		ids[j] = c.ID
	}
	m.Names = append(m.Names, IDRowName)
	m.Rows = append(m.Rows, ids)
	names := []string{IDRowName}

	for _, key := range metadataKeys(tbl.Columns) {
		row := make([]string, nSamples)
		for j, c := range tbl.Columns {
			row[j] = metadataString(c.Metadata[key])
		}
		m.Names = append(m.Names, key)
		m.Rows = append(m.Rows, row)
		names = append(names, key)
	}

	for i, obs := range tbl.Rows {
		row := make([]string, nSamples)
		for j, v := range values[i] {
			row[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		m.Names = append(m.Names, observationName(obs))
		m.Rows = append(m.Rows, row)
	}
	return m, names, nil
}

// dense expands the data block into an observation x sample grid.
func (t *biomTable) dense() ([][]float64, error) {
	nObs, nSamples := len(t.Rows), len(t.Columns)
	out := make([][]float64, nObs)
	for i := range out {
		out[i] = make([]float64, nSamples)
	}

	switch strings.ToLower(t.MatrixType) {
	case "sparse":
		for _, e := range t.Data {
			if len(e) != 3 {
				return nil, fmt.Errorf("%w: sparse biom entry %v is not [row, column, value]", format.ErrFormat, e)
			}
			r, c := int(e[0]), int(e[1])
			if r < 0 || r >= nObs || c < 0 || c >= nSamples {
				return nil, fmt.Errorf("%w: sparse biom entry %v out of bounds", format.ErrFormat, e)
			}
			out[r][c] = e[2]
		}
	case "dense", "":
		if len(t.Data) != nObs {
			return nil, fmt.Errorf("%w: dense biom data has %d rows, expected %d", format.ErrFormat, len(t.Data), nObs)
		}
		for i, row := range t.Data {
			if len(row) != nSamples {
				return nil, fmt.Errorf("%w: dense biom row %d has %d values, expected %d", format.ErrFormat, i, len(row), nSamples)
			}
			copy(out[i], row)
		}
	default:
		return nil, fmt.Errorf("%w: matrix_type %q", ErrUnsupportedFormat, t.MatrixType)
	}
	return out, nil
}

func metadataKeys(cols []biomEntry) []string {
	seen := make(map[string]struct{})
	for _, c := range cols {
		for k := range c.Metadata {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func metadataString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []interface{}:
		parts := make([]string, len(x))
		for i, p := range x {
			parts[i] = metadataString(p)
		}
		return strings.Join(parts, "|")
	default:
		return fmt.Sprint(x)
	}
}

func observationName(e biomEntry) string {
	if tax, ok := e.Metadata["taxonomy"]; ok {
		if name := metadataString(tax); strings.Trim(name, "|") != "" {
			return name
		}
	}
	return e.ID
}
