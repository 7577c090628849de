package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"lefseformat/internal/format"
)

var (
	// ErrUnsupportedFormat is returned for inputs this package cannot decode.
	ErrUnsupportedFormat = errors.New("unsupported input format")

	// ErrEmptyInput is returned when a file holds no rows.
	ErrEmptyInput = errors.New("input has no rows")
)

// Format identifies a source file format.
type Format string

const (
	FormatText Format = "text"
	FormatBIOM Format = "biom"
)

// Source is a decoded input file.
type Source struct {
	Path   string
	Format Format
	Matrix format.RawMatrix
	// MetadataNames lists the sample metadata rows of a BIOM table in row
	// order, the id row first. Empty for text input.
	MetadataNames []string
}

// DetectFormat chooses the reader from the file name.
func DetectFormat(path string) Format {
	if strings.HasSuffix(strings.ToLower(path), ".biom") {
		return FormatBIOM
	}
	return FormatText
}

// ReadFile reads and decodes path.
func ReadFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	src, err := Read(f, DetectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	src.Path = path
	return src, nil
}

// Read decodes r as the given format.
func Read(r io.Reader, f Format) (*Source, error) {
	switch f {
	case FormatText:
		m, err := ReadDelimited(r)
		if err != nil {
			return nil, err
		}
		return &Source{Format: FormatText, Matrix: m}, nil
	case FormatBIOM:
		m, names, err := ReadBIOM(r)
		if err != nil {
			return nil, err
		}
		return &Source{Format: FormatBIOM, Matrix: m, MetadataNames: names}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// maxLine bounds a single input line.
const maxLine = 64 << 20

// ReadDelimited parses tab-separated text. Cells are trimmed, blank lines are
// skipped and the first cell of each line is the row name. Ragged rows are a
// format.ErrFormat.
func ReadDelimited(r io.Reader) (format.RawMatrix, error) {
	var m format.RawMatrix
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, "\t")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		m.Names = append(m.Names, cells[0])
		m.Rows = append(m.Rows, cells[1:])
	}
	if err := sc.Err(); err != nil {
		return m, fmt.Errorf("failed to scan input: %w", err)
	}
	if len(m.Rows) == 0 {
		return m, ErrEmptyInput
	}
	if err := m.Validate(); err != nil {
		return m, err
	}
	return m, nil
}
