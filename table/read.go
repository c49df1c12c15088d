package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/scbirlab/cbnr/lines"
)

const headerSearchLimit = 20

// ParseError reports that a file's content could not be parsed under its
// declared format.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Read parses delimited text into a Table. The first record is the header;
// every following record must have the same number of fields. Zero-byte
// input yields an empty Table, not an error.
func Read(r io.Reader, f Format) (*Table, error) {
	if f != TSV && f != CSV {
		return nil, fmt.Errorf("%w: cannot read %s as delimited text", ErrUnsupportedFormat, f)
	}
	cr := csv.NewReader(r)
	cr.Comma = f.Delim()
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Table{}, nil
	}
	t := &Table{Columns: records[0]}
	if len(records) > 1 {
		t.Rows = records[1:]
	}
	return t, nil
}

// ReadFile parses one input file as the given format. Paths ending in .gz
// or .gzip are decompressed on the fly. A missing file surfaces the
// underlying fs.ErrNotExist; malformed content surfaces a *ParseError.
func ReadFile(path string, f Format) (*Table, error) {
	if f == XLSX {
		return readXLSX(path)
	}
	rc, err := lines.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer rc.Close()

	t, err := Read(rc, f)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return t, nil
}

// ReadRows parses only the header and the given 0-based data rows of a
// delimited file, without loading the rest into memory.
func ReadRows(path string, rows []int, f Format) (*Table, error) {
	if f == XLSX {
		return nil, fmt.Errorf("%w: cannot read selected rows from %s", ErrUnsupportedFormat, f)
	}
	nums := make([]int, 0, len(rows)+1)
	nums = append(nums, 0) // header line
	for _, r := range rows {
		nums = append(nums, r+1)
	}

	var buf bytes.Buffer
	if err := lines.Extract(path, nums, &buf); err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	t, err := Read(&buf, f)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return t, nil
}

func readXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	headerIdx := findHeaderRow(rows)
	if headerIdx == -1 {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("could not find header row")}
	}

	t := &Table{Columns: rows[headerIdx]}
	for _, row := range rows[headerIdx+1:] {
		// excelize trims trailing empty cells; square the row off so the
		// table invariant holds.
		cells := make([]string, len(t.Columns))
		copy(cells, row)
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

// findHeaderRow locates the first plausible header: the row among the
// leading rows with the most non-empty cells, at least one containing text.
// Spreadsheets often carry title or summary rows above the real header.
func findHeaderRow(rows [][]string) int {
	maxNonEmpty := 0
	headerIdx := -1

	limit := len(rows)
	if limit > headerSearchLimit {
		limit = headerSearchLimit
	}

	for i := 0; i < limit; i++ {
		nonEmpty := 0
		hasText := false
		for _, cell := range rows[i] {
			trimmed := strings.TrimSpace(cell)
			if trimmed == "" {
				continue
			}
			nonEmpty++
			if containsLetters(trimmed) {
				hasText = true
			}
		}
		if nonEmpty > maxNonEmpty && hasText {
			maxNonEmpty = nonEmpty
			headerIdx = i
		}
	}
	return headerIdx
}

func containsLetters(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
