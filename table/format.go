package table

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when a format name or file extension
// does not name a known tabular format.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format identifies how a tabular file is encoded on disk.
type Format int

const (
	// TSV is tab-separated text. It is the default everywhere a format
	// can be omitted.
	TSV Format = iota
	// CSV is comma-separated text.
	CSV
	// XLSX is an Excel workbook. It can be sniffed from a file extension
	// and read, but is never a valid declared format for delimited input.
	XLSX
)

func (f Format) String() string {
	switch f {
	case TSV:
		return "TSV"
	case CSV:
		return "CSV"
	case XLSX:
		return "XLSX"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Delim returns the field delimiter for delimited formats. XLSX has no
// delimiter and returns 0.
func (f Format) Delim() rune {
	switch f {
	case TSV:
		return '\t'
	case CSV:
		return ','
	}
	return 0
}

// ParseFormat resolves a format name or file extension, case-insensitively.
// A leading dot is ignored, so both "csv" and ".csv" work. ".txt" counts
// as TSV. Unknown names return an error wrapping ErrUnsupportedFormat.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "tsv", "txt":
		return TSV, nil
	case "csv":
		return CSV, nil
	case "xlsx":
		return XLSX, nil
	}
	return TSV, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// Sniff infers a file's format from its extension, stripping a trailing
// .gz or .gzip first so "data.csv.gz" sniffs as CSV. The second return is
// false when the extension is not recognized.
func Sniff(path string) (Format, bool) {
	path = TrimGzip(path)
	f, err := ParseFormat(filepath.Ext(path))
	return f, err == nil
}

// Resolve picks the format for a file: an explicitly declared format name
// wins, otherwise the extension is sniffed, otherwise TSV.
func Resolve(path, declared string) (Format, error) {
	if declared != "" {
		return ParseFormat(declared)
	}
	if f, ok := Sniff(path); ok {
		return f, nil
	}
	return TSV, nil
}

// IsGzip reports whether a path names a gzip-compressed file.
func IsGzip(path string) bool {
	return strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".gzip")
}

// TrimGzip removes a trailing .gz or .gzip extension, if present.
func TrimGzip(path string) string {
	if IsGzip(path) {
		return strings.TrimSuffix(path, filepath.Ext(path))
	}
	return path
}
