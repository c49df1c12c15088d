// Package lines provides line-oriented access to large text files,
// transparently decompressing gzip and optionally reporting progress.
package lines

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/schollz/progressbar/v3"
)

// Scanner buffer cap; some exports carry very long lines.
const maxLineBytes = 16 * 1024 * 1024

type options struct {
	progress bool
	desc     string
}

// Option configures Count and Extract.
type Option func(*options)

// WithProgress renders a progress bar on stderr while the file is read.
func WithProgress(desc string) Option {
	return func(o *options) {
		o.progress = true
		o.desc = desc
	}
}

type gzipFile struct {
	*pgzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	if err := g.Reader.Close(); err != nil {
		g.file.Close()
		return err
	}
	return g.file.Close()
}

// Open opens a file for reading, wrapping it in a gzip reader when the
// path ends in .gz or .gzip.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".gzip") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gunzip %s: %w", path, err)
		}
		return &gzipFile{Reader: zr, file: f}, nil
	}
	return f, nil
}

func reader(path string, o options) (io.ReadCloser, io.Reader, func(), error) {
	rc, err := Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	var r io.Reader = rc
	done := func() {}
	if o.progress {
		// Decompressed size is unknown for gzip, so fall back to a spinner.
		size := int64(-1)
		if !strings.HasSuffix(path, ".gz") && !strings.HasSuffix(path, ".gzip") {
			if info, err := os.Stat(path); err == nil {
				size = info.Size()
			}
		}
		bar := progressbar.NewOptions64(size,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(o.desc),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		r = io.TeeReader(rc, bar)
		done = func() { bar.Finish() }
	}
	return rc, r, done, nil
}

// Count returns the number of lines in a file.
func Count(path string, opts ...Option) (int, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	rc, r, done, err := reader(path, o)
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	defer done()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	n := 0
	for sc.Scan() {
		n++
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("count lines in %s: %w", path, err)
	}
	return n, nil
}

// Extract copies the selected 0-based lines of a file to w, in file order,
// each followed by a newline. Reading stops after the largest requested
// line; line numbers past the end of the file are silently skipped.
func Extract(path string, nums []int, w io.Writer, opts ...Option) error {
	if len(nums) == 0 {
		return nil
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	rc, r, done, err := reader(path, o)
	if err != nil {
		return err
	}
	defer rc.Close()
	defer done()

	keep := make(map[int]bool, len(nums))
	last := 0
	for _, n := range nums {
		keep[n] = true
		if n > last {
			last = n
		}
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for i := 0; sc.Scan(); i++ {
		if keep[i] {
			if _, err := fmt.Fprintln(w, sc.Text()); err != nil {
				return err
			}
		}
		if i >= last {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("extract lines from %s: %w", path, err)
	}
	return nil
}
