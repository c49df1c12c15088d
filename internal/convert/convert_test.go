package convert

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scbirlab/cbnr/table"
)

type memSink struct {
	bytes.Buffer
	opened bool
	closed bool
}

func (s *memSink) open() (io.WriteCloser, error) {
	s.opened = true
	return s, nil
}

func (s *memSink) Close() error {
	s.closed = true
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConvertSingleCSV(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", "a,b\n1,2\n3,4\n")

	var sink memSink
	res, err := Convert([]string{in}, table.CSV, nil, sink.open, nil)
	require.NoError(t, err)

	assert.Equal(t, "a\tb\n1\t2\n3\t4\n", sink.String())
	assert.Equal(t, 1, res.InputsRead)
	assert.Equal(t, 2, res.RowsWritten)
	assert.Equal(t, []string{"a", "b"}, res.Columns)
	assert.True(t, sink.closed)
}

func TestConvertConcatenatesInOrder(t *testing.T) {
	dir := t.TempDir()
	in1 := writeFile(t, dir, "one.csv", "a,b\n1,2\n")
	in2 := writeFile(t, dir, "two.csv", "a,b\n3,4\n")

	var sink memSink
	res, err := Convert([]string{in1, in2}, table.CSV, nil, sink.open, nil)
	require.NoError(t, err)

	assert.Equal(t, "a\tb\n1\t2\n3\t4\n", sink.String())
	assert.Equal(t, 2, res.InputsRead)
}

func TestConvertUnionColumns(t *testing.T) {
	dir := t.TempDir()
	in1 := writeFile(t, dir, "one.csv", "a,b\n1,2\n")
	in2 := writeFile(t, dir, "two.csv", "b,c\n5,6\n")

	var sink memSink
	_, err := Convert([]string{in1, in2}, table.CSV, nil, sink.open, nil)
	require.NoError(t, err)

	assert.Equal(t, "a\tb\tc\n1\t2\t\n\t5\t6\n", sink.String())
}

func TestConvertStdin(t *testing.T) {
	var sink memSink
	res, err := Convert(nil, table.TSV, strings.NewReader("a\tb\n1\t2\n"), sink.open, nil)
	require.NoError(t, err)

	assert.Equal(t, "a\tb\n1\t2\n", sink.String())
	assert.Equal(t, 1, res.InputsRead)
}

func TestConvertEmptyStdin(t *testing.T) {
	var sink memSink
	res, err := Convert(nil, table.TSV, strings.NewReader(""), sink.open, nil)
	require.NoError(t, err)
	assert.Zero(t, sink.Len())
	assert.Zero(t, res.RowsWritten)
}

func TestConvertFailedInputLeavesSinkUntouched(t *testing.T) {
	dir := t.TempDir()
	in1 := writeFile(t, dir, "ok.csv", "a,b\n1,2\n")
	missing := filepath.Join(dir, "missing.csv")

	var sink memSink
	_, err := Convert([]string{in1, missing}, table.CSV, nil, sink.open, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.False(t, sink.opened, "sink must not be opened when an input fails")
}

func TestConvertParseErrorAborts(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.csv", "a,b\n1\n")

	var sink memSink
	_, err := Convert([]string{bad}, table.CSV, nil, sink.open, nil)
	require.Error(t, err)
	var perr *table.ParseError
	assert.ErrorAs(t, err, &perr)
	assert.False(t, sink.opened)
}

func TestConvertReportsProgress(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", "a,b\n1,2\n")

	progress := make(chan float64, 16)
	var sink memSink
	_, err := Convert([]string{in}, table.CSV, nil, sink.open, progress)
	require.NoError(t, err)
	close(progress)

	var last float64
	for p := range progress {
		assert.GreaterOrEqual(t, p, last)
		last = p
	}
	assert.Equal(t, 1.0, last)
}
