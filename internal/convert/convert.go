// Package convert wires the table package into the one-shot pipeline used
// by both the batch CLI and the interactive UI: read every input,
// concatenate, serialize as TSV.
package convert

import (
	"fmt"
	"io"

	"github.com/scbirlab/cbnr/table"
)

// OpenSink resolves the output destination. It is called only after every
// input has parsed, so a failed input never creates or truncates output.
type OpenSink func() (io.WriteCloser, error)

// Result summarizes a completed conversion.
type Result struct {
	InputsRead  int
	RowsWritten int
	Columns     []string
}

// Convert reads each input path as the declared format, concatenates the
// datasets in argument order, and writes the combined dataset as TSV.
// With no inputs, exactly one dataset is read from stdin. Fractional
// progress is reported on progressChan with non-blocking sends; the
// channel is not closed here.
func Convert(inputs []string, format table.Format, stdin io.Reader, open OpenSink, progressChan chan<- float64) (*Result, error) {
	report := func(p float64) {
		if progressChan != nil {
			select {
			case progressChan <- p:
			default:
			}
		}
	}

	var tables []*table.Table
	if len(inputs) == 0 {
		t, err := table.Read(stdin, format)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		tables = append(tables, t)
	} else {
		// One progress step per input, one for the final write.
		steps := float64(len(inputs) + 1)
		for i, path := range inputs {
			t, err := table.ReadFile(path, format)
			if err != nil {
				return nil, err
			}
			tables = append(tables, t)
			report(float64(i+1) / steps)
		}
	}

	combined := table.Concat(tables...)

	w, err := open()
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	if err := table.Write(w, combined); err != nil {
		w.Close()
		return nil, fmt.Errorf("write output: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close output: %w", err)
	}
	report(1.0)

	return &Result{
		InputsRead:  len(tables),
		RowsWritten: combined.NumRows(),
		Columns:     combined.Columns,
	}, nil
}
