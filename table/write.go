package table

import (
	"encoding/csv"
	"io"
)

// Write serializes a table as TSV: one header record then one record per
// row. Cells containing tabs, quotes, or newlines are quoted as needed.
// An empty table writes nothing.
func Write(w io.Writer, t *Table) error {
	return WriteDelim(w, t, TSV)
}

// WriteDelim serializes a table with the delimiter of the given format.
func WriteDelim(w io.Writer, t *Table, f Format) error {
	if t.Empty() {
		return nil
	}
	cw := csv.NewWriter(w)
	cw.Comma = f.Delim()
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
