package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{"Upper TSV", "TSV", TSV, false},
		{"Lower tsv", "tsv", TSV, false},
		{"Mixed case", "Csv", CSV, false},
		{"Dotted extension", ".csv", CSV, false},
		{"Txt counts as TSV", "txt", TSV, false},
		{"Excel", "xlsx", XLSX, false},
		{"JSON rejected", "json", TSV, true},
		{"Empty rejected", "", TSV, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		path string
		want Format
		ok   bool
	}{
		{"Plain CSV", "data.csv", CSV, true},
		{"Plain TSV", "data.tsv", TSV, true},
		{"Txt", "notes.txt", TSV, true},
		{"Gzipped CSV", "data.csv.gz", CSV, true},
		{"Gzipped TSV", "data.tsv.gzip", TSV, true},
		{"Excel", "report.xlsx", XLSX, true},
		{"Unknown extension", "data.parquet", TSV, false},
		{"No extension", "data", TSV, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Sniff(tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Run("Declared format wins over extension", func(t *testing.T) {
		f, err := Resolve("data.tsv", "csv")
		require.NoError(t, err)
		assert.Equal(t, CSV, f)
	})

	t.Run("Falls back to sniffing", func(t *testing.T) {
		f, err := Resolve("data.csv", "")
		require.NoError(t, err)
		assert.Equal(t, CSV, f)
	})

	t.Run("Defaults to TSV", func(t *testing.T) {
		f, err := Resolve("data.unknown", "")
		require.NoError(t, err)
		assert.Equal(t, TSV, f)
	})

	t.Run("Bad declared format errors", func(t *testing.T) {
		_, err := Resolve("data.csv", "parquet")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestDelim(t *testing.T) {
	assert.Equal(t, '\t', TSV.Delim())
	assert.Equal(t, ',', CSV.Delim())
}

func TestTrimGzip(t *testing.T) {
	assert.Equal(t, "a.csv", TrimGzip("a.csv.gz"))
	assert.Equal(t, "a.tsv", TrimGzip("a.tsv.gzip"))
	assert.Equal(t, "a.csv", TrimGzip("a.csv"))
}
