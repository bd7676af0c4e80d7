package outwriter

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/leen324/locscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		precision int
		value     float64
		expected  string
	}{
		{precision: 1, value: 9.5, expected: "9.5"},
		{precision: 0, value: 14.25, expected: "14"},
		{precision: 2, value: 23.999, expected: "24.00"},
	}

	for _, tt := range tests {
		fmtFloat, intFmt := createFormatters(tt.precision)
		assert.Equal(t, tt.expected, fmtFloat(tt.value))
		assert.Equal(t, "%d", intFmt)
	}
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", formatCount(0))
	assert.Equal(t, "999", formatCount(999))
	assert.Equal(t, "12,345", formatCount(12345))
}

func TestUnsupported(t *testing.T) {
	err := unsupported(schema.ParquetOut, "stats")
	require.ErrorIs(t, err, ErrUnsupportedOutput)
	assert.Contains(t, err.Error(), "parquet output for stats")
}

func TestWriteJSONIndents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int{"visible": 3}))
	assert.Equal(t, "{\n  \"visible\": 3\n}\n", buf.String())
}

func TestWriteJSONError(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSON(&buf, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")
}

func TestWriteCSVWithHeader(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"type", "lines"}, func(w *csv.Writer) error {
		return w.Write([]string{"Go, mostly", "3"})
	})
	require.NoError(t, err)
	assert.Equal(t, "type,lines\n\"Go, mostly\",3\n", buf.String())

	err = writeCSVWithHeader(&buf, []string{"col"}, func(*csv.Writer) error {
		return assert.AnError
	})
	assert.Equal(t, assert.AnError, err)
}

func TestWriteWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	err := writeWithFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	}, "Wrote test")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	err = writeWithFile(path, func(io.Writer) error { return assert.AnError }, "Wrote test")
	assert.Equal(t, assert.AnError, err)

	err = writeWithFile("/nonexistent/dir/out.txt", func(io.Writer) error { return nil }, "Wrote test")
	assert.Error(t, err)
}
