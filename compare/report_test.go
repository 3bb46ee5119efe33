package compare

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testReport() *Report {
	return &Report{
		RunID:   "0b7d2a8e-7c55-4c53-9a43-5a0f3a7d1e10",
		Config:  smallConfig(),
		Patches: 16,
		Dim:     8,
		Frames: []FrameResult{
			{Index: 0},
			{Index: 1, Reused: 5, MaxDiff: 0.25, MeanDiff: 0.01, ReusedMax: 0.25, NewMax: 0.125},
			{Index: 2, Reused: 5, MaxDiff: 0.5, MeanDiff: 0.02, ReusedMax: 0.5, NewMax: 0.3},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "TABLE": FormatTable, "csv": FormatCSV, " json ": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		require.Equal(t, want, got, "ParseFormat(%q)", in)
	}

	_, err := ParseFormat("xml")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testReport().Write(&buf, FormatTable))

	out := buf.String()
	require.Contains(t, out, "run 0b7d2a8e-7c55-4c53-9a43-5a0f3a7d1e10")
	require.Contains(t, out, "MAX DIFF")
	require.Contains(t, out, "0.500000")
	require.Contains(t, out, "0.125000")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testReport().Write(&buf, FormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	require.Equal(t, columns, records[0])
	require.Equal(t, []string{"2", "5", "0.500000", "0.020000", "0.500000", "0.300000"}, records[3])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testReport().Write(&buf, FormatJSON))

	var got Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, testReport().Frames, got.Frames)
	require.Equal(t, testReport().Config, got.Config)
	require.True(t, strings.Contains(buf.String(), `"dtype": "f32"`))
}

func TestWriteUnknownFormat(t *testing.T) {
	require.ErrorIs(t, testReport().Write(&bytes.Buffer{}, Format("xml")), ErrUnknownFormat)
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, testReport().Export(path, FormatCSV))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "FRAME,REUSED"))
}

func TestWorst(t *testing.T) {
	worst, ok := testReport().Worst()
	require.True(t, ok)
	require.Equal(t, 2, worst.Index)

	_, ok = (&Report{}).Worst()
	require.False(t, ok)
}
