package cmd

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dcvla/vitcache/compare"
	"github.com/dcvla/vitcache/ml"
)

const smallConfig = `
frames: 3
reuse_count: 4
backbone:
  layers: 2
  heads: 2
  head_dim: 4
  patch_size: 8
  resolution: 32
  seed: 1
  dtype: f32
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "compare.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smallConfig), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cli := NewCLI()
	cli.SetOut(&out)
	cli.SetErr(&out)
	cli.SetArgs(args)
	err := cli.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCompareCSV(t *testing.T) {
	out, err := execute(t, "compare", "--config", writeConfig(t), "--frames", "2", "--format", "csv")
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "Kopfzeile und zwei Frames")
	require.Equal(t, "FRAME", records[0][0])
	require.Equal(t, "4", records[2][1])
}

func TestCompareJSON(t *testing.T) {
	out, err := execute(t, "compare", "--config", writeConfig(t), "--reuse-count", "16", "--dtype", "bf16", "-f", "json")
	require.NoError(t, err)

	var report compare.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Frames, 3)
	require.Equal(t, 16, report.Config.ReuseCount)
	require.Equal(t, ml.DTypeBF16, report.Config.Backbone.DType)
	require.Equal(t, 16, report.Frames[2].Reused)
}

func TestCompareConfigFromEnv(t *testing.T) {
	t.Setenv("VITCACHE_CONFIG", writeConfig(t))

	out, err := execute(t, "compare")
	require.NoError(t, err)
	require.Contains(t, out, "MAX DIFF")
	require.Contains(t, out, "16 patches")
}

func TestCompareOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	out, err := execute(t, "compare", "--config", writeConfig(t), "-o", path, "-f", "json")
	require.NoError(t, err)
	require.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"run_id"`)
}

func TestCompareErrors(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(t, "compare", "--config", cfg, "--frames", "1")
	require.ErrorIs(t, err, compare.ErrInvalidConfig)

	_, err = execute(t, "compare", "--config", cfg, "--format", "xml")
	require.ErrorIs(t, err, compare.ErrUnknownFormat)

	_, err = execute(t, "compare", "--config", cfg, "--device", "tpu")
	require.Error(t, err)

	_, err = execute(t, "compare", "--config", cfg, "--device", "cuda:7")
	require.ErrorIs(t, err, ml.ErrDeviceUnavailable)

	_, err = execute(t, "compare", "--config", cfg, "--dtype", "int8")
	require.ErrorIs(t, err, ml.ErrUnsupportedDType)
}

func TestEnv(t *testing.T) {
	t.Setenv("VITCACHE_REUSE_COUNT", "42")

	out, err := execute(t, "env")
	require.NoError(t, err)
	require.Contains(t, out, "VITCACHE_REUSE_COUNT")
	require.Contains(t, out, "42")
	require.Less(t, strings.Index(out, "VITCACHE_CONFIG"), strings.Index(out, "VITCACHE_SEED"), "sortiert")
}

func TestDevices(t *testing.T) {
	out, err := execute(t, "devices")
	require.NoError(t, err)
	require.Contains(t, out, "DEVICE")
	require.Contains(t, out, "cpu")
}

func TestCompareProgress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	_, err := execute(t, "compare", "--config", writeConfig(t), "--progress", "-o", path, "-f", "csv")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "FRAME,"))
}
