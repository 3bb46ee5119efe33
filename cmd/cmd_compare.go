// cmd_compare.go - Vergleich Token-Fusion gegen Cache-Reuse
// Hauptfunktionen: CompareHandler, newCompareCmd, compareConfig
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dcvla/vitcache/compare"
	"github.com/dcvla/vitcache/envconfig"
	"github.com/dcvla/vitcache/ml"
)

// newCompareCmd - Erstellt den compare Command
func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare cached key/value reuse against token fusion",
		Args:  cobra.NoArgs,
		RunE:  CompareHandler,
	}

	cmd.Flags().String("config", "", "YAML config file (default $VITCACHE_CONFIG)")
	cmd.Flags().Int("frames", 0, "Number of consecutive frames (>= 2)")
	cmd.Flags().Int("reuse-count", 0, "Patches reused on each frame after the first")
	cmd.Flags().Uint64("seed", 0, "Seed for reuse masks")
	cmd.Flags().String("device", "", "Device for cached tensors (cpu, cuda:0, metal)")
	cmd.Flags().String("dtype", "", "Cache precision (f32, f16, bf16)")
	cmd.Flags().String("frames-dir", "", "Load frames from a directory instead of synthetic frames")
	cmd.Flags().Bool("strict-shapes", false, "Reject per-layer shape changes within a sequence")
	cmd.Flags().StringP("format", "f", "table", "Output format (table, csv, json)")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().Bool("progress", term.IsTerminal(int(os.Stderr.Fd())), "Show a progress bar on stderr")

	return cmd
}

// CompareHandler - Fuehrt den Vergleich aus und gibt den Report aus
func CompareHandler(cmd *cobra.Command, args []string) error {
	format, err := compare.ParseFormat(mustString(cmd, "format"))
	if err != nil {
		return err
	}

	cfg, err := compareConfig(cmd)
	if err != nil {
		return err
	}

	var opts []compare.RunOption
	if progress, _ := cmd.Flags().GetBool("progress"); progress {
		bar := progressbar.NewOptions(compare.Steps(cfg),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("Comparing"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
		defer bar.Finish() //nolint:errcheck

		opts = append(opts, compare.WithProgress(func() {
			bar.Add(1) //nolint:errcheck
		}))
	}

	report, err := compare.Run(cmd.Context(), cfg, opts...)
	if err != nil {
		return err
	}

	if output := mustString(cmd, "output"); output != "" {
		if err := report.Export(output, format); err != nil {
			return err
		}
		slog.Info("report written", "path", output, "report", report)
		return nil
	}

	return report.Write(cmd.OutOrStdout(), format)
}

// compareConfig - Baut die Konfiguration aus Environment, YAML und Flags
func compareConfig(cmd *cobra.Command) (compare.Config, error) {
	cfg := compare.DefaultConfig()

	path := mustString(cmd, "config")
	if path == "" {
		path = envconfig.ConfigPath()
	}
	if path != "" {
		var err error
		if cfg, err = compare.LoadConfig(path); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("frames") {
		cfg.Frames, _ = flags.GetInt("frames")
	}
	if flags.Changed("reuse-count") {
		cfg.ReuseCount, _ = flags.GetInt("reuse-count")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("frames-dir") {
		cfg.FramesDir = mustString(cmd, "frames-dir")
	}
	if flags.Changed("strict-shapes") {
		cfg.StrictShapes, _ = flags.GetBool("strict-shapes")
	}
	if flags.Changed("device") {
		d, err := ml.ParseDevice(mustString(cmd, "device"))
		if err != nil {
			return cfg, fmt.Errorf("--device: %w", err)
		}
		cfg.Device = d
	}
	if flags.Changed("dtype") {
		dt, err := ml.ParseDType(mustString(cmd, "dtype"))
		if err != nil {
			return cfg, fmt.Errorf("--dtype: %w", err)
		}
		cfg.Backbone.DType = dt
	}

	return cfg, nil
}

func mustString(cmd *cobra.Command, name string) string {
	s, _ := cmd.Flags().GetString(name)
	return s
}
