// cmd.go - Haupt-CLI Setup und Root Command
// Hauptfunktionen: NewCLI, appendEnvDocs
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dcvla/vitcache/discover"
	"github.com/dcvla/vitcache/envconfig"
	"github.com/dcvla/vitcache/logutil"
)

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "vitcache",
		Short:         "ViT key/value cache reuse toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))
			discover.Register()
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Print(cmd.UsageString())
		},
	}

	compareCmd := newCompareCmd()
	envCmd := newEnvCmd()
	devicesCmd := newDevicesCmd()

	envVars := envconfig.AsMap()
	appendEnvDocs(compareCmd, []envconfig.EnvVar{
		envVars["VITCACHE_DEBUG"],
		envVars["VITCACHE_CONFIG"],
		envVars["VITCACHE_DEVICE"],
		envVars["VITCACHE_NUM_FRAMES"],
		envVars["VITCACHE_REUSE_COUNT"],
		envVars["VITCACHE_SEED"],
		envVars["VITCACHE_RESOLUTION"],
		envVars["VITCACHE_STRICT_SHAPES"],
	})
	appendEnvDocs(devicesCmd, []envconfig.EnvVar{envVars["VITCACHE_DEBUG"]})

	rootCmd.AddCommand(
		compareCmd,
		devicesCmd,
		envCmd,
	)

	return rootCmd
}
