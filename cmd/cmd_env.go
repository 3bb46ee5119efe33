// cmd_env.go - Anzeige der Konfiguration und Geraete
// Hauptfunktionen: EnvHandler, DevicesHandler, newEnvCmd, newDevicesCmd
package cmd

import (
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dcvla/vitcache/envconfig"
	"github.com/dcvla/vitcache/ml"
)

// newEnvCmd - Erstellt den env Command
func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show effective environment configuration",
		Args:  cobra.NoArgs,
		RunE:  EnvHandler,
	}
}

// newDevicesCmd - Erstellt den devices Command
func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List devices tensors can be placed on",
		Args:  cobra.NoArgs,
		RunE:  DevicesHandler,
	}
}

// EnvHandler - Gibt alle VITCACHE_* Variablen mit Wert und Beschreibung aus
func EnvHandler(cmd *cobra.Command, args []string) error {
	vars := envconfig.AsMap()
	values := envconfig.Values()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)

	var data [][]string
	for _, name := range names {
		v := vars[name]
		data = append(data, []string{v.Name, values[name], v.Description})
	}

	table := newTable(cmd)
	table.SetHeader([]string{"NAME", "VALUE", "DESCRIPTION"})
	table.AppendBulk(data)
	table.Render()
	return nil
}

// DevicesHandler - Listet CPU und alle erkannten Beschleuniger
func DevicesHandler(cmd *cobra.Command, args []string) error {
	var data [][]string
	for _, d := range ml.Devices() {
		memory := "-"
		if d.TotalMemory > 0 {
			memory = strconv.FormatUint(d.TotalMemory>>20, 10) + " MiB"
		}
		data = append(data, []string{d.Device.String(), d.Name, memory})
	}

	table := newTable(cmd)
	table.SetHeader([]string{"DEVICE", "NAME", "MEMORY"})
	table.AppendBulk(data)
	table.Render()
	return nil
}

func newTable(cmd *cobra.Command) *tablewriter.Table {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}
