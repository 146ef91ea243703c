package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/typescribe/internal/submission"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the example presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("PRESET", "SDK NAME", "VERSION", "BASE URL", "DESCRIPTION")
			for _, p := range submission.Presets() {
				t.Row(p.Name, p.SDKName, p.Version, p.BaseURL, p.Description)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return err
		},
	}
}
