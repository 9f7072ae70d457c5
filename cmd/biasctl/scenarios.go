package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"biasbuster-backend/internal/scenarios"
)

//nolint:gochecknoglobals // Cobra boilerplate
var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the available bias scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := scenarios.Default()
		if err != nil {
			return err
		}
		title := color.New(color.FgCyan, color.Bold)
		for _, spec := range catalog.All() {
			title.Printf("%s", spec.ID)
			fmt.Printf("  %s\n", spec.Name)
			fmt.Printf("    %s\n", spec.Description)
			if verbose {
				fmt.Printf("    score band: %.0f-%.0f, recommendations required: %t\n",
					spec.ScoreBand.Min, spec.ScoreBand.Max, spec.RequiresRecommendations)
				for _, d := range spec.Demos {
					fmt.Printf("    demo: %s (%s)\n", d.Variant, d.Label)
				}
			}
		}
		return nil
	},
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(scenariosCmd)
}
