package main

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "biasctl",
	Short: "Run BiasBuster resume analyses from the terminal",
	Long: `biasctl lists the hiring-bias scenarios and runs a resume through one of
them using the same analysis service as the HTTP API.

Provider credentials are read from the environment (OPENAI_API_KEY or
ANTHROPIC_API_KEY, selected by LLM_PROVIDER).`,
	SilenceUsage: true,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
