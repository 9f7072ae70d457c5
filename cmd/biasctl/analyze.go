package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"biasbuster-backend/internal/analyses"
	"biasbuster-backend/internal/bootstrap"
	"biasbuster-backend/internal/extract"
	"biasbuster-backend/internal/llm"
	"biasbuster-backend/internal/scenarios"
	"biasbuster-backend/internal/shared/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var (
	analyzeScenario string
	analyzeFile     string
	analyzeDemo     string
	analyzePrompt   string
)

//nolint:gochecknoglobals // Cobra boilerplate
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a resume under a bias scenario",
	Long: `Analyze a resume file (pdf, docx or plain text) or a built-in demo resume.

Examples:
  # Analyze a local resume with the keyword-filter scenario
  biasctl analyze --scenario keyword --file ./resume.pdf

  # Run the female-coded Amazon demo resume
  biasctl analyze --scenario amazon --demo female`,
	RunE: runAnalyze,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeScenario, "scenario", "s", "", "Scenario id (amazon, hirevue, keyword, socioeconomic)")
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "Path to a resume file")
	analyzeCmd.Flags().StringVar(&analyzeDemo, "demo", "", "Demo resume variant to use instead of a file")
	analyzeCmd.Flags().StringVar(&analyzePrompt, "prompt", "", "Override the scenario's default user prompt")
	_ = analyzeCmd.MarkFlagRequired("scenario")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Load()

	catalog, err := scenarios.Default()
	if err != nil {
		return err
	}
	spec := catalog.Lookup(scenarios.Parse(analyzeScenario))

	text, filename, err := resumeInput(ctx, spec)
	if err != nil {
		return err
	}

	client, err := bootstrap.BuildLLMClient(cfg)
	if err != nil {
		return err
	}
	svc := bootstrap.NewAnalysesService(cfg, catalog, client)

	prompt := strings.TrimSpace(analyzePrompt)
	if prompt == "" {
		prompt = spec.Prompt
	}

	if verbose {
		fmt.Printf("Provider %s, model %s, scenario %s\n", cfg.LLMProvider, cfg.LLMModel, spec.ID)
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Suffix = " Analyzing resume..."
	s.Start()
	outcome, err := svc.Analyze(ctx, analyses.Request{
		ResumeText:      text,
		ScenarioID:      analyzeScenario,
		Prompt:          prompt,
		UserFingerprint: "biasctl",
		Filename:        filename,
	})
	s.Stop()
	if err != nil {
		var upstream *llm.UpstreamError
		if errors.As(err, &upstream) {
			return fmt.Errorf("analysis failed (transient=%t): %w", upstream.Transient(), err)
		}
		return err
	}

	printOutcome(outcome)
	return nil
}

func resumeInput(ctx context.Context, spec scenarios.Spec) (string, string, error) {
	if analyzeDemo != "" {
		demo, err := spec.DemoResume(analyzeDemo)
		if err != nil {
			return "", "", fmt.Errorf("demo %q for scenario %s: %w", analyzeDemo, spec.ID, err)
		}
		return demo.Text, demo.Variant + ".txt", nil
	}
	if analyzeFile == "" {
		return "", "", errors.New("provide --file or --demo")
	}

	data, err := os.ReadFile(analyzeFile)
	if err != nil {
		return "", "", fmt.Errorf("read resume: %w", err)
	}
	name := filepath.Base(analyzeFile)
	text, err := extract.ExtractTextFromBytes(ctx, data, "", name)
	if err != nil {
		return "", "", fmt.Errorf("extract resume text: %w", err)
	}
	return text, name, nil
}

func printOutcome(outcome analyses.Outcome) {
	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow)

	if outcome.Fallback {
		yellow.Printf("Model output unavailable (%s); showing scenario fallback.\n\n", outcome.Code)
	}

	level := analyses.LevelForScore(outcome.Analysis.BiasScore)
	cyan.Printf("Bias score: ")
	levelColor(level).Printf("%.0f (%s)\n\n", outcome.Analysis.BiasScore, level)

	cyan.Println("Feedback")
	for _, item := range outcome.Analysis.Feedback {
		fmt.Printf("  - %s\n", item)
	}

	if len(outcome.Analysis.Recommendations) > 0 {
		fmt.Println()
		cyan.Println("Recommendations")
		for _, item := range outcome.Analysis.Recommendations {
			fmt.Printf("  - %s\n", item)
		}
	}
}

func levelColor(level analyses.Level) *color.Color {
	switch level {
	case analyses.LevelLow:
		return color.New(color.FgGreen)
	case analyses.LevelMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
