package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	jsonOut     string
	mdOut       string
	timeout     time.Duration
	noFooter    bool
	skipCheck   bool
	showPreview bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|url|->",
	Short: "Analyze the clauses of one legal document",
	Long: `Analyze performs clause-level triage of a single document:
- Split the document into clauses (one per line, numbered headings fused)
- Embed every clause with the configured provider
- Rank clauses by how similar they are to the rest of the document
- Flag semantically unusual clauses with an isolation forest
- Suggest the closest remediation from the risk catalog for each flagged clause

Accepted input: .txt, .md, .html files, http(s) URLs, or "-" for stdin.

Example:
  clauserisk analyze contract.txt
  clauserisk analyze contract.txt --json report.json --md report.md
  cat contract.txt | clauserisk analyze - --provider hash
  clauserisk analyze https://example.com/terms.html --top-n 10`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&jsonOut, "json", "", "write JSON report to file")
	analyzeCmd.Flags().StringVar(&mdOut, "md", "", "write Markdown report to file")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "analysis timeout")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown report")
	analyzeCmd.Flags().BoolVar(&skipCheck, "skip-check", false, "skip the embedding provider availability check")
	analyzeCmd.Flags().BoolVar(&showPreview, "preview", false, "print the document preview before the summary")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	source := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	p, err := buildPipeline(cfg, logger, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Provider: %s/%s\n", cfg.Embedding.Provider, cfg.Embedding.Model)
	}

	if !skipCheck {
		if err := p.Ready(ctx); err != nil {
			return err
		}
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Analyzing %s...\n", source)
	}

	start := time.Now()
	result, err := p.AnalyzeFile(ctx, source)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", source, err)
	}

	logger.Debug("analysis finished",
		zap.String("source", source),
		zap.Int("clauses", result.ClauseCount),
		zap.Duration("elapsed", time.Since(start)),
	)

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ %d clauses, %d flagged (%v)\n", result.ClauseCount, result.AnomalousCount(), time.Since(start).Round(time.Millisecond))
		fmt.Fprintf(os.Stderr, "\n")
	}

	if showPreview && result.Preview != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", result.Preview)
	}

	return p.RenderReport(result, jsonOut, mdOut, cfg.Output.Verbose)
}
