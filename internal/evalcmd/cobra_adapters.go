package evalcmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/boardsnap/boardsnap/internal/analysis"
	"github.com/boardsnap/boardsnap/internal/config"
	"github.com/boardsnap/boardsnap/internal/eval/results"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command for measuring FEN accuracy on a labelled dataset
func NewRunCmd() *cobra.Command {
	var opts RunOptions
	var provider string
	var model string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate a provider against a labelled chessboard dataset",
		Long: `Run every sampled dataset record through the configured vision provider and
compare the recognised FEN against the labelled one.

The dataset is a parquet or jsonl file with id, image_path and fen columns.
Relative image paths are resolved against the dataset's directory.`,
		Example: `  # Evaluate 10 boards with whichever provider has a key
  boardsnap eval run --dataset ./boards/boards.jsonl --sample 10

  # Evaluate the full dataset with OpenAI, 4 requests at a time
  boardsnap eval run --dataset ./boards/boards.parquet --sample -1 --provider openai --concurrency 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.DatasetPath); os.IsNotExist(err) {
				return fmt.Errorf("dataset file not found: %s", opts.DatasetPath)
			}

			// inherited from the root command when present
			configPath, _ := cmd.Flags().GetString("config")
			store, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg, err := config.Resolve(store, provider, model)
			if err != nil {
				return err
			}
			if opts.Timeout <= 0 {
				opts.Timeout = store.RequestTimeout()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			agg, path, err := NewRunner(analysis.NewService(), nil).Run(ctx, cfg, opts)
			if agg != nil {
				agg.WriteSummary(cmd.OutOrStdout())
			}
			if err != nil {
				return err
			}

			absPath, _ := filepath.Abs(path)
			fmt.Fprintf(cmd.OutOrStdout(), "\nEvaluation results saved to: %s\n", absPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Generate a report with:\n  boardsnap eval report --results %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.DatasetPath, "dataset", "", "Path to parquet or jsonl dataset file (required)")
	cmd.Flags().StringVar(&opts.OutputDir, "output", results.DefaultDir, "Directory for the YAML run file")
	cmd.Flags().StringVar(&opts.OutputJSON, "output-json", "", "Optional path for aggregate JSON results")
	cmd.Flags().IntVar(&opts.Sample, "sample", 10, "Number of records to evaluate (-1 for all)")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 2, "Number of concurrent provider requests")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "Per-image timeout (defaults to the configured request timeout)")
	cmd.Flags().StringVar(&provider, "provider", "", "Vision provider (openai, deepseek or gemini)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults to provider's default)")

	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var datasetPath string
	var limit int
	var interactive bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect dataset records",
		Long: `Inspect records from a parquet or jsonl dataset file.

Each record's expected FEN is validated and its board is drawn, which helps
spot mislabelled positions before spending provider quota on them.`,
		Example: `  # Inspect first 5 records interactively
  boardsnap eval inspect --dataset ./boards.parquet --limit 5 --interactive

  # Inspect all records
  boardsnap eval inspect --dataset ./boards.jsonl --limit 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return executeInspect(ctx, cmd.OutOrStdout(), cmd.InOrStdin(), datasetPath, limit, interactive)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to parquet or jsonl dataset file (required)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of records to inspect (0 for all)")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Pause after each record (press Enter to continue)")

	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise a saved evaluation run",
		Example: `  boardsnap eval report --results evals/2024-01-02_03-04-05_openai.yaml
  boardsnap eval report --results evals/2024-01-02_03-04-05_openai.yaml --format csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(cmd.OutOrStdout(), resultsPath, format)
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "Path to a YAML run file (required)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json or csv)")

	_ = cmd.MarkFlagRequired("results")
	return cmd
}
