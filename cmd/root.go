package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/boardsnap/boardsnap/internal/metrics"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	// vision providers register themselves
	_ "github.com/boardsnap/boardsnap/internal/deepseek"
	_ "github.com/boardsnap/boardsnap/internal/gemini"
	_ "github.com/boardsnap/boardsnap/internal/openai"
)

type rootOptions struct {
	verbose    bool
	configPath string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "boardsnap",
		Short: "Chessboard image to FEN/PGN with vision LLMs, opened on lichess",
		Long: `boardsnap reads a photo or screenshot of a chessboard, asks a vision-capable
language model for the position, and opens the result on lichess.org for analysis.

Supported providers are OpenAI, DeepSeek and Gemini. Without an explicit provider the
first one with an API key is used, in the order deepseek, openai, gemini.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			slog.SetDefault(newLogger(opts.verbose))
			metrics.Register()
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file path (default is the user config directory)")

	// Add subcommands
	cmd.AddCommand(newAnalyzeCmd(opts))
	cmd.AddCommand(newLinkCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newEvalCmd())

	return cmd
}

// newLogger writes text logs to stderr so stdout stays free for results
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if env := os.Getenv("BOARDSNAP_LOG_LEVEL"); env != "" {
		if err := level.UnmarshalText([]byte(strings.ToUpper(env))); err != nil {
			level = slog.LevelWarn
		}
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
