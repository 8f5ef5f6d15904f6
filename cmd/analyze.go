package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/boardsnap/boardsnap/internal/analysis"
	"github.com/boardsnap/boardsnap/internal/config"
	apperrors "github.com/boardsnap/boardsnap/internal/errors"
	"github.com/boardsnap/boardsnap/internal/images"
	"github.com/boardsnap/boardsnap/internal/lichess"
	"github.com/boardsnap/boardsnap/internal/models"
	"github.com/spf13/cobra"
)

// navigatorFactory is replaced in tests
var navigatorFactory = func() lichess.Navigator {
	return lichess.NewBrowserNavigator()
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var provider string
	var model string
	var open bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <image-path|image-url|->",
		Short: "Recognise the position in a chessboard image",
		Long: `Sends a chessboard image to a vision provider and prints the position as PGN.

The image may be a local file, an http(s) URL, or "-" to read from stdin.
With --open the position is opened on lichess for analysis.`,
		Example: `  # Analyze a screenshot with whichever provider has a key
  boardsnap analyze board.png

  # Use Gemini and open the result on lichess
  boardsnap analyze https://example.com/board.jpg --provider gemini --open

  # Pipe an image and print the full result as JSON
  cat board.png | boardsnap analyze - --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Load(root.configPath)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), store.RequestTimeout())
			defer cancel()

			fetcher := images.NewFetcher()
			fetcher.Stdin = cmd.InOrStdin()
			payload, err := fetcher.Load(ctx, args[0])
			if err != nil {
				return err
			}

			var result analysis.Result
			cfg, err := config.Resolve(store, provider, model)
			if err != nil {
				result = analysis.Failure(err)
			} else {
				result = analysis.NewService().Analyze(ctx, payload, cfg)
			}

			record := &models.AnalysisRecord{
				Result: result,
				Image: models.ImageInfo{
					Source:   args[0],
					MIMEType: payload.MIMEType,
					Width:    payload.Width,
					Height:   payload.Height,
				},
			}

			builder := lichess.NewBuilder(store.LichessBaseURL(), navigatorFactory())
			if result.Success {
				if action, err := builder.Build(result.PGN); err == nil {
					record.Link = &action
				}
			}

			if err := printRecord(cmd.OutOrStdout(), record, asJSON); err != nil {
				return err
			}
			if !result.Success {
				return result.Err()
			}

			if open {
				openOnLichess(cmd.Context(), cmd.ErrOrStderr(), builder, result.PGN)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Vision provider (openai, deepseek or gemini)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults to provider's default)")
	cmd.Flags().BoolVar(&open, "open", false, "Open the position on lichess")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")

	return cmd
}

func printRecord(w io.Writer, record *models.AnalysisRecord, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(record)
	}
	if !record.Success {
		return nil
	}
	fmt.Fprintln(w, record.PGN)
	if record.Link != nil && record.Link.Kind == lichess.KindDirect {
		fmt.Fprintf(w, "\n%s\n", record.Link.URL)
	}
	return nil
}

// openOnLichess falls back to printing the PGN for manual copying
func openOnLichess(ctx context.Context, w io.Writer, builder *lichess.Builder, pgn string) {
	if err := builder.Open(ctx, pgn); err != nil {
		slog.Warn("Failed to open lichess", "err", err)
		fmt.Fprintf(w, "%s\n\n%s\n", apperrors.ManualCopyMessage, pgn)
	}
}
