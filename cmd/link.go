package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/boardsnap/boardsnap/internal/config"
	"github.com/boardsnap/boardsnap/internal/lichess"
	"github.com/spf13/cobra"
)

func newLinkCmd(root *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "link <pgn-file|->",
		Short: "Open PGN or FEN text on lichess",
		Long: `Opens PGN text on lichess. Text carrying a FEN opens the analysis board directly;
anything else is submitted to the lichess import page.

With --dry-run the navigation is recorded instead of performed and printed as JSON.`,
		Example: `  boardsnap link game.pgn
  echo '[FEN "8/8/8/4k3/8/8/8/4K3 w - - 0 1"]' | boardsnap link - --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pgn, err := readText(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			store, err := config.Load(root.configPath)
			if err != nil {
				return err
			}

			if dryRun {
				recorder := &lichess.RecordingNavigator{}
				if err := lichess.NewBuilder(store.LichessBaseURL(), recorder).Open(cmd.Context(), pgn); err != nil {
					return err
				}
				actions := recorder.Actions()
				if len(actions) == 0 {
					return fmt.Errorf("nothing was opened")
				}
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(actions[len(actions)-1])
			}

			builder := lichess.NewBuilder(store.LichessBaseURL(), navigatorFactory())
			if _, err := builder.Build(pgn); err != nil {
				return err
			}
			openOnLichess(cmd.Context(), cmd.ErrOrStderr(), builder, pgn)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the lichess link instead of opening it")

	return cmd
}

func readText(stdin io.Reader, source string) (string, error) {
	if source == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", source, err)
	}
	return string(data), nil
}
