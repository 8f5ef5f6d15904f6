package cmd

import (
	"github.com/boardsnap/boardsnap/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Position recognition evaluation tools",
		Long: `Evaluation tools for measuring how accurately each vision provider recognises
chessboard positions against a labelled dataset of images and FENs.`,
	}

	// Add eval subcommands
	cmd.AddCommand(evalcmd.NewRunCmd())
	cmd.AddCommand(evalcmd.NewReportCmd())
	cmd.AddCommand(evalcmd.NewInspectCmd())

	return cmd
}
