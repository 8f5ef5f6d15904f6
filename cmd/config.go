package cmd

import (
	"fmt"
	"strings"

	"github.com/boardsnap/boardsnap/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage provider settings",
		Long: `Reads and writes the boardsnap settings file.

Keys: ` + strings.Join(config.Keys(), ", ") + `

Environment variables override the file: BOARDSNAP_<KEY> with dots as underscores,
plus OPENAI_API_KEY, DEEPSEEK_API_KEY and GEMINI_API_KEY.`,
	}

	setCmd := &cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Store a setting",
		Example: `  boardsnap config set openai.api_key sk-...
  boardsnap config set provider gemini`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if err := store.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s saved to %s\n", args[0], store.Path())
			return nil
		},
	}

	var reveal bool
	getCmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Show effective settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Load(root.configPath)
			if err != nil {
				return err
			}

			keys := config.Keys()
			if len(args) == 1 {
				keys = []string{args[0]}
			}
			for _, key := range keys {
				value := store.Get(key)
				if config.IsSecret(key) && !reveal {
					value = config.Mask(value)
				}
				if len(args) == 1 {
					fmt.Fprintln(cmd.OutOrStdout(), value)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", key, value)
			}
			return nil
		},
	}
	getCmd.Flags().BoolVar(&reveal, "reveal", false, "Print API keys unmasked")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), store.Path())
			return nil
		},
	}

	cmd.AddCommand(setCmd, getCmd, pathCmd)
	return cmd
}
