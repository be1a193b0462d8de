package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/witcherscript-ls/cmd/wsls/commands"
	"github.com/teranos/witcherscript-ls/logger"
)

var rootCmd = &cobra.Command{
	Use:   "wsls",
	Short: "wsls - WitcherScript language server",
	Long: `wsls - Language server for the WitcherScript scripting language.

wsls analyzes workspaces of script contents (projects and their
dependencies), builds a queryable symbol model and serves editor features
over the Language Server Protocol.

Available commands:
  serve    - Start the language server on stdio
  analyze  - Analyze a workspace once and print diagnostics
  version  - Print version information

Examples:
  wsls serve                           # Start LSP server (stdio)
  wsls analyze --workspace ./myMod     # One-shot workspace diagnostics
  wsls analyze -w ./myMod -r ~/w3/content`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonOutput, logger.VerbosityToLevel(verbosity)); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit structured JSON logs on stderr")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.AnalyzeCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
