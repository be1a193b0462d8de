package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/diagnostics"
	"github.com/teranos/witcherscript-ls/errors"
)

// AnalyzeCmd analyzes a workspace once and prints diagnostics.
var AnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a workspace once and print diagnostics",
	Long: `Analyze the given workspace and repository roots, then print every
diagnostic grouped by file. Exits non-zero when errors are present,
making it usable in CI for mod projects.`,
	RunE: runAnalyze,
}

func init() {
	AnalyzeCmd.Flags().StringSliceP("workspace", "w", nil, "Workspace root directories to scan for projects")
	AnalyzeCmd.Flags().StringSliceP("repository", "r", nil, "Repository directories holding dependency contents")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "reading configuration")
		}
	}

	// analyze flags override any serve configuration
	if roots, _ := cmd.Flags().GetStringSlice("workspace"); len(roots) > 0 {
		viper.Set("workspaces", roots)
	}
	if roots, _ := cmd.Flags().GetStringSlice("repository"); len(roots) > 0 {
		viper.Set("repositories", roots)
	}

	ws, err := newWorkspace()
	if err != nil {
		return err
	}

	if _, err := ws.Rebuild(cmd.Context()); err != nil {
		return err
	}

	errorCount := 0
	for path, diags := range ws.Diagnostics() {
		for _, d := range diags {
			printDiagnostic(path, d)
			errorCount++
		}
	}

	if errorCount > 0 {
		fmt.Fprintf(os.Stderr, "\n%d problem(s) found\n", errorCount)
		os.Exit(1)
	}

	fmt.Println("no problems found")
	return nil
}

func printDiagnostic(path abspath.Path, d diagnostics.Diagnostic) {
	fmt.Fprintf(os.Stderr, "%s:%d:%d: [%s] %s\n",
		path,
		d.Range.Start.Line+1,
		d.Range.Start.Character+1,
		d.Kind.Code(),
		d.Kind.Message(),
	)
}
