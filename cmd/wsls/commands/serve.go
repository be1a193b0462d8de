package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/errors"
	"github.com/teranos/witcherscript-ls/logger"
	"github.com/teranos/witcherscript-ls/lsp"
	"github.com/teranos/witcherscript-ls/parser"
	"github.com/teranos/witcherscript-ls/workspace"
)

// ServeCmd starts the language server on stdio.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the language server on stdio",
	Long: `Start the WitcherScript language server, speaking LSP over stdio.

Workspace roots come from --workspace flags, the WSLS_WORKSPACES
environment variable or the configuration file; the client's workspace
folders are not used. Repository roots (game contents, shared mod
libraries) come from --repository flags, the WSLS_REPOSITORIES environment
variable or the configuration file.`,
	RunE: runServe,
}

func init() {
	ServeCmd.Flags().StringSliceP("workspace", "w", nil, "Workspace root directories to scan for projects")
	ServeCmd.Flags().StringSliceP("repository", "r", nil, "Repository directories holding dependency contents")
	ServeCmd.Flags().Bool("debug", false, "Enable LSP protocol debug logging")

	_ = viper.BindPFlag("workspaces", ServeCmd.Flags().Lookup("workspace"))
	_ = viper.BindPFlag("repositories", ServeCmd.Flags().Lookup("repository"))
	viper.SetEnvPrefix("wsls")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("wsls")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/wsls")
}

// newWorkspace builds the workspace with the registered parser and the
// configured roots.
func newWorkspace() (*workspace.Workspace, error) {
	parse, ok := parser.Registered()
	if !ok {
		return nil, errors.WithHint(
			errors.New("no script parser registered in this build"),
			"link a parser implementation into the binary",
		)
	}

	ws := workspace.New(logger.Named("workspace"), func(path abspath.Path, text string) (*workspace.ParsedScript, error) {
		script, doc, err := parse(path, text)
		if err != nil {
			return nil, err
		}
		return &workspace.ParsedScript{Script: script, Doc: doc}, nil
	})

	workspaceRoots, err := resolveAll(viper.GetStringSlice("workspaces"))
	if err != nil {
		return nil, err
	}
	repositoryRoots, err := resolveAll(viper.GetStringSlice("repositories"))
	if err != nil {
		return nil, err
	}
	ws.SetRoots(workspaceRoots, repositoryRoots)

	return ws, nil
}

func resolveAll(raw []string) ([]abspath.Path, error) {
	out := make([]abspath.Path, 0, len(raw))
	for _, r := range raw {
		p, err := abspath.Resolve(r, abspath.Path{})
		if err != nil {
			return nil, errors.Wrapf(err, "resolving root %q", r)
		}
		out = append(out, p)
	}
	return out, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "reading configuration")
		}
	}

	ws, err := newWorkspace()
	if err != nil {
		return err
	}

	watcher, err := workspace.NewWatcher(ws, logger.Named("workspace.watcher"))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	debug, _ := cmd.Flags().GetBool("debug")
	return lsp.Serve(ws, logger.Named("lsp"), version, debug)
}
