// Package cmd defines the repoprompt command tree
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bethropolis/repoprompt/internal/app"
	"github.com/bethropolis/repoprompt/internal/config"
)

// globalOptions holds the persistent flags shared by every subcommand
type globalOptions struct {
	configPath  string
	verbose     bool
	quiet       bool
	logLevel    string
	noColor     bool
	statePath   string
	historyPath string
}

// NewRootCommand creates and returns the root cobra command for repoprompt
func NewRootCommand() *cobra.Command {
	g := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "repoprompt",
		Short: "Turn a repository into a single prompt-ready document",
		Long: `RepoPrompt loads a project directory or ZIP archive, filters it through
a default-deny catalog plus your own deny and allow glob lists, and writes
the structure and file contents as one plain, markdown, JSON or HTML bundle.

Deny and allow lists are stored between runs; edit them with the deny,
allow and toggle commands.`,
		Version: config.Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "Config file (default: <user config dir>/repoprompt/config.yaml)")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "Enable verbose debug logging")
	flags.BoolVarP(&g.quiet, "quiet", "q", false, "Suppress informational messages")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	flags.StringVar(&g.statePath, "state", "", "Pattern list state file")
	flags.StringVar(&g.historyPath, "history-db", "", "History database path")

	cmd.AddCommand(newBundleCommand(g))
	cmd.AddCommand(newTreeCommand(g))
	cmd.AddCommand(newStatsCommand(g))
	cmd.AddCommand(newToggleCommand(g))
	cmd.AddCommand(newListCommand(g, listDeny))
	cmd.AddCommand(newListCommand(g, listAllow))
	cmd.AddCommand(newDefaultsCommand(g))
	cmd.AddCommand(newHistoryCommand(g))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// loadConfig reads the config file and applies the persistent flags over it
func (g *globalOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := g.configPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	cfg.Verbose = g.verbose
	cfg.Quiet = g.quiet
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.noColor {
		cfg.NoColor = true
	}
	if g.statePath != "" {
		cfg.StatePath = g.statePath
	}
	if g.historyPath != "" {
		cfg.HistoryPath = g.historyPath
	}
	cfg.DetectColors()
	return cfg, nil
}

// newApp builds an App writing to the command's streams
func (g *globalOptions) newApp(cmd *cobra.Command, cfg *config.Config) (*app.App, error) {
	return app.New(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// setup loads the config and builds the App in one step
func (g *globalOptions) setup(cmd *cobra.Command) (*app.App, error) {
	cfg, err := g.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return g.newApp(cmd, cfg)
}

// confirmAction asks a yes/no question on out and reads the answer from in
func confirmAction(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	response := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return response == "y" || response == "yes"
}

// plural picks the singular or plural form for n
func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
