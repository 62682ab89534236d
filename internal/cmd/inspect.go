package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bethropolis/repoprompt/internal/filter"
)

// newTreeCommand creates the 'repoprompt tree' command
func newTreeCommand(g *globalOptions) *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "Show the included project structure",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			src.apply(cmd, cfg)
			a, err := g.newApp(cmd, cfg)
			if err != nil {
				return err
			}
			return a.Tree(cmd.Context(), sourceArg(args), src.selection())
		},
	}
	src.register(cmd.Flags(), true)
	return cmd
}

// newStatsCommand creates the 'repoprompt stats' command
func newStatsCommand(g *globalOptions) *cobra.Command {
	var (
		src      sourceFlags
		encoding string
	)

	cmd := &cobra.Command{
		Use:   "stats [path]",
		Short: "Show file counts, size, language and token estimate",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			src.apply(cmd, cfg)
			if cmd.Flags().Changed("encoding") {
				cfg.Encoding = encoding
			}
			a, err := g.newApp(cmd, cfg)
			if err != nil {
				return err
			}
			return a.Stats(cmd.Context(), sourceArg(args), src.selection())
		},
	}
	src.register(cmd.Flags(), true)
	cmd.Flags().StringVar(&encoding, "encoding", "", "Token counter: estimate, or a tiktoken encoding/model")
	return cmd
}

// newToggleCommand creates the 'repoprompt toggle' command
func newToggleCommand(g *globalOptions) *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "toggle <source> <path>",
		Short: "Flip whether a file or directory is included",
		Long: `Flip the inclusion of one node by editing the stored lists. The node path
is relative to the project root; the project name prefix is optional.

An entry under an excluded directory stays excluded: its path is added to
the allow list, but the allow list never overrides an excluded ancestor.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			src.apply(cmd, cfg)
			a, err := g.newApp(cmd, cfg)
			if err != nil {
				return err
			}

			res, err := a.Toggle(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printToggle(cmd, res)
			return nil
		},
	}
	src.register(cmd.Flags(), false)
	return cmd
}

func printToggle(cmd *cobra.Command, res filter.ToggleResult) {
	out := cmd.OutOrStdout()
	state := "excluded"
	if res.Included {
		state = "included"
	}
	fmt.Fprintf(out, "%s is now %s\n", res.RelPath, state)
	if res.RemovedFrom != filter.ListNone {
		fmt.Fprintf(out, "  removed from %s list\n", res.RemovedFrom)
	}
	if res.AddedTo != filter.ListNone {
		fmt.Fprintf(out, "  added to %s list\n", res.AddedTo)
	}
	if !res.WasIncluded && !res.Included {
		fmt.Fprintln(out, "  a parent directory is excluded; toggle it first")
	}
}
