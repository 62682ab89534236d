package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bethropolis/repoprompt/internal/filter"
)

// newDefaultsCommand creates the 'repoprompt defaults' command
func newDefaultsCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "List the default-deny catalog",
		Long: `List the patterns excluded by default. A default-denied entry can be
brought back with 'repoprompt allow add <pattern>'.

The catalog is replaced by 'defaults' in the config file when set, and
extended by 'extra_defaults'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.setup(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			active := a.Engine().Defaults()

			if slices.Equal(active, filter.DefaultDeny) {
				for _, group := range filter.DefaultGroups() {
					fmt.Fprintf(out, "%s:\n", group.Name)
					fmt.Fprintf(out, "  %s\n", strings.Join(group.Patterns, "  "))
				}
				return nil
			}

			fmt.Fprintln(out, "Configured:")
			for _, p := range active {
				fmt.Fprintf(out, "  %s\n", p)
			}
			return nil
		},
	}
}
