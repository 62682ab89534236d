package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bethropolis/repoprompt/internal/config"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "repoprompt version %s\n", config.Version)
		},
	}
}
