package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bethropolis/repoprompt/internal/history"
)

// newHistoryCommand creates the 'repoprompt history' command group
func newHistoryCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show and manage previously bundled projects",
	}
	cmd.AddCommand(newHistoryListCommand(g))
	cmd.AddCommand(newHistoryShowCommand(g))
	cmd.AddCommand(newHistoryRemoveCommand(g))
	cmd.AddCommand(newHistoryClearCommand(g))
	return cmd
}

// openHistory opens the configured history database
func (g *globalOptions) openHistory(cmd *cobra.Command) (*history.Store, error) {
	a, err := g.setup(cmd)
	if err != nil {
		return nil, err
	}
	store, err := a.History()
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

func newHistoryListCommand(g *globalOptions) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List bundled projects, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := g.openHistory(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if entries == nil {
					entries = []*history.Entry{}
				}
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal history: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			if len(entries) == 0 {
				fmt.Fprintln(out, "No history yet.")
				return nil
			}

			now := time.Now()
			fmt.Fprintf(out, "%-8s  %-24s  %-10s  %9s  %9s  %8s  %s\n",
				"ID", "NAME", "LANGUAGE", "FILES", "TOKENS", "SIZE", "WHEN")
			for _, e := range entries {
				fmt.Fprintf(out, "%-8s  %-24s  %-10s  %9s  %9d  %8s  %s\n",
					shortID(e.ID), truncate(e.Name, 24), e.Language,
					fmt.Sprintf("%d/%d", e.AllowedCount, e.FilesCount), e.TokensCount,
					history.FormatSize(e.Size), history.FormatRelative(e.CreatedAt, now))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}

func newHistoryShowCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one history entry; a unique id prefix is enough",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := g.openHistory(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			e, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, history.Header(e))
			fmt.Fprintf(out, "# ID: %s\n", e.ID)
			fmt.Fprintf(out, "# Source: %s\n", e.Source)
			fmt.Fprintf(out, "# Language: %s\n", e.Language)
			fmt.Fprintf(out, "# Included: %d\n", e.AllowedCount)
			fmt.Fprintf(out, "# Size: %s\n", history.FormatSize(e.Size))
			fmt.Fprintf(out, "# Format: %s\n", e.Format)
			fmt.Fprintf(out, "# Created: %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func newHistoryRemoveCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete one history entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := g.openHistory(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			e, err := store.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s).\n", e.Name, shortID(e.ID))
			return nil
		},
	}
}

func newHistoryClearCommand(g *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every history entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !force {
				fmt.Fprintln(out, "WARNING: This will delete ALL history entries.")
				if !confirmAction(cmd.InOrStdin(), out, "Continue?") {
					fmt.Fprintln(out, "Operation cancelled.")
					return nil
				}
			}

			store, err := g.openHistory(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted %d %s.\n", n, plural(n, "entry", "entries"))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
