package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bethropolis/repoprompt/internal/glob"
	"github.com/bethropolis/repoprompt/internal/patterns"
)

type listKind string

const (
	listDeny  listKind = "deny"
	listAllow listKind = "allow"
)

// pick returns the list of this kind
func (k listKind) pick(lists *patterns.Lists) *patterns.List {
	if k == listAllow {
		return lists.Allow
	}
	return lists.Deny
}

// add goes through Lists so the pattern leaves the opposite list
func (k listKind) add(lists *patterns.Lists, p string) bool {
	if k == listAllow {
		return lists.AddAllow(p)
	}
	return lists.AddDeny(p)
}

// newListCommand creates 'repoprompt deny' or 'repoprompt allow'
func newListCommand(g *globalOptions, kind listKind) *cobra.Command {
	short := "Manage the stored deny list"
	if kind == listAllow {
		short = "Manage the stored allow list"
	}

	cmd := &cobra.Command{
		Use:   string(kind),
		Short: short,
		Long: fmt.Sprintf(`%s

Patterns are globs matched against paths relative to the project root:
  *.log          bare name, matches the last path segment anywhere
  src/*.go       path glob, '*' stays within one segment
  docs/**        '**' spans segments

Adding a pattern to one list removes it from the other.`, short),
	}

	cmd.AddCommand(newListAddCommand(g, kind))
	cmd.AddCommand(newListRemoveCommand(g, kind))
	cmd.AddCommand(newListShowCommand(g, kind))
	cmd.AddCommand(newListClearCommand(g, kind))
	return cmd
}

func newListAddCommand(g *globalOptions, kind listKind) *cobra.Command {
	return &cobra.Command{
		Use:   "add <pattern>...",
		Short: fmt.Sprintf("Add patterns to the %s list", kind),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.setup(cmd)
			if err != nil {
				return err
			}
			store, err := a.State()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, err = store.Update(func(lists *patterns.Lists) error {
				for _, p := range args {
					if !glob.Lint(p) {
						a.Logger().Warn("Pattern %q is not clean glob syntax; brackets and braces match literally", p)
					}
					if kind.add(lists, p) {
						fmt.Fprintf(out, "Added %q to %s list\n", p, kind)
					} else {
						fmt.Fprintf(out, "%q is already in the %s list\n", p, kind)
					}
				}
				return nil
			})
			return err
		},
	}
}

func newListRemoveCommand(g *globalOptions, kind listKind) *cobra.Command {
	var indexes []int

	cmd := &cobra.Command{
		Use:     "rm [pattern]...",
		Aliases: []string{"remove"},
		Short:   fmt.Sprintf("Remove patterns from the %s list", kind),
		Long: fmt.Sprintf(`Remove patterns from the %s list by value, or by the 1-based
position shown by 'repoprompt %s list' with --index.`, kind, kind),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && len(indexes) == 0 {
				return fmt.Errorf("requires a pattern argument or --index")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.setup(cmd)
			if err != nil {
				return err
			}
			store, err := a.State()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, err = store.Update(func(lists *patterns.Lists) error {
				list := kind.pick(lists)

				// highest index first so earlier removals do not shift later ones
				sorted := append([]int(nil), indexes...)
				sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
				for _, i := range sorted {
					p, ok := list.RemoveAt(i - 1)
					if !ok {
						return fmt.Errorf("no %s pattern at position %d", kind, i)
					}
					fmt.Fprintf(out, "Removed %q from %s list\n", p, kind)
				}

				for _, p := range args {
					if list.Remove(p) {
						fmt.Fprintf(out, "Removed %q from %s list\n", p, kind)
					} else {
						fmt.Fprintf(out, "%q is not in the %s list\n", p, kind)
					}
				}
				return nil
			})
			return err
		},
	}
	cmd.Flags().IntSliceVar(&indexes, "index", nil, "1-based position to remove (repeatable)")
	return cmd
}

func newListShowCommand(g *globalOptions, kind listKind) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   fmt.Sprintf("Show the %s list", kind),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.setup(cmd)
			if err != nil {
				return err
			}
			store, err := a.State()
			if err != nil {
				return err
			}
			lists, err := store.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			items := kind.pick(lists).Items()
			if len(items) == 0 {
				fmt.Fprintf(out, "The %s list is empty.\n", kind)
				return nil
			}
			for i, p := range items {
				fmt.Fprintf(out, "%3d  %s\n", i+1, p)
			}
			return nil
		},
	}
}

func newListClearCommand(g *globalOptions, kind listKind) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: fmt.Sprintf("Remove every pattern from the %s list", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !force && !confirmAction(cmd.InOrStdin(), out, fmt.Sprintf("Clear the %s list?", kind)) {
				fmt.Fprintln(out, "Operation cancelled.")
				return nil
			}

			a, err := g.setup(cmd)
			if err != nil {
				return err
			}
			store, err := a.State()
			if err != nil {
				return err
			}

			var removed int
			_, err = store.Update(func(lists *patterns.Lists) error {
				list := kind.pick(lists)
				removed = list.Len()
				list.Clear()
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed %d %s.\n", removed, plural(int64(removed), "pattern", "patterns"))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
