package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bethropolis/repoprompt/internal/app"
)

// newBundleCommand creates the 'repoprompt bundle' command
func newBundleCommand(g *globalOptions) *cobra.Command {
	var (
		src         sourceFlags
		format      string
		output      string
		toClipboard bool
		encoding    string
		base64      bool
		watch       bool
		showSkipped bool
		noHistory   bool
	)

	cmd := &cobra.Command{
		Use:   "bundle [path]",
		Short: "Write the filtered project as one document",
		Long: `Load a directory or ZIP archive, apply the default-deny catalog and the
stored deny/allow lists, and write the structure plus every included file.

Examples:
  # Plain text bundle of the current directory on stdout
  repoprompt bundle

  # Markdown bundle of an archive into a file
  repoprompt bundle project.zip -f md -o prompt.md

  # Copy to the clipboard, leaving out tests for this run only
  repoprompt bundle ./svc --clipboard --deny "*_test.go"

  # Rebuild whenever the project or the lists change
  repoprompt bundle ./svc -o prompt.txt --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			src.apply(cmd, cfg)

			fs := cmd.Flags()
			if fs.Changed("format") {
				cfg.Format = format
			}
			if fs.Changed("encoding") {
				cfg.Encoding = encoding
			}
			if base64 {
				cfg.Base64 = true
			}
			cfg.OutputFile = output
			cfg.Clipboard = toClipboard
			cfg.ShowSkipped = showSkipped
			if cfg.OutputFile != "" {
				cfg.DetectColors()
			}

			a, err := g.newApp(cmd, cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if watch {
				var stop context.CancelFunc
				ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()
			}

			return a.Bundle(ctx, app.BundleOptions{
				Path:      sourceArg(args),
				Selection: src.selection(),
				Watch:     watch,
				NoHistory: noHistory,
			})
		},
	}

	src.register(cmd.Flags(), true)
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: plain, markdown, json, html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the bundle to this file")
	cmd.Flags().BoolVarP(&toClipboard, "clipboard", "c", false, "Copy the bundle to the clipboard")
	cmd.Flags().StringVar(&encoding, "encoding", "", "Token counter: estimate, or a tiktoken encoding/model")
	cmd.Flags().BoolVar(&base64, "base64", false, "Base64-encode file contents in JSON output")
	cmd.Flags().BoolVar(&watch, "watch", false, "Rebuild on every change until interrupted")
	cmd.Flags().BoolVar(&showSkipped, "show-skipped", false, "List entries skipped while loading")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this bundle in history")

	return cmd
}
