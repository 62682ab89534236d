package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bethropolis/repoprompt/internal/app"
	"github.com/bethropolis/repoprompt/internal/config"
)

// sourceFlags are the loading and filtering flags shared by the commands
// that read a project
type sourceFlags struct {
	deny        []string
	allow       []string
	maxSizeMB   float64
	workers     int
	sequential  bool
	hidden      bool
	noGitignore bool
	binaryExt   []string
	timeout     time.Duration
	progress    bool
}

func (f *sourceFlags) register(fs *pflag.FlagSet, withLists bool) {
	if withLists {
		fs.StringSliceVarP(&f.deny, "deny", "d", nil, "Extra deny glob for this run (repeatable)")
		fs.StringSliceVarP(&f.allow, "allow", "a", nil, "Extra allow glob for this run (repeatable)")
	}
	fs.Float64Var(&f.maxSizeMB, "max-size", 0, "Files larger than this many MB get a placeholder")
	fs.IntVarP(&f.workers, "workers", "w", 0, "Number of concurrent readers")
	fs.BoolVar(&f.sequential, "sequential", false, "Read files one at a time")
	fs.BoolVar(&f.hidden, "ignore-hidden", false, "Skip entries starting with '.'")
	fs.BoolVar(&f.noGitignore, "no-gitignore", false, "Do not apply .gitignore rules")
	fs.StringSliceVar(&f.binaryExt, "binary-ext", nil, "Extra extensions treated as binary")
	fs.DurationVar(&f.timeout, "timeout", 0, "Abort loading after this long (e.g. 30s)")
	fs.BoolVar(&f.progress, "progress", false, "Show a progress line while reading")
}

// apply copies the flags the user set onto cfg
func (f *sourceFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("max-size") {
		cfg.MaxFileSizeMB = f.maxSizeMB
	}
	if fs.Changed("workers") {
		cfg.MaxWorkers = f.workers
	}
	if f.sequential {
		cfg.Concurrent = false
	}
	if fs.Changed("ignore-hidden") {
		cfg.IgnoreHidden = f.hidden
	}
	if f.noGitignore {
		cfg.UseGitignore = false
	}
	if len(f.binaryExt) > 0 {
		cfg.BinaryExtensions = append(cfg.BinaryExtensions, f.binaryExt...)
	}
	if fs.Changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if f.progress {
		cfg.ShowProgress = true
	}
}

func (f *sourceFlags) selection() app.Selection {
	return app.Selection{Deny: f.deny, Allow: f.allow}
}

// sourceArg returns the project path argument, defaulting to "."
func sourceArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
