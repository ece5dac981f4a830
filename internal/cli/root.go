// Package cli implements the framecast command-line interface: rendering
// manifest-declared compositions to video, listing and validating them, and
// probing the host's encoder support.
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// attached to the command context.
package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var version = "dev"

// SetVersion sets the string shown by --version, injected via ldflags.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// rootOpts are the persistent flags shared by every subcommand.
type rootOpts struct {
	manifest string
	config   string
}

// ExecuteContext runs the framecast CLI until the context is cancelled.
func ExecuteContext(ctx context.Context) error {
	var verbose bool
	opts := &rootOpts{}

	root := &cobra.Command{
		Use:          "framecast",
		Short:        "Framecast renders programmatically defined video",
		Long:         "Framecast resolves declarative frame timelines into pixels and encodes them to video, rendering frames in parallel and streaming them to ffmpeg in order.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.manifest, "manifest", "m", "framecast.yaml", "project manifest file")
	root.PersistentFlags().StringVarP(&opts.config, "config", "c", "", "tool config file (TOML)")

	root.AddCommand(newRenderCmd(opts))
	root.AddCommand(newListCmd(opts))
	root.AddCommand(newValidateCmd(opts))
	root.AddCommand(newProbeCmd())

	return root.ExecuteContext(ctx)
}
