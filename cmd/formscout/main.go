// Command formscout detects the input fields of Excel form templates.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	verbose    bool
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "formscout",
		Short: "Detect and validate the input cells of Excel forms",
		Long: `formscout finds the fillable input cells of spreadsheet forms. It renders
the workbook, asks a vision model to propose the input fields, highlights
them, has the model review the overlay, and corrects the proposal until the
review passes or the iteration budget runs out.`,
		SilenceUsage: true,
	}

	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default config.toml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at debug level")

	root.AddCommand(
		newDetectCmd(opts),
		newExtractCmd(),
		newHighlightCmd(opts),
	)

	return root
}

func (o *options) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
