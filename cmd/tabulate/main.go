// Command tabulate exports generated records to documents, reads them back
// and inspects the tables inside XLSX, DOCX and HTML files.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newRootCommand builds the command tree. Output goes to stdout; logs go to
// stderr.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:           "tabulate",
		Short:         "Export records to XLSX, DOCX, PDF and HTML and import them back",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	logger := func() *slog.Logger {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	}

	cmd.AddCommand(newDemoCommand(logger))
	cmd.AddCommand(newFormatsCommand())
	cmd.AddCommand(newInspectCommand())

	return cmd
}
