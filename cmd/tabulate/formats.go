package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tsawler/tabulate/format"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported document formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FORMAT\tEXTENSION\tMIME TYPE\tIMPORT")
			for _, f := range format.All {
				imp := "no"
				if f.Importable() {
					imp = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f, f.Extension(), f.MIMEType(), imp)
			}
			return tw.Flush()
		},
	}
}
