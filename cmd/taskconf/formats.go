// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newFormatsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the registered config formats and their extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listFormats(app)
		},
	}
}

func listFormats(app *App) error {
	tw := tabwriter.NewWriter(app.Stdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FORMAT\tEXTENSIONS")
	for _, f := range app.Loader.Registry().Formats() {
		fmt.Fprintf(tw, "%s\t%s\n", f.Name, strings.Join(f.Extensions, " "))
	}
	return tw.Flush()
}
