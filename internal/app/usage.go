package app

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newUsageCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show how much storage the library uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := reporter.Report(cmd.Context())
			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, r)
			}
			books := lib.List()
			var raw int64
			for _, b := range books {
				raw += b.FileSize
			}
			header(out, "Storage (%s)", cfg.Storage.Backend)
			fmt.Fprintf(out, "  %s\n", r)
			printField(out, "books", fmt.Sprintf("%d (%s uploaded)", len(books), humanize.Bytes(uint64(raw))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
