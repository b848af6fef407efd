package app

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress <id> <page>",
		Short: "Record the page you are on",
		Long:  "Sets the current page. Pages outside the book are clamped to its first or last page.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid page %q: %w", args[1], err)
			}
			b, err := lib.UpdateProgress(cmd.Context(), args[0], page)
			if err != nil {
				return err
			}
			if b == nil {
				return fmt.Errorf("book %q not found", args[0])
			}
			ok(cmd.OutOrStdout(), "%s: page %d of %d (%.0f%%)", b.Title, b.CurrentPage, b.TotalPages, b.Progress()*100)
			return nil
		},
	}
}
