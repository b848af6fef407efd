package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Remove books and their stored files",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var missing int
			for _, id := range args {
				b, err := lib.Delete(cmd.Context(), id)
				if err != nil {
					return err
				}
				if b == nil {
					missing++
					warn(out, "%s: not found", id)
					continue
				}
				ok(out, "deleted %s (%s)", b.Title, b.ID)
			}
			if missing > 0 {
				return fmt.Errorf("%d of %d books not found", missing, len(args))
			}
			return nil
		},
	}
}
