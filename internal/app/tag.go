package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTagCmd() *cobra.Command {
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "tag <id> [tag...]",
		Short: "Replace the tags of a book",
		Example: `  readshelf tag 5f1c... sicp lisp
  readshelf tag 5f1c... --clear`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tags := args[1:]
			if len(tags) == 0 && !clearAll {
				return fmt.Errorf("no tags given (use --clear to remove all tags)")
			}
			b, err := lib.SetTags(cmd.Context(), args[0], tags)
			if err != nil {
				return err
			}
			if b == nil {
				return fmt.Errorf("book %q not found", args[0])
			}
			if len(b.Tags) == 0 {
				ok(cmd.OutOrStdout(), "%s: tags cleared", b.Title)
				return nil
			}
			ok(cmd.OutOrStdout(), "%s: %s", b.Title, strings.Join(b.Tags, ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearAll, "clear", false, "Remove all tags")
	return cmd
}
