package app

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/readshelf/internal/render"
)

func newReadCmd() *cobra.Command {
	var (
		htmlOut bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "read <id> [page]",
		Short: "Render a page and remember it as the current page",
		Long: `Renders a page of a book. Without a page number the current page is
rendered (page 1 for a book never opened). The rendered page becomes the
book's current page.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			page := 0
			if len(args) == 2 {
				p, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid page %q: %w", args[1], err)
				}
				page = p
			} else if b := lib.Get(id); b != nil {
				page = b.CurrentPage
			}

			content, b, err := lib.Read(cmd.Context(), id, page)
			if err != nil {
				return err
			}
			if b == nil {
				return fmt.Errorf("book %q not found", id)
			}

			out := cmd.OutOrStdout()
			switch {
			case jsonOut:
				return writeJSON(out, content)
			case htmlOut:
				fmt.Fprintln(out, content.HTML)
				return nil
			}
			header(out, "%s  page %d of %d", b.Title, content.PageNumber, b.TotalPages)
			printContent(out, content)
			return nil
		},
	}

	cmd.Flags().BoolVar(&htmlOut, "html", false, "Print the sanitized HTML fragment")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the rendered page as JSON")
	return cmd
}

func printContent(w io.Writer, c *render.Content) {
	switch c.Type {
	case render.TypeError:
		failed(w, "%s", c.Error)
	case render.TypePlaceholder:
		warn(w, "%s pages are not rendered yet", c.Format)
	default:
		if c.Width > 0 {
			printField(w, "preview", fmt.Sprintf("%dx%d", c.Width, c.Height))
		}
		if c.Text != "" {
			fmt.Fprintln(w, color.HiBlackString(c.Text))
		}
	}
}
