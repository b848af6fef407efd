package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/readshelf/internal/catalog"
	"github.com/blackwell-systems/readshelf/internal/format"
)

func newListCmd() *cobra.Command {
	var (
		f          catalog.Filter
		formatName string
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List books in the library",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if formatName != "" {
				ff, err := format.Parse(formatName)
				if err != nil {
					return err
				}
				f.Format = ff
			}
			books := lib.Filter(f)
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), books)
			}
			printBooks(cmd.OutOrStdout(), books)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.Tag, "tag", "", "Only books with this tag")
	cmd.Flags().StringVar(&formatName, "format", "", "Only books of this format ("+format.Supported()+")")
	cmd.Flags().StringVar(&f.Status, "status", "", "Only books with this processing status (completed, failed)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func printBooks(w io.Writer, books []catalog.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books found.")
		return
	}
	for _, b := range books {
		fmt.Fprintln(w, bookLine(b))
	}
	fmt.Fprintf(w, "\n%d book(s)\n", len(books))
}

func bookLine(b catalog.Book) string {
	var sb strings.Builder
	sb.WriteString(color.CyanString("%-36s", b.ID))
	sb.WriteString("  ")
	sb.WriteString(b.Title)
	if b.Author != "" {
		sb.WriteString(color.HiBlackString(" by %s", b.Author))
	}
	sb.WriteString(fmt.Sprintf("  [%s]", b.Format))
	if b.Failed() {
		sb.WriteString("  " + color.RedString("failed"))
	} else {
		sb.WriteString(fmt.Sprintf("  %d/%d", b.CurrentPage, b.TotalPages))
	}
	if len(b.Tags) > 0 {
		sb.WriteString(color.HiBlackString("  #%s", strings.Join(b.Tags, " #")))
	}
	return sb.String()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
