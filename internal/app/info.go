package app

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/readshelf/internal/catalog"
)

func newInfoCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "info <id>",
		Short: "Show everything recorded about a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := lib.Get(args[0])
			if b == nil {
				return fmt.Errorf("book %q not found", args[0])
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), b)
			}
			printBook(cmd.OutOrStdout(), b)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func printBook(w io.Writer, b *catalog.Book) {
	header(w, "%s", b.Title)
	printField(w, "id", b.ID)
	printField(w, "author", b.Author)
	printField(w, "format", string(b.Format))
	printField(w, "file", b.FileName)
	printField(w, "size", humanize.Bytes(uint64(b.FileSize)))
	printField(w, "status", statusText(b))
	if b.Error != "" {
		printField(w, "error", b.Error)
	}
	pages := fmt.Sprintf("%d", b.TotalPages)
	if b.Metadata.PageCountEstimated {
		pages += " (estimated)"
	}
	printField(w, "pages", pages)
	printField(w, "progress", fmt.Sprintf("page %d (%.0f%%)", b.CurrentPage, b.Progress()*100))
	printField(w, "added", b.DateAdded.Local().Format(time.RFC1123))
	if b.LastRead != nil {
		printField(w, "last read", humanize.Time(*b.LastRead))
	}
	printField(w, "tags", strings.Join(b.Tags, ", "))
	printField(w, "subject", b.Metadata.Subject)
	printField(w, "creator", b.Metadata.Creator)
	printField(w, "producer", b.Metadata.Producer)
	if d := b.Metadata.CreationDate; d != nil {
		printField(w, "created", d.Format("2006-01-02"))
	}
	printField(w, "sha256", b.Metadata.SHA256)
}

func statusText(b *catalog.Book) string {
	if b.Failed() {
		return color.RedString(b.ProcessingStatus)
	}
	return color.GreenString(b.ProcessingStatus)
}

// printField prints one aligned key/value row, skipping empty values.
func printField(w io.Writer, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "  %-10s %s\n", key+":", value)
}
