package app

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/readshelf/internal/catalog"
	"github.com/blackwell-systems/readshelf/internal/ingest"
)

func newAddCmd() *cobra.Command {
	var tags string

	cmd := &cobra.Command{
		Use:   "add <file|url>...",
		Short: "Add books to the library",
		Long: `Add one or more PDF, EPUB, CBZ or CBR files. Each input is either a local
path or an http(s) URL. Files are processed one after another; a file that
fails is recorded as failed and the rest continue.`,
		Example: `  readshelf add ~/Downloads/sicp.pdf
  readshelf add a.pdf b.epub https://example.com/c.cbz --tags fiction`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			srcs := make([]*ingest.Source, 0, len(args))
			for _, input := range args {
				src, err := ingest.Resolve(input)
				if err != nil {
					failed(out, "%s: %v", input, err)
					continue
				}
				srcs = append(srcs, src)
			}

			tagList := splitTags(tags)
			var nFailed int
			statuses := lib.AddSources(ctx, srcs, func(st catalog.Status) {
				prefix := fmt.Sprintf("[%d/%d]", st.Index+1, st.Total)
				if st.Book == nil {
					nFailed++
					failed(out, "%s %s: %v", prefix, st.Name, st.Err)
					return
				}
				if len(tagList) > 0 {
					if b, err := lib.SetTags(ctx, st.Book.ID, tagList); err != nil {
						warn(out, "%s %s: tagging failed: %v", prefix, st.Name, err)
					} else if b != nil {
						st.Book = b
					}
				}
				if st.Err != nil {
					nFailed++
					failed(out, "%s %s (%s): %v", prefix, st.Name, st.Book.ID, st.Err)
					return
				}
				ok(out, "%s %s  %s  %d pages  %s", prefix, st.Book.ID, st.Book.Title,
					st.Book.TotalPages, humanize.Bytes(uint64(st.Book.FileSize)))
			})

			nFailed += len(args) - len(srcs)
			if len(statuses) < len(srcs) {
				warn(out, "stopped after %d of %d files", len(statuses), len(srcs))
			}
			if nFailed > 0 {
				return fmt.Errorf("%d of %d files failed", nFailed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags for every added book")
	return cmd
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
