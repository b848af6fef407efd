package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/readshelf/internal/format"
	"github.com/blackwell-systems/readshelf/internal/pdfdoc"
)

// estimateStrategy derives the page count from the file size alone.
func estimateStrategy(f format.Format) Strategy {
	return StrategyFunc(func(ctx context.Context, data []byte, name string) (*FileInfo, error) {
		return estimated(f, name, data), nil
	})
}

type pdfStrategy struct {
	log zerolog.Logger
}

// Process reads the page tree and info dictionary. An unreadable document
// falls back to the size estimate.
func (s *pdfStrategy) Process(ctx context.Context, data []byte, name string) (*FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := pdfdoc.Parse(data)
	if err != nil {
		degraded := fmt.Errorf("%w: %s: %w", ErrParseDegraded, name, err)
		s.log.Warn().Err(degraded).Str("file", name).Msg("pdf parse failed, estimating page count")
		info := estimated(format.PDF, name, data)
		info.Degraded = degraded
		return info, nil
	}

	return &FileInfo{
		Format:     format.PDF,
		Name:       name,
		Size:       int64(len(data)),
		TotalPages: doc.PageCount,
		Title:      doc.Info.Title,
		Author:     doc.Info.Author,
		Metadata: Metadata{
			Subject:          doc.Info.Subject,
			Creator:          doc.Info.Creator,
			Producer:         doc.Info.Producer,
			CreationDate:     doc.Info.CreationDate,
			ModificationDate: doc.Info.ModDate,
		},
	}, nil
}
