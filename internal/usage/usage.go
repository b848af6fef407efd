// Package usage reports how much of the blob store's capacity is used.
package usage

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/readshelf/internal/blob"
)

// Source is anything that can measure its usage.
type Source interface {
	Usage(ctx context.Context) (blob.Usage, error)
}

// Report is a capacity snapshot in bytes. All fields are zero when the
// store could not report.
type Report struct {
	QuotaBytes     int64 `json:"quota"`
	UsedBytes      int64 `json:"usage"`
	AvailableBytes int64 `json:"available"`
}

// Known reports whether the store reported a capacity.
func (r Report) Known() bool { return r.QuotaBytes > 0 }

// PercentUsed returns used/quota as a percentage, 0 when unknown.
func (r Report) PercentUsed() float64 {
	if r.QuotaBytes <= 0 {
		return 0
	}
	return float64(r.UsedBytes) / float64(r.QuotaBytes) * 100
}

// String renders the report for people, e.g. "12 MB of 50 GB used (0.0%), 50 GB free".
func (r Report) String() string {
	if !r.Known() {
		return fmt.Sprintf("%s used, capacity unknown", humanize.Bytes(uint64(max(r.UsedBytes, 0))))
	}
	return fmt.Sprintf("%s of %s used (%.1f%%), %s free",
		humanize.Bytes(uint64(r.UsedBytes)),
		humanize.Bytes(uint64(r.QuotaBytes)),
		r.PercentUsed(),
		humanize.Bytes(uint64(max(r.AvailableBytes, 0))))
}

// Reporter wraps a Source and never fails.
type Reporter struct {
	src Source
	log zerolog.Logger
}

// NewReporter creates a Reporter for src.
func NewReporter(src Source, log zerolog.Logger) *Reporter {
	return &Reporter{src: src, log: log}
}

// Report measures the source. Errors are logged and reported as zeros.
func (r *Reporter) Report(ctx context.Context) Report {
	u, err := r.src.Usage(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("storage usage unavailable")
		return Report{}
	}
	return Report{
		QuotaBytes:     u.QuotaBytes,
		UsedBytes:      u.UsedBytes,
		AvailableBytes: u.AvailableBytes,
	}
}
