package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/readshelf/internal/blob"
	"github.com/blackwell-systems/readshelf/internal/catalog"
	"github.com/blackwell-systems/readshelf/internal/config"
	"github.com/blackwell-systems/readshelf/internal/ingest"
	"github.com/blackwell-systems/readshelf/internal/kvstore"
	"github.com/blackwell-systems/readshelf/internal/render"
	"github.com/blackwell-systems/readshelf/internal/usage"
)

// env is one wired library: the catalog over a blob store and snapshot.
type env struct {
	lib      *catalog.Library
	reporter *usage.Reporter
	close    func() error
}

// openEnv builds the blob store and snapshot the config selects, then
// loads the catalog.
func openEnv(ctx context.Context, c *config.Config, log zerolog.Logger) (*env, error) {
	blobs, snap, closer, err := openStorage(ctx, c)
	if err != nil {
		return nil, err
	}

	processor := ingest.NewProcessor(blobs, ingest.DefaultRegistry(log), log)
	renderer := render.NewRenderer(blobs, render.DefaultRegistry(), log)
	lib := catalog.New(catalog.Options{
		Snapshot:  snap,
		Processor: processor,
		Renderer:  renderer,
		Blobs:     blobs,
		Logger:    log,
	})
	if err := lib.Open(ctx); err != nil {
		return nil, errors.Join(err, closer())
	}

	log.Debug().Str("backend", c.Storage.Backend).Msg("library ready")
	return &env{
		lib:      lib,
		reporter: usage.NewReporter(blobs, log),
		close:    closer,
	}, nil
}

func openStorage(ctx context.Context, c *config.Config) (blob.Store, catalog.Snapshot, func() error, error) {
	noop := func() error { return nil }
	quota := c.Storage.QuotaBytes
	ns := c.Library.Namespace

	switch c.Storage.Backend {
	case config.BackendMemory:
		return blob.NewMemory(quota), catalog.NewMemorySnapshot(), noop, nil

	case config.BackendSQLite:
		path := c.SQLitePath()
		db, err := blob.OpenSQLite(path)
		if err != nil {
			return nil, nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening database: %w", err)
		}
		blobs, err := blob.NewSQLite(db, path, quota)
		if err != nil {
			return nil, nil, nil, errors.Join(err, sqlDB.Close())
		}
		kv, err := kvstore.New(db)
		if err != nil {
			return nil, nil, nil, errors.Join(err, sqlDB.Close())
		}
		return blobs, kvstore.NewSnapshot(kv, ns), sqlDB.Close, nil

	case config.BackendMinIO:
		m := c.Storage.MinIO
		blobs, err := blob.NewMinIO(ctx, blob.MinIOConfig{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			Bucket:    m.Bucket,
			UseSSL:    m.UseSSL,
		}, quota)
		if err != nil {
			return nil, nil, nil, err
		}
		return blobs, catalog.NewFileSnapshot(c.Library.DataDir, ns), noop, nil

	case config.BackendDisk, "":
		return blob.NewDisk(c.BlobDir(), quota), catalog.NewFileSnapshot(c.Library.DataDir, ns), noop, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
}
