package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/blackwell-systems/readshelf/internal/util"
)

// Disk stores blobs on the local filesystem.
//
// Layout:
//
//	<baseDir>/<key>/raw          original bytes
//	<baseDir>/<key>/raw.json     File metadata, written last
//	<baseDir>/<key>/pages/<n>.json
type Disk struct {
	baseDir string
	quota   int64
	now     func() time.Time
}

// NewDisk creates a Disk store rooted at baseDir. A positive quota caps
// the reported capacity; otherwise free filesystem space is used.
func NewDisk(baseDir string, quota int64) *Disk {
	return &Disk{baseDir: baseDir, quota: quota, now: time.Now}
}

// Dir returns the directory holding everything stored for key.
func (d *Disk) Dir(key string) string {
	return filepath.Join(d.baseDir, key)
}

func (d *Disk) rawPath(key string) string  { return filepath.Join(d.Dir(key), "raw") }
func (d *Disk) metaPath(key string) string { return filepath.Join(d.Dir(key), "raw.json") }

func (d *Disk) pagePath(owner string, page int) string {
	return filepath.Join(d.Dir(owner), "pages", strconv.Itoa(page)+".json")
}

// Put writes data for key, replacing any previous record.
func (d *Disk) Put(ctx context.Context, key string, data []byte, name string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.Dir(key), 0750); err != nil {
		return storageErr("create blob dir", err)
	}

	sum := util.SHA256Bytes(data)
	if err := util.WriteAtomic(d.rawPath(key), bytes.NewReader(data), sum); err != nil {
		return storageErr("write raw file", err)
	}

	meta, err := json.Marshal(newFile(key, data, name, sum, d.now()))
	if err != nil {
		return storageErr("encode metadata", err)
	}
	if err := util.WriteAtomic(d.metaPath(key), bytes.NewReader(meta), ""); err != nil {
		return storageErr("write metadata", err)
	}
	return nil
}

// Get reads the record for key.
func (d *Disk) Get(ctx context.Context, key string) (*File, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	meta, err := os.ReadFile(d.metaPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, storageErr("read metadata", err)
	}
	var f File
	if err := json.Unmarshal(meta, &f); err != nil {
		return nil, storageErr("decode metadata", err)
	}
	data, err := os.ReadFile(d.rawPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, storageErr("read raw file", err)
	}
	if f.SHA256 != "" {
		if got := util.SHA256Bytes(data); got != f.SHA256 {
			return nil, storageErr("verify raw file", fmt.Errorf("checksum mismatch: expected %s, got %s", f.SHA256, got))
		}
	}
	f.Data = data
	return &f, nil
}

// PutPage stores derived content for one page.
func (d *Disk) PutPage(ctx context.Context, owner string, page int, data []byte) error {
	if err := validKey(owner); err != nil {
		return err
	}
	if err := validPage(page); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path := d.pagePath(owner, page)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return storageErr("create page dir", err)
	}
	if err := util.WriteAtomic(path, bytes.NewReader(data), ""); err != nil {
		return storageErr("write page", err)
	}
	return nil
}

// GetPage reads derived content for one page.
func (d *Disk) GetPage(ctx context.Context, owner string, page int) ([]byte, error) {
	if err := validKey(owner); err != nil {
		return nil, err
	}
	if err := validPage(page); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(d.pagePath(owner, page))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, storageErr("read page", err)
	}
	return data, nil
}

// DeleteAllForOwner removes the raw file and every derived page of owner.
func (d *Disk) DeleteAllForOwner(ctx context.Context, owner string) error {
	if err := validKey(owner); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.RemoveAll(d.Dir(owner)); err != nil {
		return storageErr("remove blob dir", err)
	}
	return nil
}

// Usage sums the bytes under baseDir and pairs them with the free space of
// the filesystem.
func (d *Disk) Usage(ctx context.Context) (Usage, error) {
	var used int64
	err := filepath.WalkDir(d.baseDir, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.Type().IsRegular() {
			info, err := e.Info()
			if err != nil {
				return err
			}
			used += info.Size()
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return usageFrom(0, 0, false, d.quota), nil
		}
		return Usage{}, storageErr("measure usage", err)
	}
	free, ok := diskFree(d.baseDir)
	return usageFrom(used, free, ok, d.quota), nil
}
