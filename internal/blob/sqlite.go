package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/blackwell-systems/readshelf/internal/util"
)

type rawFile struct {
	BookID      string `gorm:"primaryKey"`
	FileName    string
	ContentType string
	SHA256      string
	Size        int64
	Data        []byte
	StoredAt    time.Time
}

func (rawFile) TableName() string { return "raw_files" }

type bookPage struct {
	ID         string `gorm:"primaryKey"`
	BookID     string `gorm:"index"`
	PageNumber int
	Data       []byte
	StoredAt   time.Time
}

func (bookPage) TableName() string { return "book_pages" }

// OpenSQLite opens (creating if needed) the sqlite database at path.
func OpenSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// SQLite stores raw files and pages in two tables of a gorm database.
type SQLite struct {
	db    *gorm.DB
	path  string
	quota int64
	now   func() time.Time
}

// NewSQLite migrates the blob tables in db. path is the database file,
// used only to find the filesystem for free-space reporting.
func NewSQLite(db *gorm.DB, path string, quota int64) (*SQLite, error) {
	if err := db.AutoMigrate(&rawFile{}, &bookPage{}); err != nil {
		return nil, fmt.Errorf("failed to migrate blob tables: %w", err)
	}
	return &SQLite{db: db, path: path, quota: quota, now: time.Now}, nil
}

func (s *SQLite) Put(ctx context.Context, key string, data []byte, name string) error {
	if err := validKey(key); err != nil {
		return err
	}
	f := newFile(key, data, name, util.SHA256Bytes(data), s.now())
	row := rawFile{
		BookID:      key,
		FileName:    f.Name,
		ContentType: f.ContentType,
		SHA256:      f.SHA256,
		Size:        f.Size,
		Data:        data,
		StoredAt:    f.StoredAt,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	if err != nil {
		return storageErr("put raw file", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, key string) (*File, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	var row rawFile
	err := s.db.WithContext(ctx).Where("book_id = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get raw file", err)
	}
	return &File{
		Key:         row.BookID,
		Name:        row.FileName,
		ContentType: row.ContentType,
		SHA256:      row.SHA256,
		Size:        row.Size,
		StoredAt:    row.StoredAt,
		Data:        row.Data,
	}, nil
}

func (s *SQLite) PutPage(ctx context.Context, owner string, page int, data []byte) error {
	if err := validKey(owner); err != nil {
		return err
	}
	if err := validPage(page); err != nil {
		return err
	}
	row := bookPage{
		ID:         pageID(owner, page),
		BookID:     owner,
		PageNumber: page,
		Data:       data,
		StoredAt:   s.now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	if err != nil {
		return storageErr("put page", err)
	}
	return nil
}

func (s *SQLite) GetPage(ctx context.Context, owner string, page int) ([]byte, error) {
	if err := validKey(owner); err != nil {
		return nil, err
	}
	if err := validPage(page); err != nil {
		return nil, err
	}
	var row bookPage
	err := s.db.WithContext(ctx).Where("id = ?", pageID(owner, page)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get page", err)
	}
	return row.Data, nil
}

func (s *SQLite) DeleteAllForOwner(ctx context.Context, owner string) error {
	if err := validKey(owner); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", owner).Delete(&bookPage{}).Error; err != nil {
			return err
		}
		return tx.Where("book_id = ?", owner).Delete(&rawFile{}).Error
	})
	if err != nil {
		return storageErr("delete owner", err)
	}
	return nil
}

func (s *SQLite) Usage(ctx context.Context) (Usage, error) {
	var raw, pages int64
	db := s.db.WithContext(ctx)
	if err := db.Model(&rawFile{}).Select("COALESCE(SUM(size), 0)").Scan(&raw).Error; err != nil {
		return Usage{}, storageErr("measure raw files", err)
	}
	if err := db.Model(&bookPage{}).Select("COALESCE(SUM(LENGTH(data)), 0)").Scan(&pages).Error; err != nil {
		return Usage{}, storageErr("measure pages", err)
	}
	free, ok := diskFree(filepath.Dir(s.path))
	return usageFrom(raw+pages, free, ok, s.quota), nil
}
