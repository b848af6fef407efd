package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/blackwell-systems/readshelf/internal/util"
)

// MinIOConfig addresses an S3-compatible bucket.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinIO stores blobs as objects in a bucket.
//
//	raw/<key>                 original bytes, user metadata carries name and sha256
//	pages/<key>/<n>.json      derived page content
type MinIO struct {
	client *minio.Client
	bucket string
	quota  int64
}

// NewMinIO connects to the bucket, creating it when missing.
func NewMinIO(ctx context.Context, cfg MinIOConfig, quota int64) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIO{client: client, bucket: cfg.Bucket, quota: quota}, nil
}

func rawObject(key string) string { return "raw/" + key }

func pagePrefix(owner string) string { return "pages/" + owner + "/" }

func pageObject(owner string, page int) string {
	return pagePrefix(owner) + strconv.Itoa(page) + ".json"
}

func (s *MinIO) Put(ctx context.Context, key string, data []byte, name string) error {
	if err := validKey(key); err != nil {
		return err
	}
	f := newFile(key, data, name, util.SHA256Bytes(data), time.Now())
	_, err := s.client.PutObject(ctx, s.bucket, rawObject(key), bytes.NewReader(data), f.Size,
		minio.PutObjectOptions{
			ContentType: f.ContentType,
			UserMetadata: map[string]string{
				"filename": name,
				"sha256":   f.SHA256,
			},
		})
	if err != nil {
		return storageErr("upload raw file", err)
	}
	return nil
}

func (s *MinIO) Get(ctx context.Context, key string) (*File, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	data, info, err := s.read(ctx, rawObject(key))
	if err != nil || data == nil {
		return nil, err
	}
	return &File{
		Key:         key,
		Name:        info.UserMetadata["Filename"],
		ContentType: info.ContentType,
		SHA256:      info.UserMetadata["Sha256"],
		Size:        info.Size,
		StoredAt:    info.LastModified.UTC(),
		Data:        data,
	}, nil
}

func (s *MinIO) PutPage(ctx context.Context, owner string, page int, data []byte) error {
	if err := validKey(owner); err != nil {
		return err
	}
	if err := validPage(page); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, pageObject(owner, page), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return storageErr("upload page", err)
	}
	return nil
}

func (s *MinIO) GetPage(ctx context.Context, owner string, page int) ([]byte, error) {
	if err := validKey(owner); err != nil {
		return nil, err
	}
	if err := validPage(page); err != nil {
		return nil, err
	}
	data, _, err := s.read(ctx, pageObject(owner, page))
	return data, err
}

// read returns nil data and a nil error when the object does not exist.
func (s *MinIO) read(ctx context.Context, object string) ([]byte, *minio.ObjectInfo, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, storageErr("get object", err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		if isNoSuchKey(err) {
			return nil, nil, nil
		}
		return nil, nil, storageErr("stat object", err)
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, nil, storageErr("read object", err)
	}
	return data, &info, nil
}

func (s *MinIO) DeleteAllForOwner(ctx context.Context, owner string) error {
	if err := validKey(owner); err != nil {
		return err
	}
	lctx, cancel := context.WithCancel(ctx)
	defer cancel()
	pages := s.client.ListObjectsIter(lctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    pagePrefix(owner),
		Recursive: true,
	})
	for object := range pages {
		if object.Err != nil {
			return storageErr("list pages", object.Err)
		}
		if err := s.client.RemoveObject(ctx, s.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return storageErr("delete page "+object.Key, err)
		}
	}
	err := s.client.RemoveObject(ctx, s.bucket, rawObject(owner), minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return storageErr("delete raw file", err)
	}
	return nil
}

// Usage sums object sizes in the bucket. Object stores report no free
// space, so capacity is known only with a quota.
func (s *MinIO) Usage(ctx context.Context) (Usage, error) {
	lctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var used int64
	for object := range s.client.ListObjectsIter(lctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return Usage{}, storageErr("list objects", object.Err)
		}
		used += object.Size
	}
	return usageFrom(used, 0, false, s.quota), nil
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || strings.EqualFold(code, "NotFound")
}
