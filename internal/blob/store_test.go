package blob_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/blackwell-systems/readshelf/internal/blob"
)

// exerciseStore runs the behaviour every backend shares.
func exerciseStore(t *testing.T, s blob.Store) {
	t.Helper()
	ctx := context.Background()

	// absent records
	f, err := s.Get(ctx, "missing")
	if err != nil || f != nil {
		t.Fatalf("Get(missing) = %v, %v; want nil, nil", f, err)
	}
	p, err := s.GetPage(ctx, "missing", 1)
	if err != nil || p != nil {
		t.Fatalf("GetPage(missing) = %v, %v; want nil, nil", p, err)
	}

	data := []byte("%PDF-1.4 body bytes")
	if err := s.Put(ctx, "book-1", data, "book.pdf"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	f, err = s.Get(ctx, "book-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if f == nil {
		t.Fatal("Get returned nil after Put")
	}
	if !bytes.Equal(f.Data, data) {
		t.Errorf("Data = %q, want %q", f.Data, data)
	}
	if f.Name != "book.pdf" {
		t.Errorf("Name = %q, want book.pdf", f.Name)
	}
	if f.Size != int64(len(data)) {
		t.Errorf("Size = %d, want %d", f.Size, len(data))
	}
	if f.ContentType != "application/pdf" {
		t.Errorf("ContentType = %q, want application/pdf", f.ContentType)
	}

	// overwrite replaces
	if err := s.Put(ctx, "book-1", []byte("v2"), "book.pdf"); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	f, _ = s.Get(ctx, "book-1")
	if f == nil || string(f.Data) != "v2" {
		t.Errorf("after overwrite Data = %v, want v2", f)
	}

	for n := 1; n <= 3; n++ {
		if err := s.PutPage(ctx, "book-1", n, []byte{byte('0' + n)}); err != nil {
			t.Fatalf("PutPage(%d): %v", n, err)
		}
	}
	if err := s.PutPage(ctx, "book-2", 1, []byte("other")); err != nil {
		t.Fatalf("PutPage other owner: %v", err)
	}
	p, err = s.GetPage(ctx, "book-1", 2)
	if err != nil || string(p) != "2" {
		t.Errorf("GetPage(2) = %q, %v; want \"2\"", p, err)
	}

	if err := s.DeleteAllForOwner(ctx, "book-1"); err != nil {
		t.Fatalf("DeleteAllForOwner: %v", err)
	}
	if f, _ := s.Get(ctx, "book-1"); f != nil {
		t.Error("raw file still present after DeleteAllForOwner")
	}
	for n := 1; n <= 3; n++ {
		if p, _ := s.GetPage(ctx, "book-1", n); p != nil {
			t.Errorf("page %d still present after DeleteAllForOwner", n)
		}
	}
	if p, _ := s.GetPage(ctx, "book-2", 1); string(p) != "other" {
		t.Error("DeleteAllForOwner removed another owner's page")
	}

	// idempotent
	if err := s.DeleteAllForOwner(ctx, "book-1"); err != nil {
		t.Errorf("second DeleteAllForOwner: %v", err)
	}

	if err := s.Put(ctx, "../escape", data, "x.pdf"); !errors.Is(err, blob.ErrInvalidKey) {
		t.Errorf("Put(../escape) err = %v, want ErrInvalidKey", err)
	}
	if err := s.PutPage(ctx, "book-2", 0, data); !errors.Is(err, blob.ErrInvalidKey) {
		t.Errorf("PutPage(0) err = %v, want ErrInvalidKey", err)
	}
}

func TestMemory_Store(t *testing.T) {
	exerciseStore(t, blob.NewMemory(0))
}

func TestDisk_Store(t *testing.T) {
	exerciseStore(t, blob.NewDisk(t.TempDir(), 0))
}

func TestMemory_CopiesData(t *testing.T) {
	ctx := context.Background()
	m := blob.NewMemory(0)
	data := []byte("abc")
	if err := m.Put(ctx, "k", data, "a.pdf"); err != nil {
		t.Fatal(err)
	}
	data[0] = 'z'
	f, _ := m.Get(ctx, "k")
	if string(f.Data) != "abc" {
		t.Errorf("stored data mutated through caller slice: %q", f.Data)
	}
	f.Data[1] = 'z'
	f2, _ := m.Get(ctx, "k")
	if string(f2.Data) != "abc" {
		t.Errorf("stored data mutated through returned slice: %q", f2.Data)
	}
}

func TestMemory_UsageWithQuota(t *testing.T) {
	ctx := context.Background()
	m := blob.NewMemory(100)
	_ = m.Put(ctx, "k", make([]byte, 30), "a.pdf")
	_ = m.PutPage(ctx, "k", 1, make([]byte, 10))

	u, err := m.Usage(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if u.QuotaBytes != 100 || u.UsedBytes != 40 || u.AvailableBytes != 60 {
		t.Errorf("Usage = %+v, want {100 40 60}", u)
	}
}

func TestMemory_UsageWithoutQuota(t *testing.T) {
	u, err := blob.NewMemory(0).Usage(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if u != (blob.Usage{}) {
		t.Errorf("Usage = %+v, want zeros", u)
	}
}

func TestDisk_Layout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	d := blob.NewDisk(dir, 0)

	if err := d.Put(ctx, "abc", []byte("raw"), "a.epub"); err != nil {
		t.Fatal(err)
	}
	if err := d.PutPage(ctx, "abc", 7, []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	for _, rel := range []string{"abc/raw", "abc/raw.json", "abc/pages/7.json"} {
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			t.Errorf("expected %s: %v", rel, err)
		}
	}
}

func TestDisk_GetWithoutMetadataIsAbsent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	d := blob.NewDisk(dir, 0)

	// a raw file without raw.json is an interrupted write
	if err := os.MkdirAll(filepath.Join(dir, "half"), 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "half", "raw"), []byte("x"), 0640); err != nil {
		t.Fatal(err)
	}
	f, err := d.Get(ctx, "half")
	if err != nil || f != nil {
		t.Errorf("Get(half) = %v, %v; want nil, nil", f, err)
	}
}

func TestDisk_GetDetectsCorruption(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	d := blob.NewDisk(dir, 0)
	if err := d.Put(ctx, "c", []byte("original"), "c.pdf"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "c", "raw"), []byte("tampered"), 0640); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Get(ctx, "c"); !errors.Is(err, blob.ErrStorage) {
		t.Errorf("Get(tampered) err = %v, want ErrStorage", err)
	}
}

func TestDisk_UsageWithQuota(t *testing.T) {
	ctx := context.Background()
	d := blob.NewDisk(t.TempDir(), 1<<20)
	if err := d.Put(ctx, "k", make([]byte, 1000), "k.pdf"); err != nil {
		t.Fatal(err)
	}
	u, err := d.Usage(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if u.QuotaBytes != 1<<20 {
		t.Errorf("QuotaBytes = %d, want %d", u.QuotaBytes, 1<<20)
	}
	// raw bytes plus the metadata sidecar
	if u.UsedBytes <= 1000 {
		t.Errorf("UsedBytes = %d, want > 1000", u.UsedBytes)
	}
	if u.AvailableBytes != u.QuotaBytes-u.UsedBytes {
		t.Errorf("AvailableBytes = %d, want %d", u.AvailableBytes, u.QuotaBytes-u.UsedBytes)
	}
}

func TestDisk_UsageMissingDir(t *testing.T) {
	d := blob.NewDisk(filepath.Join(t.TempDir(), "never-created"), 0)
	u, err := d.Usage(context.Background())
	if err != nil {
		t.Fatalf("Usage on missing dir: %v", err)
	}
	if u.UsedBytes != 0 {
		t.Errorf("UsedBytes = %d, want 0", u.UsedBytes)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := blob.NewMemory(0).Put(ctx, "k", []byte("x"), "k.pdf"); !errors.Is(err, context.Canceled) {
		t.Errorf("Put with canceled ctx err = %v, want context.Canceled", err)
	}
}
