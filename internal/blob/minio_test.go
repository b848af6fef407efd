package blob_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/blackwell-systems/readshelf/internal/blob"
)

// fakeS3 answers the handful of bucket requests the MinIO store makes.
// Listings are served from pages keyed by continuation token.
type fakeS3 struct {
	mu        sync.Mutex
	pages     map[string]string
	listed    []string
	deleted   []string
	denyWrite bool
}

const listPage = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
<Name>readshelf</Name><MaxKeys>1000</MaxKeys>%s%s</ListBucketResult>`

func object(key string, size int) string {
	return fmt.Sprintf(`<Contents><Key>%s</Key><Size>%d</Size>`+
		`<LastModified>2026-05-01T09:00:00.000Z</LastModified><ETag>"e"</ETag></Contents>`, key, size)
}

func page(next string, objects ...string) string {
	trunc := "<IsTruncated>false</IsTruncated>"
	if next != "" {
		trunc = "<IsTruncated>true</IsTruncated><NextContinuationToken>" + next + "</NextContinuationToken>"
	}
	return fmt.Sprintf(listPage, trunc, strings.Join(objects, ""))
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := r.URL.Query()
	switch {
	case q.Has("location"):
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, `<LocationConstraint xmlns="http://s3.amazonaws.com/doc/2006-03-01/">us-east-1</LocationConstraint>`)
	case r.Method == http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet && q.Get("list-type") == "2":
		token := q.Get("continuation-token")
		f.listed = append(f.listed, token)
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, f.pages[token])
	case r.Method == http.MethodDelete:
		if f.denyWrite {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `<Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
			return
		}
		f.deleted = append(f.deleted, strings.TrimPrefix(r.URL.Path, "/readshelf/"))
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func newFakeMinIO(t *testing.T, f *fakeS3, quota int64) *blob.MinIO {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	s, err := blob.NewMinIO(context.Background(), blob.MinIOConfig{
		Endpoint:  srv.Listener.Addr().String(),
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "readshelf",
	}, quota)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestMinIO_UsageFollowsContinuation(t *testing.T) {
	f := &fakeS3{pages: map[string]string{
		"":   page("p2", object("raw/a", 10), object("pages/a/1.json", 20)),
		"p2": page("", object("raw/b", 5)),
	}}
	s := newFakeMinIO(t, f, 100)

	u, err := s.Usage(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if u.UsedBytes != 35 || u.AvailableBytes != 65 {
		t.Errorf("Usage = %+v, want 35 used of 100", u)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.listed) != 2 {
		t.Errorf("listing requests = %q, want 2", f.listed)
	}
}

func TestMinIO_DeleteAllForOwner(t *testing.T) {
	f := &fakeS3{pages: map[string]string{
		"": page("", object("pages/a/1.json", 2), object("pages/a/2.json", 2)),
	}}
	s := newFakeMinIO(t, f, 0)

	if err := s.DeleteAllForOwner(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	want := []string{"pages/a/1.json", "pages/a/2.json", "raw/a"}
	if strings.Join(f.deleted, ",") != strings.Join(want, ",") {
		t.Errorf("deleted = %q, want %q", f.deleted, want)
	}
}

func TestMinIO_DeleteStopsListingOnError(t *testing.T) {
	f := &fakeS3{
		pages: map[string]string{
			"":   page("p2", object("pages/a/1.json", 2)),
			"p2": page("", object("pages/a/2.json", 2)),
		},
		denyWrite: true,
	}
	s := newFakeMinIO(t, f, 0)

	err := s.DeleteAllForOwner(context.Background(), "a")
	if !errors.Is(err, blob.ErrStorage) {
		t.Fatalf("err = %v, want ErrStorage", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.listed) != 1 {
		t.Errorf("listing requests = %q; the second page should not be fetched after a failure", f.listed)
	}
}
