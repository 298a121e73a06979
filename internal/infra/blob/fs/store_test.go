package fs

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	core "github.com/philharmoniedeparis/metascore-library-sub004/internal/blob/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	info, err := s.Put(ctx, "assets/logo.svg", strings.NewReader("<svg/>"), core.PutOptions{ContentType: "image/svg+xml"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "assets/logo.svg" || info.Size != 6 || info.ETag == "" {
		t.Fatalf("put info = %+v", info)
	}

	got, rc, err := s.Get(ctx, "assets/logo.svg")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	if got.ContentType != "image/svg+xml" || got.ETag != info.ETag {
		t.Fatalf("get info = %+v", got)
	}
	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "<svg/>" {
		t.Fatalf("body = %q", body)
	}
}

func TestOverwriteReplacesContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Put(ctx, "doc.txt", strings.NewReader("one"), core.PutOptions{})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	second, err := s.Put(ctx, "doc.txt", strings.NewReader("two"), core.PutOptions{})
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if first.ETag == second.ETag {
		t.Fatalf("etag unchanged across overwrite")
	}
	_, rc, err := s.Get(ctx, "doc.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	body, _ := io.ReadAll(rc)
	if string(body) != "two" {
		t.Fatalf("body = %q", body)
	}
}

func TestMissingKeys(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, _, err := s.Get(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get missing: %v", err)
	}
	if _, err := s.Head(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("head missing: %v", err)
	}
	removed, err := s.Delete(ctx, "nope")
	if err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if removed {
		t.Fatalf("delete of missing key reported true")
	}
}

func TestDeleteRemovesBlob(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Put(ctx, "gone.txt", strings.NewReader("x"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	removed, err := s.Delete(ctx, "gone.txt")
	if err != nil || !removed {
		t.Fatalf("delete = %v, %v", removed, err)
	}
	if _, err := s.Head(ctx, "gone.txt"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("head after delete: %v", err)
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"media/b.mp4", "media/a.mp4", "css/site.css"} {
		if _, err := s.Put(ctx, key, strings.NewReader(key), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	infos, err := s.List(ctx, "media/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "media/a.mp4" || infos[1].Key != "media/b.mp4" {
		t.Fatalf("list = %+v", infos)
	}

	all, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("list all = %d entries", len(all))
	}
}

func TestKeySanitization(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"../escape", "/abs/path", "a/../../b"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Fatalf("key %q accepted", key)
		}
	}
}

func TestPresignUnsupported(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.PresignURL(context.Background(), "k", core.SignedURLOptions{}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("presign: %v", err)
	}
}
