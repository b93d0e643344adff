package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLocal_SaveOpenDelete(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	ctx := context.Background()

	content := []byte("report bytes")
	if err := store.Save(ctx, "reports/1/2/file.pdf", bytes.NewReader(content), int64(len(content)), "application/pdf"); err != nil {
		t.Fatalf("save: %v", err)
	}

	reader, err := store.Open(ctx, "reports/1/2/file.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("content mismatch: %q", got)
	}

	if err := store.Delete(ctx, "reports/1/2/file.pdf"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Open(ctx, "reports/1/2/file.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("open after delete = %v, want ErrNotFound", err)
	}

	// Delete is idempotent.
	if err := store.Delete(ctx, "reports/1/2/file.pdf"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestLocal_RejectsEscapingKeys(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"../outside.txt", "/etc/passwd", "a/../../b"} {
		if err := store.Save(ctx, key, strings.NewReader("x"), 1, "text/plain"); err == nil {
			t.Errorf("key %q accepted", key)
		}
	}
}

func TestLocal_ListFiltersByPrefix(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"reports/1/a.pdf", "reports/2/b.pdf", "avatars/1/c.png"} {
		if err := store.Save(ctx, key, strings.NewReader("x"), 1, "application/octet-stream"); err != nil {
			t.Fatalf("save %s: %v", key, err)
		}
	}

	objects, err := store.List(ctx, "reports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("objects = %d, want 2", len(objects))
	}
	for _, obj := range objects {
		if !strings.HasPrefix(obj.Key, "reports/") {
			t.Errorf("unexpected key %q", obj.Key)
		}
	}
}
