package disk

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPut(t *testing.T) {
	dir := t.TempDir()
	storage, err := New(dir, "/uploads")
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}

	ref, err := storage.Put(context.Background(), "audio/webm", bytes.NewReader([]byte("audio-bytes")))
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	if !strings.HasPrefix(ref, "/uploads/") {
		t.Fatalf("expected ref under /uploads/, got %q", ref)
	}
	if !strings.HasSuffix(ref, ".webm") {
		t.Fatalf("expected .webm extension for audio/webm, got %q", ref)
	}

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(ref, "/uploads/")))
	if err != nil {
		t.Fatalf("read stored blob: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Fatalf("stored blob content %q", data)
	}
}

func TestPut_UniqueRefs(t *testing.T) {
	storage, err := New(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}

	seen := map[string]struct{}{}
	for i := 0; i < 10; i++ {
		ref, err := storage.Put(context.Background(), "audio/wav", bytes.NewReader([]byte("x")))
		if err != nil {
			t.Fatalf("put: %v", err)
		}
		if _, dup := seen[ref]; dup {
			t.Fatalf("duplicate ref %q", ref)
		}
		seen[ref] = struct{}{}
	}
}

func TestPut_UnknownContentType(t *testing.T) {
	storage, err := New(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}

	ref, err := storage.Put(context.Background(), "application/octet-stream", bytes.NewReader([]byte("x")))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !strings.HasSuffix(ref, ".bin") {
		t.Fatalf("expected .bin fallback, got %q", ref)
	}
}
