// Package disk stores blobs as files under a local directory served at
// /uploads/.
package disk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/linguachat/linguachat-server/internal/blob"
)

// Storage writes uploads to dir and returns refs under urlPrefix.
type Storage struct {
	dir       string
	urlPrefix string
}

// New creates the upload directory if needed.
func New(dir, urlPrefix string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Storage{dir: dir, urlPrefix: urlPrefix}, nil
}

var _ blob.Storage = (*Storage)(nil)

// Put streams r into a uuid-named file. The file is written to a temp name
// and renamed so a ref never points at a partial write.
func (s *Storage) Put(_ context.Context, contentType string, r io.Reader) (string, error) {
	name := uuid.NewString() + extensionFor(contentType)

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close blob: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("finalize blob: %w", err)
	}

	return s.urlPrefix + "/" + name, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "audio/webm":
		return ".webm"
	default:
		return ".bin"
	}
}
