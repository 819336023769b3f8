package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"thumbnailer/internal/domain"
)

// ArtifactStore persists generated thumbnails onto the local filesystem.
// Every Put issues a fresh key, so stored content is never rewritten.
type ArtifactStore struct {
	basePath string
	now      func() time.Time
}

// NewArtifactStore initializes an ArtifactStore rooted at basePath. The
// directory itself is created lazily on the first Put.
func NewArtifactStore(basePath string) (*ArtifactStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: artifact path is required")
	}
	return &ArtifactStore{basePath: basePath, now: time.Now}, nil
}

// BasePath returns the configured root directory.
func (s *ArtifactStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Put writes data under a newly generated key and returns it. The bytes go
// to a hidden temp file first and are renamed into place, so Get never
// observes a partial write.
func (s *ArtifactStore) Put(ctx context.Context, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return "", &domain.StorageError{Op: "ensure directory", Path: s.basePath, Err: err}
	}

	key := fmt.Sprintf("thumbnail-%d-%s.jpg", s.now().UnixMilli(), uuid.NewString())
	tmp, err := os.CreateTemp(s.basePath, ".pending-*")
	if err != nil {
		return "", &domain.StorageError{Op: "create temp file", Path: s.basePath, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", &domain.StorageError{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", &domain.StorageError{Op: "close", Path: tmpName, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", &domain.StorageError{Op: "chmod", Path: tmpName, Err: err}
	}
	final := filepath.Join(s.basePath, key)
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return "", &domain.StorageError{Op: "rename", Path: final, Err: err}
	}
	return key, nil
}

// Get loads the artifact stored under key. Keys that are not plain file
// names inside the artifact directory, and keys that do not resolve to a
// readable regular file, yield domain.ErrNotFound.
func (s *ArtifactStore) Get(ctx context.Context, key string) (*domain.Artifact, error) {
	if s == nil {
		return nil, errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validKey(key) {
		return nil, domain.ErrNotFound
	}
	path := filepath.Join(s.basePath, key)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, domain.ErrNotFound
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return &domain.Artifact{Key: key, Data: data, CreatedAt: info.ModTime()}, nil
}

// validKey accepts a single visible path element only.
func validKey(key string) bool {
	if key == "" || key != strings.TrimSpace(key) {
		return false
	}
	if strings.ContainsAny(key, `/\`) || strings.ContainsRune(key, 0) {
		return false
	}
	if strings.HasPrefix(key, ".") {
		return false
	}
	return filepath.Base(key) == key
}
