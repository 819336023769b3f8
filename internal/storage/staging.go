package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"thumbnailer/internal/domain"
	"thumbnailer/internal/infra"
)

const (
	// ReferenceField is the multipart field carrying reference images.
	ReferenceField = "referenceImages"
	// MaxReferenceFiles caps the number of reference images per request.
	MaxReferenceFiles = 3
	// MaxReferenceFileSize caps each reference image.
	MaxReferenceFileSize int64 = 10 << 20
)

var (
	allowedExtensions = map[string]struct{}{
		".jpg": {}, ".jpeg": {}, ".png": {}, ".webp": {},
	}
	allowedMIMETypes = map[string]struct{}{
		"image/jpeg": {}, "image/jpg": {}, "image/pjpeg": {}, "image/png": {}, "image/webp": {},
	}
)

var (
	errTooManyFiles = &domain.ClientInputError{Message: "Too many files. Maximum is 3 reference images."}
	errFileTooLarge = &domain.ClientInputError{Message: "File too large. Maximum size is 10MB."}
	errFileType     = &domain.ClientInputError{Message: "Only image files (JPEG, PNG, WebP) are allowed!"}
)

// Stager keeps reference uploads in a temp directory for the lifetime of one
// request. Names carry a timestamp and a random component, so concurrent
// requests never collide and no locking is needed.
type Stager struct {
	dir    string
	logger infra.Logger
	now    func() time.Time
}

// NewStager returns a Stager writing into dir.
func NewStager(dir string, logger infra.Logger) (*Stager, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("storage: staging path is required")
	}
	return &Stager{dir: dir, logger: logger, now: time.Now}, nil
}

// Dir returns the staging directory.
func (s *Stager) Dir() string { return s.dir }

// Validate checks count, type and size of the submitted files without
// touching the disk.
func Validate(files []*multipart.FileHeader) error {
	if len(files) > MaxReferenceFiles {
		return errTooManyFiles
	}
	for _, fh := range files {
		if !allowedType(fh) {
			return errFileType
		}
		if fh.Size > MaxReferenceFileSize {
			return errFileTooLarge
		}
	}
	return nil
}

func allowedType(fh *multipart.FileHeader) bool {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	_, ok := allowedMIMETypes[strings.ToLower(mediaType)]
	return ok
}

// Stage validates files and copies them into the staging directory. Either
// every file is staged or none is left behind.
func (s *Stager) Stage(ctx context.Context, files []*multipart.FileHeader) ([]domain.UploadedFile, error) {
	if err := Validate(files); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, &domain.StorageError{Op: "ensure directory", Path: s.dir, Err: err}
	}

	staged := make([]domain.UploadedFile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, fh := range files {
		i, fh := i, fh
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := s.copy(fh)
			if err != nil {
				return err
			}
			staged[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.Cleanup(staged)
		return nil, err
	}
	return staged, nil
}

func (s *Stager) copy(fh *multipart.FileHeader) (domain.UploadedFile, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := fmt.Sprintf("%s-%d-%s%s", ReferenceField, s.now().UnixMilli(), uuid.NewString(), ext)
	path := filepath.Join(s.dir, name)

	src, err := fh.Open()
	if err != nil {
		return domain.UploadedFile{}, &domain.StorageError{Op: "open upload", Path: fh.Filename, Err: err}
	}
	defer src.Close()

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return domain.UploadedFile{}, &domain.StorageError{Op: "create", Path: path, Err: err}
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return domain.UploadedFile{}, &domain.StorageError{Op: "write", Path: path, Err: err}
	}

	mediaType, _, _ := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	return domain.UploadedFile{
		Path:         path,
		OriginalName: fh.Filename,
		MIMEType:     mediaType,
		Size:         n,
	}, nil
}

// Cleanup unlinks staged files. Failures are logged per file and never
// returned; a file that is already gone counts as removed.
func (s *Stager) Cleanup(files []domain.UploadedFile) {
	for _, f := range files {
		if f.Path == "" {
			continue
		}
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Error().Err(err).Str("path", f.Path).Msg("staging: failed to delete file")
		}
	}
}
