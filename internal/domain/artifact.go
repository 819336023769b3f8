package domain

import "time"

// UploadedFile is a reference image staged for a single request. It is
// removed before that request's response is written.
type UploadedFile struct {
	Path         string
	OriginalName string
	MIMEType     string
	Size         int64
}

// Artifact is a normalized thumbnail addressed by its key. Content behind a
// key never changes; the artifact only disappears through retention.
type Artifact struct {
	Key       string
	Data      []byte
	CreatedAt time.Time
}
