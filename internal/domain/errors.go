package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrNotFound = errors.New("not found")

// ClientInputError is a request the caller has to fix. Status defaults to 400.
type ClientInputError struct {
	Status  int
	Message string
}

func (e *ClientInputError) Error() string { return e.Message }

// HTTPStatus returns the response code for the error.
func (e *ClientInputError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusBadRequest
	}
	return e.Status
}

// NewClientInputError returns a 400 ClientInputError.
func NewClientInputError(format string, args ...any) *ClientInputError {
	return &ClientInputError{Message: fmt.Sprintf(format, args...)}
}

// ErrPromptRequired rejects a generation request without a description.
var ErrPromptRequired = &ClientInputError{Message: "Prompt is required"}

// ErrRateLimited is returned once a client has used up its generation quota.
var ErrRateLimited = &ClientInputError{
	Status:  http.StatusTooManyRequests,
	Message: "Too many thumbnail generation requests, please try again later.",
}

// Stage names the step of the generation pipeline that failed.
type Stage string

const (
	StageProvider  Stage = "provider"
	StageFetch     Stage = "fetch"
	StageNormalize Stage = "normalize"
)

// UpstreamError wraps a failure of the image provider, the asset download or
// the normalization step.
type UpstreamError struct {
	Stage Stage
	Err   error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return string(e.Stage) + " failed"
	}
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// StorageError is a filesystem failure while staging, persisting or reading.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// SweepError is reported by the retention sweeper for a single entry or
// directory. It is only ever logged.
type SweepError struct {
	Dir  string
	Path string
	Err  error
}

func (e *SweepError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("sweep %s: %v", e.Dir, e.Err)
	}
	return fmt.Sprintf("sweep %s: %v", e.Path, e.Err)
}

func (e *SweepError) Unwrap() error { return e.Err }
