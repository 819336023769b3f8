package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"thumbnailer/internal/domain"
	"thumbnailer/internal/middleware"
	"thumbnailer/internal/storage"
	"thumbnailer/internal/thumbnail"
)

const (
	// Three maximal reference images plus room for the text fields.
	maxGenerateBody = storage.MaxReferenceFiles*storage.MaxReferenceFileSize + 1<<20
	multipartMemory = 16 << 20

	generateFailed = "Failed to generate thumbnail"
)

type dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type generateResponse struct {
	Success        bool       `json:"success"`
	ThumbnailURL   string     `json:"thumbnailUrl"`
	OriginalPrompt string     `json:"originalPrompt"`
	FullPrompt     string     `json:"fullPrompt"`
	Style          string     `json:"style"`
	Dimensions     dimensions `json:"dimensions"`
}

func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxGenerateBody)
	files, err := parseGenerateForm(r)
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	if err != nil {
		a.fail(w, err, generateFailed)
		return
	}
	if err := storage.Validate(files); err != nil {
		a.fail(w, err, generateFailed)
		return
	}

	req := thumbnail.Request{
		RequestID:   middleware.RequestIDFromContext(r.Context()),
		Prompt:      r.PostFormValue("prompt"),
		Style:       r.PostFormValue("style"),
		CustomStyle: r.PostFormValue("customStyle"),
		IncludeText: parseFlag(r.PostFormValue("includeText")),
		Text:        r.PostFormValue("thumbnailText"),
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.fail(w, domain.ErrPromptRequired, generateFailed)
		return
	}

	staged, err := a.Stager.Stage(r.Context(), files)
	if err != nil {
		a.Logger.Error().Err(err).Str("request_id", req.RequestID).Msg("generate: staging failed")
		a.fail(w, err, generateFailed)
		return
	}

	res, err := a.Thumbnails.Generate(r.Context(), req, staged)
	if err != nil {
		a.fail(w, err, generateFailed)
		return
	}
	a.json(w, http.StatusOK, generateResponse{
		Success:        true,
		ThumbnailURL:   "/api/download/" + res.Key,
		OriginalPrompt: res.OriginalPrompt,
		FullPrompt:     res.FullPrompt,
		Style:          res.Style,
		Dimensions:     dimensions{Width: res.Width, Height: res.Height},
	})
}

// parseGenerateForm accepts multipart and urlencoded bodies and returns the
// reference image headers. Files under any other field are rejected.
func parseGenerateForm(r *http.Request) ([]*multipart.FileHeader, error) {
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.NewClientInputError("Request too large. Maximum is %d reference images of 10MB each.", storage.MaxReferenceFiles)
		}
		return nil, domain.NewClientInputError("Invalid form data")
	}
	if r.MultipartForm == nil {
		return nil, nil
	}
	for field := range r.MultipartForm.File {
		if field != storage.ReferenceField {
			return nil, domain.NewClientInputError("Unexpected file field %q", field)
		}
	}
	return r.MultipartForm.File[storage.ReferenceField], nil
}

func parseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
