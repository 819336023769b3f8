package thumbnail

import (
	"context"
	"errors"
	"strings"

	"thumbnailer/internal/domain"
	"thumbnailer/internal/imagegen"
	"thumbnailer/internal/infra"
)

// Output frame of every thumbnail.
const (
	TargetWidth  = 1280
	TargetHeight = 720
)

// AssetFetcher downloads a provider asset by URL.
type AssetFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Normalizer turns raw provider output into a width x height JPEG.
type Normalizer interface {
	Normalize(data []byte, width, height int) ([]byte, error)
}

// ArtifactWriter persists a finished thumbnail and returns its key.
type ArtifactWriter interface {
	Put(ctx context.Context, data []byte) (string, error)
}

// StagingCleaner removes a request's staged reference files.
type StagingCleaner interface {
	Cleanup(files []domain.UploadedFile)
}

// Request is one generation request after form parsing.
type Request struct {
	RequestID   string
	Prompt      string
	Style       string
	CustomStyle string
	IncludeText bool
	Text        string
}

// Result describes a stored thumbnail.
type Result struct {
	Key            string
	OriginalPrompt string
	FullPrompt     string
	Style          string
	Width          int
	Height         int
}

// Deps wires a Service.
type Deps struct {
	Generator  imagegen.Generator
	Fetcher    AssetFetcher
	Normalizer Normalizer
	Artifacts  ArtifactWriter
	Staging    StagingCleaner
	Logger     infra.Logger
	// SizeHint is passed to the provider; defaults to imagegen.DefaultSize.
	SizeHint string
}

// Service runs a single generation: compose, call the provider once, fetch,
// normalize, persist. Staged inputs are removed on every exit path.
type Service struct {
	generator  imagegen.Generator
	fetcher    AssetFetcher
	normalizer Normalizer
	artifacts  ArtifactWriter
	staging    StagingCleaner
	logger     infra.Logger
	sizeHint   string
}

func NewService(d Deps) *Service {
	size := d.SizeHint
	if size == "" {
		size = imagegen.DefaultSize
	}
	return &Service{
		generator:  d.Generator,
		fetcher:    d.Fetcher,
		normalizer: d.Normalizer,
		artifacts:  d.Artifacts,
		staging:    d.Staging,
		logger:     d.Logger,
		sizeHint:   size,
	}
}

// Generate produces and stores a thumbnail for req. Cancellation of ctx is
// ignored: once started, the provider call and the cleanup always run to
// completion.
func (s *Service) Generate(ctx context.Context, req Request, staged []domain.UploadedFile) (*Result, error) {
	defer s.staging.Cleanup(staged)
	ctx = context.WithoutCancel(ctx)

	if strings.TrimSpace(req.Prompt) == "" {
		return nil, domain.ErrPromptRequired
	}
	style := req.Style
	if style == "" {
		style = DefaultStyle
	}
	fullPrompt := ComposePrompt(PromptInput{
		Style:       style,
		CustomStyle: req.CustomStyle,
		Description: req.Prompt,
		IncludeText: req.IncludeText,
		Text:        req.Text,
	})

	log := s.logger.With().Str("request_id", req.RequestID).Str("style", style).Int("references", len(staged)).Logger()
	log.Info().Str("prompt", fullPrompt).Msg("thumbnail: generating")

	log.Debug().Str("size", s.sizeHint).Msg("thumbnail: calling provider")
	img, err := s.generator.Generate(ctx, imagegen.GenerateRequest{Prompt: fullPrompt, Size: s.sizeHint})
	if err != nil {
		return nil, s.fail(log, domain.StageProvider, err)
	}

	log.Debug().Msg("thumbnail: fetching asset")
	raw, err := s.fetcher.Fetch(ctx, img.URL)
	if err != nil {
		return nil, s.fail(log, domain.StageFetch, err)
	}

	log.Debug().Int("bytes", len(raw)).Msg("thumbnail: normalizing")
	jpg, err := s.normalizer.Normalize(raw, TargetWidth, TargetHeight)
	if err != nil {
		return nil, s.fail(log, domain.StageNormalize, err)
	}

	key, err := s.artifacts.Put(ctx, jpg)
	if err != nil {
		log.Error().Err(err).Msg("thumbnail: persist failed")
		var se *domain.StorageError
		if !errors.As(err, &se) {
			err = &domain.StorageError{Op: "persist artifact", Err: err}
		}
		return nil, err
	}
	log.Info().Str("key", key).Msg("thumbnail: stored")

	return &Result{
		Key:            key,
		OriginalPrompt: req.Prompt,
		FullPrompt:     fullPrompt,
		Style:          style,
		Width:          TargetWidth,
		Height:         TargetHeight,
	}, nil
}

func (s *Service) fail(log infra.Logger, stage domain.Stage, err error) error {
	log.Error().Err(err).Str("stage", string(stage)).Msg("thumbnail: generation failed")
	return &domain.UpstreamError{Stage: stage, Err: err}
}
