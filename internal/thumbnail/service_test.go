package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"thumbnailer/internal/domain"
	"thumbnailer/internal/imagegen"
	"thumbnailer/internal/storage"
)

type stubGenerator struct {
	mu    sync.Mutex
	url   string
	err   error
	calls []imagegen.GenerateRequest
}

func (s *stubGenerator) Generate(ctx context.Context, req imagegen.GenerateRequest) (*imagegen.GeneratedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	return &imagegen.GeneratedImage{URL: s.url}, nil
}

type stubFetcher struct {
	data  []byte
	err   error
	calls int
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

type stubNormalizer struct {
	out  []byte
	err  error
	w, h int
}

func (s *stubNormalizer) Normalize(data []byte, width, height int) ([]byte, error) {
	s.w, s.h = width, height
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

type fixture struct {
	svc        *Service
	gen        *stubGenerator
	fetch      *stubFetcher
	norm       *stubNormalizer
	artifacts  *storage.ArtifactStore
	stagingDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	stager, err := storage.NewStager(filepath.Join(root, "temp"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStager: %v", err)
	}
	artifacts, err := storage.NewArtifactStore(filepath.Join(root, "generated"))
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}
	f := &fixture{
		gen:        &stubGenerator{url: "https://cdn.example.com/raw.png"},
		fetch:      &stubFetcher{data: []byte("raw")},
		norm:       &stubNormalizer{out: []byte("jpeg-bytes")},
		artifacts:  artifacts,
		stagingDir: stager.Dir(),
	}
	f.svc = NewService(Deps{
		Generator:  f.gen,
		Fetcher:    f.fetch,
		Normalizer: f.norm,
		Artifacts:  artifacts,
		Staging:    stager,
		Logger:     zerolog.Nop(),
	})
	return f
}

func (f *fixture) stage(t *testing.T, n int) []domain.UploadedFile {
	t.Helper()
	if err := os.MkdirAll(f.stagingDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	var files []domain.UploadedFile
	for i := 0; i < n; i++ {
		p := filepath.Join(f.stagingDir, "ref-"+string(rune('a'+i))+".png")
		if err := os.WriteFile(p, []byte("ref"), 0o644); err != nil {
			t.Fatalf("write staged: %v", err)
		}
		files = append(files, domain.UploadedFile{Path: p})
	}
	return files
}

func assertStagingEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected staging dir to be empty, found %d entries", len(entries))
	}
}

func TestServiceGenerateSuccess(t *testing.T) {
	f := newFixture(t)
	staged := f.stage(t, 2)

	res, err := f.svc.Generate(context.Background(), Request{Prompt: "cat video", IncludeText: true, Text: "WOW"}, staged)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if res.Style != DefaultStyle || res.OriginalPrompt != "cat video" {
		t.Fatalf("unexpected echo fields: %+v", res)
	}
	if res.Width != 1280 || res.Height != 720 || f.norm.w != 1280 || f.norm.h != 720 {
		t.Fatalf("unexpected dimensions: %+v (normalized %dx%d)", res, f.norm.w, f.norm.h)
	}
	want := ComposePrompt(PromptInput{Style: DefaultStyle, Description: "cat video", IncludeText: true, Text: "WOW"})
	if res.FullPrompt != want {
		t.Fatalf("FullPrompt mismatch: %q", res.FullPrompt)
	}
	if len(f.gen.calls) != 1 {
		t.Fatalf("expected one provider call, got %d", len(f.gen.calls))
	}
	if f.gen.calls[0].Prompt != want || f.gen.calls[0].Size != imagegen.DefaultSize {
		t.Fatalf("unexpected provider request: %+v", f.gen.calls[0])
	}
	art, err := f.artifacts.Get(context.Background(), res.Key)
	if err != nil {
		t.Fatalf("artifact lookup: %v", err)
	}
	if !bytes.Equal(art.Data, []byte("jpeg-bytes")) {
		t.Fatalf("artifact content mismatch: %q", art.Data)
	}
	assertStagingEmpty(t, f.stagingDir)
}

func TestServiceGenerateFailuresCleanUp(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(f *fixture)
		wantStage domain.Stage
	}{
		{
			name:      "provider",
			setup:     func(f *fixture) { f.gen.err = errors.New("rate limited upstream") },
			wantStage: domain.StageProvider,
		},
		{
			name:      "fetch",
			setup:     func(f *fixture) { f.fetch.err = errors.New("connection reset") },
			wantStage: domain.StageFetch,
		},
		{
			name:      "normalize",
			setup:     func(f *fixture) { f.norm.err = errors.New("bad image") },
			wantStage: domain.StageNormalize,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			tc.setup(f)
			staged := f.stage(t, 3)

			_, err := f.svc.Generate(context.Background(), Request{Prompt: "cat video"}, staged)
			var ue *domain.UpstreamError
			if !errors.As(err, &ue) {
				t.Fatalf("expected UpstreamError, got %v", err)
			}
			if ue.Stage != tc.wantStage {
				t.Fatalf("stage = %q, want %q", ue.Stage, tc.wantStage)
			}
			if len(f.gen.calls) != 1 {
				t.Fatalf("expected exactly one provider call, got %d", len(f.gen.calls))
			}
			assertStagingEmpty(t, f.stagingDir)
		})
	}
}

func TestServiceProviderFailureSkipsFetch(t *testing.T) {
	f := newFixture(t)
	f.gen.err = errors.New("down")
	if _, err := f.svc.Generate(context.Background(), Request{Prompt: "x"}, nil); err == nil {
		t.Fatalf("expected error")
	}
	if f.fetch.calls != 0 {
		t.Fatalf("fetch must not run after provider failure")
	}
}

func TestServiceRejectsEmptyPromptAndCleansUp(t *testing.T) {
	f := newFixture(t)
	staged := f.stage(t, 1)

	_, err := f.svc.Generate(context.Background(), Request{Prompt: "  "}, staged)
	var cie *domain.ClientInputError
	if !errors.As(err, &cie) {
		t.Fatalf("expected ClientInputError, got %v", err)
	}
	if len(f.gen.calls) != 0 {
		t.Fatalf("provider must not be called for empty prompt")
	}
	assertStagingEmpty(t, f.stagingDir)
}

func TestServiceIgnoresCallerCancellation(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.svc.Generate(ctx, Request{Prompt: "cat video"}, f.stage(t, 1)); err != nil {
		t.Fatalf("Generate should complete after client disconnect, got %v", err)
	}
	assertStagingEmpty(t, f.stagingDir)
}
