package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"thumbnailer/internal/http/handlers"
	httpapi "thumbnailer/internal/http/httpapi"
	"thumbnailer/internal/imagegen"
	"thumbnailer/internal/infra"
	"thumbnailer/internal/retention"
	"thumbnailer/internal/storage"
	"thumbnailer/internal/thumbnail"
	"thumbnailer/pkg/imagefit"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg)

	if cfg.OpenAIAPIKey == "" {
		logger.Warn().Msg("OPENAI_API_KEY is not set, generation requests will fail")
	}

	stager, err := storage.NewStager(cfg.StagingDir(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init staging")
	}
	artifacts, err := storage.NewArtifactStore(cfg.ArtifactDir())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init artifact store")
	}

	generator := imagegen.NewOpenAIClient(imagegen.OpenAIOptions{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIImageModel,
	})
	thumbnails := thumbnail.NewService(thumbnail.Deps{
		Generator:  generator,
		Fetcher:    imagegen.NewFetcher(infra.NewHTTPClient(cfg.AssetFetchTimeout)),
		Normalizer: imagefit.New(imagefit.DefaultQuality),
		Artifacts:  artifacts,
		Staging:    stager,
		Logger:     logger,
	})

	app := handlers.NewApp(cfg, logger, stager, artifacts, thumbnails)
	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	retention.New(retention.Options{
		Dirs:   []string{stager.Dir(), artifacts.BasePath()},
		Logger: logger,
	}).Start(ctx)

	logger.Info().
		Str("model", generator.Model()).
		Int("trusted_proxies", len(cfg.TrustedProxies)).
		Msgf("API listening on :%s", cfg.Port)
	if err := server.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("http server failed")
	}
	logger.Info().Msg("server stopped")
}
