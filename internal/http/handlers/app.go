package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"thumbnailer/internal/domain"
	"thumbnailer/internal/infra"
	"thumbnailer/internal/storage"
	"thumbnailer/internal/thumbnail"
)

// App holds the collaborators shared by all handlers.
type App struct {
	Config     *infra.Config
	Logger     infra.Logger
	Stager     *storage.Stager
	Artifacts  *storage.ArtifactStore
	Thumbnails *thumbnail.Service
}

func NewApp(cfg *infra.Config, logger infra.Logger, stager *storage.Stager, artifacts *storage.ArtifactStore, thumbnails *thumbnail.Service) *App {
	return &App{
		Config:     cfg,
		Logger:     logger,
		Stager:     stager,
		Artifacts:  artifacts,
		Thumbnails: thumbnails,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]string{"error": message})
}

// fail converts a request-path error into its JSON response. message is the
// summary used for server-side failures; the underlying error goes into
// details.
func (a *App) fail(w http.ResponseWriter, err error, message string) {
	var (
		input    *domain.ClientInputError
		upstream *domain.UpstreamError
		store    *domain.StorageError
	)
	switch {
	case errors.As(err, &input):
		a.error(w, input.HTTPStatus(), input.Message)
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, message)
	case errors.As(err, &upstream):
		a.json(w, http.StatusInternalServerError, map[string]string{"error": message, "details": upstream.Error()})
	case errors.As(err, &store):
		a.json(w, http.StatusInternalServerError, map[string]string{"error": message, "details": store.Error()})
	default:
		a.Logger.Error().Err(err).Msg("handlers: unclassified error")
		a.json(w, http.StatusInternalServerError, map[string]string{"error": message, "details": err.Error()})
	}
}

// Reject renders an error raised before a handler ran, such as a rate
// limit rejection.
func (a *App) Reject(w http.ResponseWriter, r *http.Request, err error) {
	a.fail(w, err, "Request rejected")
}

// NotFound answers unmatched routes and methods.
func (a *App) NotFound(w http.ResponseWriter, r *http.Request) {
	a.error(w, http.StatusNotFound, "Endpoint not found")
}
