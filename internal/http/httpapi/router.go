package httpapi

import (
	"net/http"

	"thumbnailer/internal/http/handlers"
	"thumbnailer/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP(app.Config.TrustedProxies),
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.SecureHeaders,
		middleware.CORS(app.Config.AllowedOrigins),
	)

	r.NotFound(app.NotFound)
	r.MethodNotAllowed(app.NotFound)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.RateLimit(app.Config.RateLimitMax, app.Config.RateLimitWindow, app.Reject)).
			Post("/generate", app.Generate)
		r.Get("/download/{filename}", app.Download)
		r.Get("/styles", app.Styles)
		r.Get("/health", app.Health)
	})

	return r
}
