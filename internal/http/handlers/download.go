package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "filename")
	art, err := a.Artifacts.Get(r.Context(), key)
	if err != nil {
		a.fail(w, err, "Thumbnail not found")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Key))
	http.ServeContent(w, r, art.Key, art.CreatedAt, bytes.NewReader(art.Data))
}
