package handlers

import (
	"net/http"

	"thumbnailer/internal/thumbnail"
)

func (a *App) Styles(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"styles": thumbnail.Styles()})
}
