package server

import (
	"net/http"

	"picture-book-api/internal/builder"
	"picture-book-api/internal/server/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter は、ミドルウェアとルーティングを統合した http.Handler を構築します。
func NewRouter(h *builder.AppHandlers) http.Handler {
	r := chi.NewRouter()

	setupCommonMiddleware(r)
	setupRoutes(r, h.Story)

	return r
}

func setupCommonMiddleware(r *chi.Mux) {
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
}

func setupRoutes(r chi.Router, storyHandler *handlers.Handler) {
	r.Get("/healthz", storyHandler.Healthz)

	r.Post("/select-main-theme", storyHandler.SelectMainTheme)
	r.Post("/generate-story-parent", storyHandler.GenerateStoryParent)
	r.Post("/generate-story-child", storyHandler.GenerateStoryChild)
}
