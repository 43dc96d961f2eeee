package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/deckservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *deckservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Generation.
	r.Post("/generate", h.Generate)

	// Persisted decks.
	r.Get("/decks", h.ListDecks)
	r.Get("/decks/{filename}", h.DownloadDeck)
	r.Delete("/decks/{filename}", h.DeleteDeck)

	// Generation history.
	r.Get("/history", h.History)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
