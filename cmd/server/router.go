package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lernia/review-api/internal/api"
	apiMiddleware "github.com/lernia/review-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	cardHandler := api.NewCardHandler(app.reviewService, app.logger)
	sessionHandler := api.NewSessionHandler(app.reviewService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Card lifecycle
		r.Post("/cards", cardHandler.CreateCard)
		r.Get("/cards/{id}", cardHandler.GetCard)
		r.Post("/cards/{id}/review", cardHandler.ReviewCard)
		r.Post("/cards/{id}/postpone", cardHandler.PostponeCard)
		r.Post("/cards/{id}/reset", cardHandler.ResetCard)

		// Due selection
		r.Get("/students/{studentID}/cards/due", cardHandler.DueCards)

		// Review sessions
		r.Post("/sessions", sessionHandler.StartSession)
		r.Post("/sessions/{id}/cards/{cardID}/review", sessionHandler.ReviewCard)
		r.Post("/sessions/{id}/complete", sessionHandler.CompleteSession)
		r.Post("/sessions/{id}/abandon", sessionHandler.AbandonSession)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
