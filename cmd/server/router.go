package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jwhitt/flashstack/internal/api"
	apimiddleware "github.com/jwhitt/flashstack/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apimiddleware.NewTraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(
		app.userService,
		app.jwtService,
		&app.config.Auth,
		app.logger,
	)
	topicHandler := api.NewTopicHandler(app.topicService, app.cardService, app.logger)
	cardHandler := api.NewCardHandler(app.cardService, app.logger)
	accountHandler := api.NewAccountHandler(app.userService, app.logger)

	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Topic tree endpoints
			r.Get("/topics", topicHandler.List)
			r.Post("/topics", topicHandler.Create)
			r.Put("/topics/reorder", topicHandler.Reorder)
			r.Put("/topics/{id}", topicHandler.Update)
			r.Delete("/topics/{id}", topicHandler.Delete)
			r.Get("/topics/{id}/cards", topicHandler.StudyCards)

			// Card endpoints
			r.Post("/cards", cardHandler.Create)
			r.Put("/cards/{id}", cardHandler.Update)
			r.Delete("/cards/{id}", cardHandler.Delete)
			r.Post("/cards/import", cardHandler.Import)
			r.Get("/cards/export", cardHandler.Export)

			// Account endpoints
			r.Get("/account", accountHandler.Get)
			r.Put("/account/title", accountHandler.UpdateTitle)
			r.Put("/account/profile", accountHandler.UpdateProfile)
			r.Put("/account/password", accountHandler.UpdatePassword)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
