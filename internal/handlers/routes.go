package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gdg-garage/jobquest-api/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

var authSecurity = []map[string][]string{{"cookieAuth": {}}, {"apiKeyAuth": {}}}

func secured(o *huma.Operation) {
	o.Security = authSecurity
}

func RegisterRoutes(r *chi.Mux, authHandler *auth.AuthHandler, gamificationHandler *GamificationHandler, apiKeyHandler *APIKeyHandler, metricsHandler http.Handler) huma.API {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(authHandler.Middleware)

	// Initialize Huma API
	config := huma.DefaultConfig("JobQuest Gamification API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.TokenCookieName,
		},
		"apiKeyAuth": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, config)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	// Auth routes
	r.Get("/auth/discord/login", authHandler.HandleLogin)
	r.Get("/auth/discord/callback", authHandler.HandleCallback)

	huma.Get(api, "/gamification/catalog", gamificationHandler.HandleCatalog)

	// Protected routes
	huma.Get(api, "/me", authHandler.HandleMe, secured)

	huma.Register(api, huma.Operation{
		OperationID:   "record-event",
		Method:        http.MethodPost,
		Path:          "/gamification/events",
		Summary:       "Record a user action and award XP, badges and levels",
		DefaultStatus: http.StatusOK,
		Security:      authSecurity,
	}, gamificationHandler.HandleRecordEvent)
	huma.Get(api, "/gamification/progress", gamificationHandler.HandleProgress, secured)
	huma.Get(api, "/gamification/badges/{badgeId}", gamificationHandler.HandleBadgeDetail, secured)
	huma.Post(api, "/gamification/reconcile", gamificationHandler.HandleReconcile, secured)

	huma.Post(api, "/api-keys", apiKeyHandler.HandleCreate, secured)
	huma.Get(api, "/api-keys", apiKeyHandler.HandleList, secured)
	huma.Delete(api, "/api-keys/{id}", apiKeyHandler.HandleDelete, secured)

	return api
}
