package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (no auth required)
	r.Get("/healthz", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		// Contacts
		r.Route("/contacts", func(r chi.Router) {
			r.Post("/", h.HandleCreateContact)
			r.Route("/{contactId}", func(r chi.Router) {
				r.Get("/", h.HandleGetContact)
				r.Get("/score", h.HandleContactScore)
				r.Post("/interactions", h.HandleCreateInteraction)
				r.Post("/notes", h.HandleCreateNote)
				r.Get("/notes", h.HandleListNotes)
			})
		})

		// Interactions
		r.Post("/interactions/{interactionId}/complete-follow-up", h.HandleCompleteFollowUp)

		// Notes
		r.Delete("/notes/{noteId}", h.HandleDeleteNote)

		// Messages and simulated replies
		r.Route("/messages", func(r chi.Router) {
			r.Post("/", h.HandleCreateMessage)
			r.Route("/{messageId}", func(r chi.Router) {
				r.Get("/", h.HandleGetMessage)
				r.Post("/schedule-reply", h.HandleScheduleReply)
				r.Post("/cancel-reply", h.HandleCancelReply)
			})
		})

		// Per-user analytics and scoring
		r.Route("/users/{userId}", func(r chi.Router) {
			r.Get("/contacts", h.HandleListContacts)
			r.Get("/message-analytics", h.HandleMessageAnalytics)
			r.Post("/analytics/daily", h.HandleGenerateDailyAnalytics)
			r.Get("/analytics/daily", h.HandleGetDailyAnalytics)
			r.Get("/networking-score", h.HandleNetworkingScore)
			r.Get("/insights", h.HandleInsights)
		})
	})

	return r
}
