/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontends

ROUTE GROUPS:
  /api/users/{id}/*     Per-user ledger and settlement operations
  /api/admin/*          Owner-only administration

SECURITY NOTE:
  No authentication middleware. The engine trusts the caller identity
  in the URL and the X-Actor-ID header; put a gateway in front.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Actor-ID"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/users/{id}", func(r chi.Router) {
			// Entries
			r.Post("/entries", h.RecordEntry)
			r.Post("/entries/confirm", h.ConfirmEntry)
			r.Post("/entries/cancel", h.CancelEntry)
			r.Get("/entries", h.ListEntries)
			r.Post("/undo", h.Undo)

			// Settlement
			r.Post("/payouts", h.RecordPayout)
			r.Get("/payouts", h.ListPayouts)
			r.Post("/periods/{period}/close", h.ClosePeriod)
			r.Get("/statements", h.ListStatements)
			r.Get("/statements/{period}", h.GetStatement)
			r.Get("/stats/monthly", h.MonthlyStats)
			r.Get("/stats/yearly", h.YearlyStats)
			r.Get("/audit", h.AuditTrail)

			// Authorization
			r.Post("/request-access", h.RequestAccess)
		})

		// Admin routes (owner only, X-Actor-ID header)
		r.Route("/admin", func(r chi.Router) {
			r.Route("/auth", func(r chi.Router) {
				r.Get("/pending", h.ListPendingAuth)
				r.Get("/users", h.ListAuthorizedUsers)
				r.Post("/{id}/approve", h.ApproveAuth)
				r.Post("/{id}/reject", h.RejectAuth)
				r.Post("/{id}/revoke", h.RevokeAuth)
			})
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
