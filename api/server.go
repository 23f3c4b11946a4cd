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
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/employees/*     Roster, balances, per-employee vacations
  /api/vacations/*     Request submission, approval workflow
  /api/restrictions/*  Scheduling restrictions
  /api/holidays/*      Company calendar
  /api/reports/*       Derived read-only views
  /api/snapshot        CSV export/import

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
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Get("/{id}/balance", h.GetBalance)
			r.Get("/{id}/vacations", h.ListEmployeeVacations)
		})

		// Vacation routes
		r.Route("/vacations", func(r chi.Router) {
			r.Get("/", h.ListVacations)
			r.Post("/", h.SubmitVacation)
			r.Get("/{id}", h.GetVacation)
			r.Put("/{id}", h.UpdateVacation)
			r.Delete("/{id}", h.DeleteVacation)
			r.Post("/{id}/approve", h.ApproveVacation)
			r.Post("/{id}/reject", h.RejectVacation)
		})

		// Restriction routes
		r.Route("/restrictions", func(r chi.Router) {
			r.Get("/", h.ListRestrictions)
			r.Post("/", h.CreateRestriction)
			r.Put("/{id}", h.UpdateRestriction)
			r.Delete("/{id}", h.DeleteRestriction)
		})

		// Holiday routes
		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
			r.Delete("/{id}", h.DeleteHoliday)
		})

		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Get("/upcoming", h.UpcomingVacations)
			r.Get("/underused", h.UnderusedEmployees)
		})

		// Snapshot routes
		r.Get("/snapshot", h.ExportSnapshot)
		r.Post("/snapshot", h.ImportSnapshot)
	})

	return r
}
