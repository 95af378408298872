/*
server.go - HTTP router wiring

PURPOSE:
  Assembles the chi router: common middleware, CORS, the public auth
  and event-stream endpoints, and the bearer-protected API group.

SEE ALSO:
  - handlers.go: The handlers mounted here
  - middleware.go: Bearer-token authentication
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the complete route tree for the clinic API.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Public endpoints.
	r.Post("/api/login", h.Login)
	r.Post("/api/register", h.Register)
	r.Get("/api/events", h.Events.ServeHTTP)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/api/profile", h.Profile)
		r.Get("/api/users", h.ListUsers)
		r.Delete("/api/users/{userId}", h.DeleteUser)

		r.Post("/api/attendance", h.AddAttendance)
		r.Get("/api/attendance/{customerId}", h.GetAttendance)
		r.Get("/api/attendance/month/{customerId}/{month}/{year}", h.GetAttendanceMonth)
		r.Delete("/api/attendance/records/{recordId}", h.DeleteAttendanceRecord)

		r.Get("/api/stats/{customerId}", h.GetStats)
		r.Get("/api/invoice/{customerId}/{month}/{year}", h.GetInvoice)
		r.Get("/api/invoice/{customerId}/{month}/{year}/export", h.ExportInvoice)
		r.Get("/api/revenue/{month}/{year}", h.GetRevenue)
		r.Get("/api/export/available", h.ExportAvailability)
	})

	return r
}
