package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/worklog-management/internal/auth"
	"github.com/frahmantamala/worklog-management/internal/company"
	"github.com/frahmantamala/worklog-management/internal/holiday"
	"github.com/frahmantamala/worklog-management/internal/notification"
	"github.com/frahmantamala/worklog-management/internal/obs"
	"github.com/frahmantamala/worklog-management/internal/project"
	"github.com/frahmantamala/worklog-management/internal/team"
	"github.com/frahmantamala/worklog-management/internal/timeentry"
	"github.com/frahmantamala/worklog-management/internal/transport/middleware"
	"github.com/frahmantamala/worklog-management/internal/transport/swagger"
)

// Handlers bundles every feature handler the router mounts. Nil entries
// are skipped so partial deployments (worker-only, API-only) reuse the
// same registration.
type Handlers struct {
	Auth         *auth.Handler
	TimeEntry    *timeentry.Handler
	Project      *project.Handler
	Team         *team.Handler
	Holiday      *holiday.Handler
	Company      *company.Handler
	Notification *notification.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, rateLimiter *middleware.RateLimiter, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(obs.Instrument)
	if rateLimiter != nil {
		router.Use(rateLimiter.Middleware)
	}

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())
	router.Handle("/metrics", obs.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})

			// Client portal: separate token scheme, anonymous fallback
			r.Route("/portal", func(pr chi.Router) {
				pr.Post("/login", h.Auth.PortalLogin)

				pr.Group(func(sr chi.Router) {
					sr.Use(h.Auth.PortalMiddleware)
					if h.Project != nil {
						sr.Get("/projects", h.Project.ListProjects)
					}
					if h.Notification != nil {
						sr.Get("/messages", h.Notification.ListMessages)
					}
				})
			})

			// Staff routes require a resolved identity
			r.Group(func(pr chi.Router) {
				pr.Use(h.Auth.AuthMiddleware)

				if h.TimeEntry != nil {
					pr.Route("/timesheet/entries", func(er chi.Router) {
						er.Post("/", h.TimeEntry.CreateEntry)
						er.Get("/", h.TimeEntry.ListEntries)
						er.Get("/{id}", h.TimeEntry.GetEntry)
						er.Put("/{id}", h.TimeEntry.UpdateEntry)
						er.Delete("/{id}", h.TimeEntry.DeleteEntry)
					})
				}

				if h.Project != nil {
					pr.Route("/projects", func(er chi.Router) {
						er.Post("/", h.Project.CreateProject)
						er.Get("/", h.Project.ListProjects)
						er.Get("/{id}", h.Project.GetProject)
						er.Patch("/{id}", h.Project.UpdateProject)
						er.Post("/{id}/deactivate", h.Project.DeactivateProject)
					})
				}

				if h.Team != nil {
					pr.Route("/teams", func(er chi.Router) {
						er.Post("/", h.Team.CreateTeam)
						er.Get("/", h.Team.ListTeams)
						er.Get("/{id}", h.Team.GetTeam)
						er.Patch("/{id}", h.Team.UpdateTeam)
						er.Delete("/{id}", h.Team.DeleteTeam)
						er.Post("/{id}/members", h.Team.AddMember)
						er.Delete("/{id}/members/{userID}", h.Team.RemoveMember)
					})
				}

				if h.Holiday != nil {
					pr.Route("/holidays", func(er chi.Router) {
						er.Post("/", h.Holiday.CreateHoliday)
						er.Get("/", h.Holiday.ListHolidays)
						er.Delete("/{id}", h.Holiday.DeleteHoliday)
					})
				}

				if h.Company != nil {
					pr.Route("/company", func(er chi.Router) {
						er.Get("/", h.Company.GetCompany)
						er.Patch("/", h.Company.UpdateCompany)
					})
				}

				if h.Notification != nil {
					pr.Route("/messages", func(er chi.Router) {
						er.Post("/", h.Notification.CreateMessage)
						er.Get("/", h.Notification.ListMessages)
					})
				}
			})
		}
	})
}
