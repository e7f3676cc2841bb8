package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

// Handler builds the router with all middleware and routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if s.opts.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{s.opts.AllowedOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{common.AuthorizationHeaderName, "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(limitBody(maxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Server is up!"))
	})
	r.Get("/healthz", s.handleHealth)

	authRoutes := func(r chi.Router) {
		r.Use(s.limiter.Middleware)
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
	}
	r.Route("/auth", authRoutes)
	r.Route("/api/auth", authRoutes)

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(s.verifier))

		r.Route("/user", func(r chi.Router) {
			r.Get("/me", s.handleMe)
			r.Get("/prescriptions", s.handleMyPrescriptions)
		})

		r.Route("/doctor", func(r chi.Router) {
			r.Use(RequireRole(models.RoleDoctor, models.RoleAdmin))
			r.Post("/prescriptions", s.handleIssue)
			r.Post("/prescriptions/{id}/attachment", s.handleAttachmentUpload)
		})

		r.Route("/pharmacy", func(r chi.Router) {
			r.With(RequireRole(models.RolePharmacist, models.RoleDoctor, models.RoleAdmin)).
				Get("/prescriptions/patient/{medTrackId}", s.handlePatientSearch)
			r.With(RequireRole(models.RolePharmacist, models.RoleDoctor, models.RoleAdmin)).
				Get("/prescriptions/{id}/attachment", s.handleAttachmentDownload)
			r.With(RequireRole(models.RolePharmacist, models.RoleAdmin)).
				Post("/dispense/{id}", s.handleDispense)
		})
	})

	return r
}
