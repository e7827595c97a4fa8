package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	mw "github.com/kiranshivaraju/listingshield/internal/api/middleware"
	"github.com/kiranshivaraju/listingshield/internal/api/response"
	"github.com/kiranshivaraju/listingshield/pkg/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth        *mw.Auth
	RateLimit   *mw.RateLimit
	CORSOrigins []string

	HealthHandler     http.HandlerFunc
	ComplianceCheck   http.HandlerFunc
	StartJobHandler   http.HandlerFunc
	ListJobsHandler   http.HandlerFunc
	LatestJobHandler  http.HandlerFunc
	GetJobHandler     http.HandlerFunc
	CacheStatsHandler http.HandlerFunc
	CacheCleanup      http.HandlerFunc
	CacheClear        http.HandlerFunc

	GetUserProfile http.HandlerFunc
	MakeAdmin      http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)

	// Public endpoints
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Handle("/metrics", promhttp.Handler())

	// Function endpoints authenticate themselves so each gate can report
	// its own failure.
	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: deps.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
			MaxAge:         300,
		}))

		r.HandleFunc(mw.FunctionsPrefix+"get-user-profile", orNotImplemented(deps.GetUserProfile))
		r.HandleFunc(mw.FunctionsPrefix+"make-admin", orNotImplemented(deps.MakeAdmin))
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/compliance/check", orNotImplemented(deps.ComplianceCheck))

		r.Post("/api/v1/policy-jobs", orNotImplemented(deps.StartJobHandler))
		r.Get("/api/v1/policy-jobs", orNotImplemented(deps.ListJobsHandler))
		r.Get("/api/v1/policy-jobs/latest", orNotImplemented(deps.LatestJobHandler))
		r.Get("/api/v1/policy-jobs/{jobID}", orNotImplemented(deps.GetJobHandler))

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireRole(models.RoleAdmin))

			r.Get("/api/v1/admin/cache/stats", orNotImplemented(deps.CacheStatsHandler))
			r.Post("/api/v1/admin/cache/cleanup", orNotImplemented(deps.CacheCleanup))
			r.Delete("/api/v1/admin/cache", orNotImplemented(deps.CacheClear))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
