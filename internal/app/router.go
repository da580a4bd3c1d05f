package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stockbook-app/stockbook/internal/auth"
	"github.com/stockbook-app/stockbook/internal/observability"
	"github.com/stockbook-app/stockbook/internal/perms"
	"github.com/stockbook-app/stockbook/internal/products"
	"github.com/stockbook-app/stockbook/internal/shared"
	"github.com/stockbook-app/stockbook/internal/users"
	"github.com/stockbook-app/stockbook/jobs"
	"github.com/stockbook-app/stockbook/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SessionManager  *shared.SessionManager
	CSRFManager     *shared.CSRFManager
	AuthHandler     *auth.Handler
	ProductsHandler *products.Handler
	UsersHandler    *users.Handler
	ReportHandler   *report.Handler
	JobHandler      *jobs.Handler
	PermsMiddleware perms.Middleware
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with Stockbook defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Everything below requires an authenticated, non-blocked session.
	r.Group(func(r chi.Router) {
		r.Use(params.PermsMiddleware.RequireUser)

		r.Route("/products", params.ProductsHandler.MountRoutes)

		if params.ReportHandler != nil {
			r.Route("/report", params.ReportHandler.MountRoutes)
		}

		r.Group(func(r chi.Router) {
			r.Use(params.PermsMiddleware.RequireAdmin)
			r.Route("/users", params.UsersHandler.MountRoutes)
			if params.JobHandler != nil {
				r.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
