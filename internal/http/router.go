// Package httpapi composes the service's HTTP surface: the wallet update
// protocol under /v1, the staff enrollment API under /admin/v1, and the
// operational endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campuspass/internal/platform/middleware"
	"campuspass/pkg/platform/httputil"
	"campuspass/pkg/platform/middleware/metadata"
	"campuspass/pkg/platform/middleware/requestid"
	"campuspass/pkg/platform/middleware/requesttime"
)

// Registrar mounts a feature's endpoints on a router subtree.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck probes one dependency; the name labels it in the health body.
type HealthCheck struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Deps carries everything the router composes.
type Deps struct {
	Wallet       Registrar
	Admin        Registrar
	StaffAuth    middleware.JWTValidator
	Logger       *slog.Logger
	HealthChecks []HealthCheck
}

// NewRouter builds the full request routing tree.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", handleHealth(deps.HealthChecks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		deps.Wallet.Register(r)
	})

	r.Route("/admin/v1", func(r chi.Router) {
		r.Use(middleware.RequireStaffAuth(deps.StaffAuth, deps.Logger))
		deps.Admin.Register(r)
	})

	return r
}

func handleHealth(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for _, check := range checks {
			if err := check.Probe(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[check.Name] = err.Error()
				continue
			}
			body[check.Name] = "ok"
		}
		httputil.WriteJSON(w, status, body)
	}
}
