package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuspass/internal/platform/middleware"
)

type nopRegistrar struct{}

func (nopRegistrar) Register(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

type denyAllValidator struct{}

func (denyAllValidator) ValidateToken(string) (*middleware.JWTClaims, error) {
	return nil, errors.New("invalid token")
}

func newTestRouter(checks []HealthCheck) http.Handler {
	return NewRouter(Deps{
		Wallet:       nopRegistrar{},
		Admin:        nopRegistrar{},
		StaffAuth:    denyAllValidator{},
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		HealthChecks: checks,
	})
}

func TestHealthz(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		router := newTestRouter([]HealthCheck{
			{Name: "postgres", Probe: func(context.Context) error { return nil }},
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"postgres":"ok"`)
	})

	t.Run("degraded", func(t *testing.T) {
		router := newTestRouter([]HealthCheck{
			{Name: "postgres", Probe: func(context.Context) error { return errors.New("connection refused") }},
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	})
}

func TestAdminRequiresStaffAuth(t *testing.T) {
	router := newTestRouter(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/v1/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWalletRoutesAreOpen(t *testing.T) {
	router := newTestRouter(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	router := newTestRouter(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
