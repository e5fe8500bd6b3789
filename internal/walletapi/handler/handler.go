// Package handler exposes the wallet update protocol: the five endpoints a
// wallet client uses to register a device for pass updates, poll for changed
// serials, and fetch pass artifacts with conditional-GET semantics.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"campuspass/internal/pass/models"
	"campuspass/internal/registration"
	"campuspass/internal/walletapi/authtoken"
	"campuspass/internal/walletapi/metrics"
	id "campuspass/pkg/domain"
	dErrors "campuspass/pkg/domain-errors"
	"campuspass/pkg/platform/httputil"
	"campuspass/pkg/requestcontext"
)

// Directory is the registration directory surface the protocol delegates to.
type Directory interface {
	Register(ctx context.Context, deviceID string, serial id.StudentID, pushToken string) (*registration.RegisterResult, error)
	ListSerials(ctx context.Context, deviceID string, updatedSince string) ([]id.StudentID, time.Time, error)
	HasRegistration(ctx context.Context, deviceID string, serial id.StudentID) (bool, error)
	Unregister(ctx context.Context, deviceID string, serial id.StudentID) error
}

// PassProvider looks up the subject behind a serial.
type PassProvider interface {
	GetSubject(ctx context.Context, serial id.StudentID) (*models.Subject, error)
}

// Builder produces the signed artifact served by the fetch endpoint.
type Builder interface {
	Build(ctx context.Context, subject models.Subject) ([]byte, error)
}

// Handler wires the wallet protocol endpoints to the directory and builder.
type Handler struct {
	directory   Directory
	passes      PassProvider
	builder     Builder
	verifier    *authtoken.Verifier
	passTypeID  string
	contentType string
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// New constructs a wallet protocol handler.
func New(
	directory Directory,
	passes PassProvider,
	builder Builder,
	verifier *authtoken.Verifier,
	passTypeID, contentType string,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Handler {
	return &Handler{
		directory:   directory,
		passes:      passes,
		builder:     builder,
		verifier:    verifier,
		passTypeID:  passTypeID,
		contentType: contentType,
		logger:      logger,
		metrics:     m,
	}
}

// Register mounts the protocol endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/devices/{deviceId}/registrations/{passTypeId}/{serial}", h.HandleRegisterDevice)
	r.Get("/devices/{deviceId}/registrations/{passTypeId}", h.HandleListUpdatedSerials)
	r.Get("/devices/{deviceId}/registrations/{passTypeId}/{serial}", h.HandleGetRegistration)
	r.Delete("/devices/{deviceId}/registrations/{passTypeId}/{serial}", h.HandleUnregisterDevice)
	r.Get("/passes/{passTypeId}/{serial}", h.HandleGetPass)
}

// pathParams validates the passTypeId and serial URL segments shared by the
// serial-scoped endpoints. An unknown pass type or malformed serial is
// indistinguishable from a missing pass.
func (h *Handler) pathParams(r *http.Request) (id.StudentID, error) {
	if chi.URLParam(r, "passTypeId") != h.passTypeID {
		return "", dErrors.New(dErrors.CodeNotFound, "pass not found")
	}
	serial, err := id.ParseStudentID(chi.URLParam(r, "serial"))
	if err != nil {
		return "", dErrors.New(dErrors.CodeNotFound, "pass not found")
	}
	return serial, nil
}

// authorize runs the pass auth check and writes the 401 itself on failure.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, serial id.StudentID, endpoint string) bool {
	ctx := r.Context()
	if err := h.verifier.Verify(ctx, serial, r.Header.Get("Authorization")); err != nil {
		h.metrics.RecordAuthRejection()
		h.metrics.RecordRequest(endpoint, http.StatusUnauthorized)
		h.logger.WarnContext(ctx, "pass auth rejected",
			"request_id", requestcontext.RequestID(ctx),
			"serial_number", serial,
			"endpoint", endpoint,
		)
		httputil.WriteError(w, err)
		return false
	}
	return true
}

// HandleRegisterDevice handles POST /devices/{deviceId}/registrations/{passTypeId}/{serial}.
func (h *Handler) HandleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	const endpoint = "register"
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	deviceID := chi.URLParam(r, "deviceId")

	serial, err := h.pathParams(r)
	if err != nil {
		h.metrics.RecordRequest(endpoint, http.StatusNotFound)
		httputil.WriteError(w, err)
		return
	}
	if !h.authorize(w, r, serial, endpoint) {
		return
	}

	req, ok := httputil.DecodeAndPrepare[RegisterDeviceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		h.metrics.RecordRequest(endpoint, http.StatusBadRequest)
		return
	}

	result, err := h.directory.Register(ctx, deviceID, serial, req.PushToken)
	if err != nil {
		h.metrics.RecordRequest(endpoint, dErrors.ToHTTPStatus(dErrors.CodeOf(err)))
		h.logger.ErrorContext(ctx, "device registration failed",
			"request_id", requestID,
			"device_id", deviceID,
			"serial_number", serial,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	h.metrics.RecordRequest(endpoint, status)
	w.WriteHeader(status)
}

// HandleListUpdatedSerials handles GET /devices/{deviceId}/registrations/{passTypeId}.
func (h *Handler) HandleListUpdatedSerials(w http.ResponseWriter, r *http.Request) {
	const endpoint = "list_serials"
	ctx := r.Context()
	deviceID := chi.URLParam(r, "deviceId")

	if chi.URLParam(r, "passTypeId") != h.passTypeID {
		h.metrics.RecordRequest(endpoint, http.StatusNotFound)
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "pass type not found"))
		return
	}

	serials, lastUpdated, err := h.directory.ListSerials(ctx, deviceID, r.URL.Query().Get("passesUpdatedSince"))
	if err != nil {
		h.metrics.RecordRequest(endpoint, dErrors.ToHTTPStatus(dErrors.CodeOf(err)))
		h.logger.ErrorContext(ctx, "serial listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"device_id", deviceID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.metrics.RecordRequest(endpoint, http.StatusOK)
	httputil.WriteJSON(w, http.StatusOK, serialsResponse(serials, lastUpdated))
}

// HandleGetRegistration handles GET /devices/{deviceId}/registrations/{passTypeId}/{serial}.
func (h *Handler) HandleGetRegistration(w http.ResponseWriter, r *http.Request) {
	const endpoint = "get_registration"
	ctx := r.Context()
	deviceID := chi.URLParam(r, "deviceId")

	serial, err := h.pathParams(r)
	if err != nil {
		h.metrics.RecordRequest(endpoint, http.StatusNotFound)
		httputil.WriteError(w, err)
		return
	}
	if !h.authorize(w, r, serial, endpoint) {
		return
	}

	registered, err := h.directory.HasRegistration(ctx, deviceID, serial)
	if err != nil {
		h.metrics.RecordRequest(endpoint, dErrors.ToHTTPStatus(dErrors.CodeOf(err)))
		httputil.WriteError(w, err)
		return
	}
	if !registered {
		h.metrics.RecordRequest(endpoint, http.StatusNotFound)
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "registration not found"))
		return
	}

	h.metrics.RecordRequest(endpoint, http.StatusOK)
	w.WriteHeader(http.StatusOK)
}

// HandleUnregisterDevice handles DELETE /devices/{deviceId}/registrations/{passTypeId}/{serial}.
func (h *Handler) HandleUnregisterDevice(w http.ResponseWriter, r *http.Request) {
	const endpoint = "unregister"
	ctx := r.Context()
	deviceID := chi.URLParam(r, "deviceId")

	serial, err := h.pathParams(r)
	if err != nil {
		h.metrics.RecordRequest(endpoint, http.StatusNotFound)
		httputil.WriteError(w, err)
		return
	}
	if !h.authorize(w, r, serial, endpoint) {
		return
	}

	if err := h.directory.Unregister(ctx, deviceID, serial); err != nil {
		h.metrics.RecordRequest(endpoint, dErrors.ToHTTPStatus(dErrors.CodeOf(err)))
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "device unregistration failed",
				"request_id", requestcontext.RequestID(ctx),
				"device_id", deviceID,
				"serial_number", serial,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.metrics.RecordRequest(endpoint, http.StatusOK)
	w.WriteHeader(http.StatusOK)
}

// HandleGetPass handles GET /passes/{passTypeId}/{serial}.
func (h *Handler) HandleGetPass(w http.ResponseWriter, r *http.Request) {
	const endpoint = "get_pass"
	ctx := r.Context()

	serial, err := h.pathParams(r)
	if err != nil {
		h.metrics.RecordRequest(endpoint, http.StatusNotFound)
		httputil.WriteError(w, err)
		return
	}
	if !h.authorize(w, r, serial, endpoint) {
		return
	}

	subject, err := h.passes.GetSubject(ctx, serial)
	if err != nil {
		h.metrics.RecordRequest(endpoint, dErrors.ToHTTPStatus(dErrors.CodeOf(err)))
		httputil.WriteError(w, err)
		return
	}

	// HTTP dates carry second precision, so the stored timestamp is
	// truncated before the comparison.
	lastModified := subject.LastModified().Truncate(time.Second)
	if raw := r.Header.Get("If-Modified-Since"); raw != "" {
		if since, err := http.ParseTime(raw); err == nil && !lastModified.After(since) {
			h.metrics.RecordRequest(endpoint, http.StatusNotModified)
			h.metrics.RecordNotModified()
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	artifact, err := h.builder.Build(ctx, *subject)
	if err != nil {
		h.metrics.RecordRequest(endpoint, dErrors.ToHTTPStatus(dErrors.CodeOf(err)))
		h.logger.ErrorContext(ctx, "pass build failed",
			"request_id", requestcontext.RequestID(ctx),
			"serial_number", serial,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.metrics.RecordRequest(endpoint, http.StatusOK)
	w.Header().Set("Content-Type", h.contentType)
	w.Header().Set("Last-Modified", lastModified.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact)
}
