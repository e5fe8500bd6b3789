package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"campuspass/internal/enrollment"
	"campuspass/internal/pass/models"
	id "campuspass/pkg/domain"
	dErrors "campuspass/pkg/domain-errors"
	"campuspass/pkg/platform/httputil"
	"campuspass/pkg/requestcontext"
)

// Service defines the interface for enrollment operations.
type Service interface {
	Enroll(ctx context.Context, req enrollment.EnrollRequest) (*models.Subject, error)
	IssuePass(ctx context.Context, serial id.StudentID) (*models.Subject, error)
	GetSubject(ctx context.Context, serial id.StudentID) (*models.Subject, error)
}

// Handler wires the staff enrollment endpoints to the enrollment service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an enrollment handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts enrollment endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/subjects", h.HandleEnroll)
	r.Get("/subjects/{serial}", h.HandleGetSubject)
	r.Post("/subjects/{serial}/pass", h.HandleIssuePass)
}

// HandleEnroll handles POST /subjects requests.
func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EnrollRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	subject, err := h.service.Enroll(ctx, enrollment.EnrollRequest{
		Campus:    req.ParsedCampus(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Programme: req.Programme,
		PhotoURL:  req.PhotoURL,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "enrollment failed",
			"request_id", requestID,
			"campus", req.Campus,
			"staff_id", requestcontext.StaffID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "subject enrolled",
		"request_id", requestID,
		"campus", req.Campus,
		"serial_number", subject.ID,
		"staff_id", requestcontext.StaffID(ctx),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusCreated, subjectResponse(*subject))
}

// HandleGetSubject handles GET /subjects/{serial} requests.
func (h *Handler) HandleGetSubject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	serial, err := id.ParseStudentID(chi.URLParam(r, "serial"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "subject not found"))
		return
	}

	subject, err := h.service.GetSubject(ctx, serial)
	if err != nil {
		h.logger.ErrorContext(ctx, "subject lookup failed",
			"request_id", requestID,
			"serial_number", serial,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, subjectResponse(*subject))
}

// HandleIssuePass handles POST /subjects/{serial}/pass requests.
func (h *Handler) HandleIssuePass(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	serial, err := id.ParseStudentID(chi.URLParam(r, "serial"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "pass not found"))
		return
	}

	subject, err := h.service.IssuePass(ctx, serial)
	if err != nil {
		h.logger.ErrorContext(ctx, "pass issuance failed",
			"request_id", requestID,
			"serial_number", serial,
			"staff_id", requestcontext.StaffID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "pass issued",
		"request_id", requestID,
		"serial_number", serial,
		"staff_id", requestcontext.StaffID(ctx),
	)

	httputil.WriteJSON(w, http.StatusOK, subjectResponse(*subject))
}
