// Package httputil centralizes JSON response writing and request decoding for
// HTTP handlers so transport concerns stay out of services.
package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "campuspass/pkg/domain-errors"
)

// errorResponse is the JSON error envelope returned by every endpoint.
type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError translates a domain error into the JSON error envelope.
// Internal errors deliberately omit the description so infrastructure details
// never leak to callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := errorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		resp.Description = dErrors.MessageOf(err)
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), resp)
}

// Validatable is implemented by request payloads that carry their own
// validation rules.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes the request body into T and validates it, writing
// the error response itself on failure. The second return is false when the
// handler should stop.
func DecodeAndPrepare[T Validatable](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed request body"))
		return req, false
	}
	if err := req.Validate(); err != nil {
		logger.WarnContext(ctx, "request validation failed",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, err)
		return req, false
	}
	return req, true
}
