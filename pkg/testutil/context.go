package testutil

import (
	"net/http"
	"time"

	"campuspass/pkg/requestcontext"
)

// WithRequestTime pins the request-scoped clock on a test request, the same
// way the request-time middleware would for a live one.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// WithStaffID marks a test request as authenticated staff.
// This simulates what the staff-auth middleware would do after verifying a JWT.
func WithStaffID(req *http.Request, staffID string) *http.Request {
	return req.WithContext(requestcontext.WithStaffID(req.Context(), staffID))
}

// WithRequestID stamps a request ID on a test request.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
