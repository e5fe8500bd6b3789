// Package requestid assigns each request an ID used to correlate log lines.
// Inbound X-Request-ID headers are honored so IDs survive proxy hops.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"campuspass/pkg/requestcontext"
)

const headerName = "X-Request-ID"

// Middleware stores a request ID in the context and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerName)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(headerName, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
