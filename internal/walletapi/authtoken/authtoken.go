// Package authtoken implements the wallet protocol's authorization scheme:
// HMAC-SHA256(secret, serial ":" dayBucket), hex encoded, where dayBucket is
// floor(unix/86400). A token is therefore bound to one pass and one 24-hour
// window, which caps how long a captured token stays useful.
package authtoken

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strconv"
	"strings"
	"time"

	id "campuspass/pkg/domain"
	dErrors "campuspass/pkg/domain-errors"
	"campuspass/pkg/requestcontext"
)

// Scheme is the Authorization header scheme wallet clients present.
const Scheme = "PassAuth"

const secondsPerDay = 86400

// Compute derives the valid token for a serial at a point in time.
func Compute(secret []byte, serial id.StudentID, at time.Time) string {
	bucket := at.Unix() / secondsPerDay
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(serial.String() + ":" + strconv.FormatInt(bucket, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// FromHeader extracts the token from an Authorization header value. The
// second return is false when the header is absent or carries a different
// scheme.
func FromHeader(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, Scheme+" ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// Verifier checks presented tokens against the server secret.
type Verifier struct {
	secret []byte
	// permissive downgrades a failed check to a warning so conformance
	// tests can run against clients that do not send credentials yet.
	// Never the default; production deployments always run strict.
	permissive bool
	logger     *slog.Logger
}

// NewVerifier builds a verifier for the given server secret.
func NewVerifier(secret string, permissive bool, logger *slog.Logger) *Verifier {
	return &Verifier{
		secret:     []byte(secret),
		permissive: permissive,
		logger:     logger,
	}
}

// Verify checks the Authorization header for a serial. In strict mode a
// missing or mismatched token fails with an unauthorized error; in
// permissive mode the failure is logged and the request proceeds.
func (v *Verifier) Verify(ctx context.Context, serial id.StudentID, header string) error {
	presented, ok := FromHeader(header)
	if ok {
		expected := Compute(v.secret, serial, requestcontext.Now(ctx))
		if hmac.Equal([]byte(expected), []byte(presented)) {
			return nil
		}
	}

	if v.permissive {
		v.logger.WarnContext(ctx, "pass auth check failed, permissive mode lets request proceed",
			"request_id", requestcontext.RequestID(ctx),
			"serial_number", serial,
			"header_present", header != "",
		)
		return nil
	}
	return dErrors.New(dErrors.CodeUnauthorized, "invalid authorization token")
}
