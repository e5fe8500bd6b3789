// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// This package defines context keys and getter/setter functions for values that are
// typically set by middleware but consumed by services. By keeping this package free
// of net/http dependencies, services can import only what they need without pulling
// in HTTP-related code.
//
// Usage in services (read values):
//
//	deviceID := requestcontext.DeviceID(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	deviceIDKey    struct{}
	serialKey      struct{}
	staffIDKey     struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyDeviceID    = deviceIDKey{}
	ContextKeySerial      = serialKey{}
	ContextKeyStaffID     = staffIDKey{}
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyUserAgent   = userAgentKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// -----------------------------------------------------------------------------
// Device and pass context
// -----------------------------------------------------------------------------

// DeviceID retrieves the wallet device library identifier from the context.
func DeviceID(ctx context.Context) string {
	if deviceID, ok := ctx.Value(ContextKeyDeviceID).(string); ok {
		return deviceID
	}
	return ""
}

// WithDeviceID injects a device identifier into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, ContextKeyDeviceID, deviceID)
}

// Serial retrieves the pass serial number the request targets, if any.
// The registration transaction layer uses it to scope locking per serial.
func Serial(ctx context.Context) string {
	if serial, ok := ctx.Value(ContextKeySerial).(string); ok {
		return serial
	}
	return ""
}

// WithSerial injects a pass serial number into a context.
func WithSerial(ctx context.Context, serial string) context.Context {
	return context.WithValue(ctx, ContextKeySerial, serial)
}

// -----------------------------------------------------------------------------
// Staff context (admin enrollment endpoints)
// -----------------------------------------------------------------------------

// StaffID retrieves the authenticated staff member ID from the context.
func StaffID(ctx context.Context) string {
	if staffID, ok := ctx.Value(ContextKeyStaffID).(string); ok {
		return staffID
	}
	return ""
}

// WithStaffID injects a staff member ID into the context.
func WithStaffID(ctx context.Context, staffID string) context.Context {
	return context.WithValue(ctx, ContextKeyStaffID, staffID)
}

// -----------------------------------------------------------------------------
// Client metadata (IP, User-Agent)
// -----------------------------------------------------------------------------

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	ctx = context.WithValue(ctx, ContextKeyUserAgent, userAgent)
	return ctx
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Useful for:
//   - Service unit tests that don't run the full HTTP middleware chain
//   - Workers that need consistent time within a batch operation
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
