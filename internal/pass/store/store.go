// Package store persists pass subjects. Implementations come in pairs: an
// in-memory store for unit tests and development, and a Postgres store for
// production.
//
// Error contract, shared by all implementations:
//   - FindByID returns an error wrapping sentinel.ErrNotFound for unknown serials
//   - Create returns an error wrapping sentinel.ErrConflict when the serial is
//     already taken; the uniqueness guarantee lives here, not in callers
//   - infrastructure failures are returned wrapped with context
package store

import (
	"context"

	"campuspass/internal/pass/models"
	id "campuspass/pkg/domain"
)

// SubjectStore persists enrolled-student records.
type SubjectStore interface {
	// Create inserts a new subject. The store enforces serial uniqueness:
	// losing an allocation race surfaces as sentinel.ErrConflict so the
	// allocator can retry with a fresh sequence.
	Create(ctx context.Context, subject *models.Subject) error

	// FindByID loads a subject by serial number.
	FindByID(ctx context.Context, serial id.StudentID) (*models.Subject, error)

	// MaxSequence returns the greatest sequence number already issued for a
	// campus prefix, or 0 when the campus has no subjects yet.
	MaxSequence(ctx context.Context, campusPrefix string) (int, error)

	// Update persists mutated pass fields for an existing subject.
	Update(ctx context.Context, subject *models.Subject) error
}
