package models

import (
	"time"

	id "campuspass/pkg/domain"
)

// Subject is the enrolled-student record a pass is bound to. Created at
// enrollment, mutated when a pass is (re)issued, never deleted while the
// student stays enrolled.
type Subject struct {
	// ID doubles as the pass serial number. Immutable once assigned.
	ID     id.StudentID
	Campus id.Campus

	FirstName string
	LastName  string
	Email     string
	Programme string

	// PhotoURL points at the student photo asset the builder embeds.
	PhotoURL string

	PassActive bool
	// PassActiveAt is stamped on every (re)issue and serves as the pass's
	// last-modified value for conditional fetches.
	PassActiveAt    time.Time
	PassArtifactURL string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LastModified returns the timestamp conditional fetches compare against:
// the latest issue time, falling back to enrollment time before first issue.
func (s *Subject) LastModified() time.Time {
	if !s.PassActiveAt.IsZero() {
		return s.PassActiveAt
	}
	return s.CreatedAt
}
