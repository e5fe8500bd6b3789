// Package events defines the pass-update event feed. Every successful
// registration change and pass (re)issue produces one event; the external
// push-delivery system consumes the feed to decide which devices to poke.
// Delivering pushes is explicitly not this service's job.
package events

import (
	"time"

	"github.com/google/uuid"

	id "campuspass/pkg/domain"
)

// Type classifies a pass-update event.
type Type string

const (
	TypePassIssued         Type = "pass.issued"
	TypeDeviceRegistered   Type = "device.registered"
	TypeDeviceUnregistered Type = "device.unregistered"
)

// Event is one entry in the pass-update feed.
type Event struct {
	ID         uuid.UUID    `json:"id"`
	Type       Type         `json:"type"`
	Serial     id.StudentID `json:"serialNumber"`
	DeviceID   string       `json:"deviceLibraryIdentifier,omitempty"`
	OccurredAt time.Time    `json:"occurredAt"`
}
