// Package store persists pass registration rows.
//
// Error contract:
//   - Get and Delete return sentinel.ErrNotFound when no row matches.
//   - Create returns sentinel.ErrConflict when a row for the same
//     (deviceID, serial) pair already exists.
//   - Update addresses the row by its previous deviceID so a consolidation
//     can repoint the row at a new device in one call; it returns
//     sentinel.ErrNotFound when the addressed row does not exist.
//
// List methods return empty slices, not errors, when nothing matches.
package store

import (
	"context"

	"campuspass/internal/registration/models"
	id "campuspass/pkg/domain"
)

// Store is the persistence boundary for the registration directory.
type Store interface {
	Get(ctx context.Context, deviceID string, serial id.StudentID) (*models.Registration, error)
	ListBySerial(ctx context.Context, serial id.StudentID) ([]models.Registration, error)
	ListByDevice(ctx context.Context, deviceID string) ([]models.Registration, error)
	Create(ctx context.Context, reg models.Registration) error
	Update(ctx context.Context, prevDeviceID string, reg models.Registration) error
	Delete(ctx context.Context, deviceID string, serial id.StudentID) error
}
