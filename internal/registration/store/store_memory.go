package store

import (
	"context"
	"sync"

	"campuspass/internal/registration/models"
	id "campuspass/pkg/domain"
	"campuspass/pkg/platform/sentinel"
)

type regKey struct {
	deviceID string
	serial   id.StudentID
}

// InMemory is a map-backed Store for tests and development.
type InMemory struct {
	mu   sync.RWMutex
	rows map[regKey]models.Registration
}

// NewInMemory returns an empty in-memory registration store.
func NewInMemory() *InMemory {
	return &InMemory{rows: make(map[regKey]models.Registration)}
}

func (s *InMemory) Get(_ context.Context, deviceID string, serial id.StudentID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[regKey{deviceID: deviceID, serial: serial}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := copyRegistration(row)
	return &copied, nil
}

func (s *InMemory) ListBySerial(_ context.Context, serial id.StudentID) ([]models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]models.Registration, 0, 1)
	for key, row := range s.rows {
		if key.serial == serial {
			rows = append(rows, copyRegistration(row))
		}
	}
	return rows, nil
}

func (s *InMemory) ListByDevice(_ context.Context, deviceID string) ([]models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]models.Registration, 0, 1)
	for key, row := range s.rows {
		if key.deviceID == deviceID {
			rows = append(rows, copyRegistration(row))
		}
	}
	return rows, nil
}

func (s *InMemory) Create(_ context.Context, reg models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := regKey{deviceID: reg.DeviceID, serial: reg.Serial}
	if _, exists := s.rows[key]; exists {
		return sentinel.ErrConflict
	}
	s.rows[key] = copyRegistration(reg)
	return nil
}

func (s *InMemory) Update(_ context.Context, prevDeviceID string, reg models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevKey := regKey{deviceID: prevDeviceID, serial: reg.Serial}
	if _, exists := s.rows[prevKey]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.rows, prevKey)
	s.rows[regKey{deviceID: reg.DeviceID, serial: reg.Serial}] = copyRegistration(reg)
	return nil
}

func (s *InMemory) Delete(_ context.Context, deviceID string, serial id.StudentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := regKey{deviceID: deviceID, serial: serial}
	if _, exists := s.rows[key]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.rows, key)
	return nil
}

// copyRegistration isolates callers from the map-backed rows; the token's
// device map is the only reference field.
func copyRegistration(row models.Registration) models.Registration {
	copied := row
	if row.Token.Devices != nil {
		devices := make(map[string]string, len(row.Token.Devices))
		for device, push := range row.Token.Devices {
			devices[device] = push
		}
		copied.Token.Devices = devices
	}
	return copied
}
