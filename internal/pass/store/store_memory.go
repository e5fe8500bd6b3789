package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"campuspass/internal/pass/models"
	id "campuspass/pkg/domain"
	"campuspass/pkg/platform/sentinel"
)

// InMemory stores subjects in memory for tests and development.
type InMemory struct {
	mu       sync.RWMutex
	subjects map[id.StudentID]*models.Subject
}

// NewInMemory constructs an empty in-memory subject store.
func NewInMemory() *InMemory {
	return &InMemory{subjects: make(map[id.StudentID]*models.Subject)}
}

func (s *InMemory) Create(_ context.Context, subject *models.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subjects[subject.ID]; exists {
		return fmt.Errorf("subject %s already exists: %w", subject.ID, sentinel.ErrConflict)
	}
	copied := *subject
	s.subjects[subject.ID] = &copied
	return nil
}

func (s *InMemory) FindByID(_ context.Context, serial id.StudentID) (*models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subject, ok := s.subjects[serial]
	if !ok {
		return nil, fmt.Errorf("subject %s: %w", serial, sentinel.ErrNotFound)
	}
	copied := *subject
	return &copied, nil
}

func (s *InMemory) MaxSequence(_ context.Context, campusPrefix string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	max := 0
	for serial := range s.subjects {
		if !strings.HasPrefix(serial.String(), campusPrefix) {
			continue
		}
		if seq := serial.Sequence(); seq > max {
			max = seq
		}
	}
	return max, nil
}

func (s *InMemory) Update(_ context.Context, subject *models.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subjects[subject.ID]; !exists {
		return fmt.Errorf("subject %s: %w", subject.ID, sentinel.ErrNotFound)
	}
	copied := *subject
	s.subjects[subject.ID] = &copied
	return nil
}
