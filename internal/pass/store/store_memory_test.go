package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"campuspass/internal/pass/models"
	id "campuspass/pkg/domain"
	"campuspass/pkg/platform/sentinel"
)

type SubjectStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *SubjectStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestSubjectStoreSuite(t *testing.T) {
	suite.Run(t, new(SubjectStoreSuite))
}

func (s *SubjectStoreSuite) newSubject(campus id.Campus, seq int) *models.Subject {
	return &models.Subject{
		ID:        id.FormatStudentID(campus, seq),
		Campus:    campus,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.ac.uk",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// TestCreationAndLookups verifies the store correctly creates and retrieves subjects.
func (s *SubjectStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds subject by serial", func() {
		subject := s.newSubject(id.CampusLondon, 100001)
		s.Require().NoError(s.store.Create(s.ctx, subject))

		found, err := s.store.FindByID(s.ctx, subject.ID)
		s.Require().NoError(err)
		s.Equal(subject.FirstName, found.FirstName)
	})

	s.Run("returns ErrNotFound for unknown serial", func() {
		_, err := s.store.FindByID(s.ctx, id.StudentID("207999998"))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestSerialUniqueness verifies the uniqueness constraint the allocator leans on.
func (s *SubjectStoreSuite) TestSerialUniqueness() {
	subject := s.newSubject(id.CampusLondon, 100001)
	s.Require().NoError(s.store.Create(s.ctx, subject))

	dup := s.newSubject(id.CampusLondon, 100001)
	err := s.store.Create(s.ctx, dup)
	s.Require().Error(err)
	s.ErrorIs(err, sentinel.ErrConflict)
}

// TestMaxSequence verifies per-campus sequence discovery.
func (s *SubjectStoreSuite) TestMaxSequence() {
	s.Run("returns zero for empty campus", func() {
		max, err := s.store.MaxSequence(s.ctx, id.CampusLondon.Prefix())
		s.Require().NoError(err)
		s.Equal(0, max)
	})

	s.Run("returns greatest sequence for the campus only", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newSubject(id.CampusLondon, 100001)))
		s.Require().NoError(s.store.Create(s.ctx, s.newSubject(id.CampusLondon, 100005)))
		s.Require().NoError(s.store.Create(s.ctx, s.newSubject(id.CampusBristol, 200000)))

		max, err := s.store.MaxSequence(s.ctx, id.CampusLondon.Prefix())
		s.Require().NoError(err)
		s.Equal(100005, max)

		max, err = s.store.MaxSequence(s.ctx, id.CampusBristol.Prefix())
		s.Require().NoError(err)
		s.Equal(200000, max)
	})
}

// TestUpdates verifies pass-field mutations persist and copies do not alias.
func (s *SubjectStoreSuite) TestUpdates() {
	subject := s.newSubject(id.CampusSheffield, 100001)
	s.Require().NoError(s.store.Create(s.ctx, subject))

	s.Run("persists pass issue", func() {
		subject.PassActive = true
		subject.PassActiveAt = time.Now()
		s.Require().NoError(s.store.Update(s.ctx, subject))

		found, err := s.store.FindByID(s.ctx, subject.ID)
		s.Require().NoError(err)
		s.True(found.PassActive)
		s.WithinDuration(subject.PassActiveAt, found.PassActiveAt, time.Second)
	})

	s.Run("rejects update of unknown subject", func() {
		ghost := s.newSubject(id.CampusSheffield, 100200)
		err := s.store.Update(s.ctx, ghost)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned subjects are copies", func() {
		found, err := s.store.FindByID(s.ctx, subject.ID)
		s.Require().NoError(err)
		found.FirstName = "Mallory"

		again, err := s.store.FindByID(s.ctx, subject.ID)
		s.Require().NoError(err)
		s.Equal("Ada", again.FirstName)
	})
}
