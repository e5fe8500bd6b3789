package enrollment

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"campuspass/internal/events"
	eventstore "campuspass/internal/events/store"
	"campuspass/internal/pass/models"
	"campuspass/internal/pass/store"
	id "campuspass/pkg/domain"
	dErrors "campuspass/pkg/domain-errors"
	"campuspass/pkg/platform/sentinel"
	"campuspass/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	subjects *store.InMemory
	sink     *eventstore.InMemory
	service  *Service
	ctx      context.Context
}

func (s *ServiceSuite) SetupTest() {
	s.subjects = store.NewInMemory()
	s.sink = eventstore.NewInMemory()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	publisher := events.NewPublisher(s.sink, logger)
	s.service = New(s.subjects, publisher, logger, nil, "pass.ac.campus.student")
	s.ctx = context.Background()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) enrollReq(campus id.Campus) EnrollRequest {
	return EnrollRequest{
		Campus:    campus,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.ac.uk",
		Programme: "Mathematics",
	}
}

// TestFirstAllocationStartsAtFloor verifies an empty campus starts at 100001.
func (s *ServiceSuite) TestFirstAllocationStartsAtFloor() {
	subject, err := s.service.Enroll(s.ctx, s.enrollReq(id.CampusLondon))
	s.Require().NoError(err)
	s.Equal(id.StudentID("207100001"), subject.ID)
	s.Equal(id.SequenceFloor, subject.ID.Sequence())
}

// TestSequentialAllocation verifies IDs increment without gaps.
func (s *ServiceSuite) TestSequentialAllocation() {
	first, err := s.service.Enroll(s.ctx, s.enrollReq(id.CampusLondon))
	s.Require().NoError(err)
	second, err := s.service.Enroll(s.ctx, s.enrollReq(id.CampusLondon))
	s.Require().NoError(err)

	s.Equal(first.ID.Sequence()+1, second.ID.Sequence())
}

// TestCampusesAllocateIndependently verifies sequences never cross campuses.
func (s *ServiceSuite) TestCampusesAllocateIndependently() {
	london, err := s.service.Enroll(s.ctx, s.enrollReq(id.CampusLondon))
	s.Require().NoError(err)
	bristol, err := s.service.Enroll(s.ctx, s.enrollReq(id.CampusBristol))
	s.Require().NoError(err)

	s.Equal(id.StudentID("207100001"), london.ID)
	s.Equal(id.StudentID("117100001"), bristol.ID)
}

// TestInvalidCampusRejected verifies allocation fails fast on bad campuses.
func (s *ServiceSuite) TestInvalidCampusRejected() {
	_, err := s.service.Enroll(s.ctx, s.enrollReq(id.Campus("atlantis")))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

// TestConcurrentAllocationsAreUnique verifies K parallel enrollments yield K
// distinct contiguous serials.
func (s *ServiceSuite) TestConcurrentAllocationsAreUnique() {
	const k = 16

	var wg sync.WaitGroup
	results := make(chan id.StudentID, k)
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			subject, err := s.service.Enroll(s.ctx, s.enrollReq(id.CampusSheffield))
			if err == nil {
				results <- subject.ID
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := map[id.StudentID]bool{}
	for serial := range results {
		s.False(seen[serial], "duplicate serial %s", serial)
		seen[serial] = true
	}
	s.Require().Len(seen, k, "every concurrent enrollment must succeed")

	// Sequences must be exactly {floor, ..., floor+k-1}: no gaps, no wrap.
	for seq := id.SequenceFloor; seq < id.SequenceFloor+k; seq++ {
		s.True(seen[id.FormatStudentID(id.CampusSheffield, seq)], "missing sequence %d", seq)
	}
}

// TestCapacityBoundary verifies allocation fails terminally at the cap and
// creates no row.
func (s *ServiceSuite) TestCapacityBoundary() {
	last := &models.Subject{
		ID:        id.FormatStudentID(id.CampusBirmingham, id.SequenceCap),
		Campus:    id.CampusBirmingham,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.Require().NoError(s.subjects.Create(s.ctx, last))

	_, err := s.service.Enroll(s.ctx, s.enrollReq(id.CampusBirmingham))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeCapacity))

	// No new row beyond the cap, and other campuses are unaffected.
	max, err := s.subjects.MaxSequence(s.ctx, id.CampusBirmingham.Prefix())
	s.Require().NoError(err)
	s.Equal(id.SequenceCap, max)

	_, err = s.service.Enroll(s.ctx, s.enrollReq(id.CampusLondon))
	s.Require().NoError(err)
}

// TestRetryBudgetExhaustion verifies persistent conflicts surface as a
// retryable transient failure.
func (s *ServiceSuite) TestRetryBudgetExhaustion() {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	publisher := events.NewPublisher(eventstore.NewInMemory(), logger)
	service := New(&alwaysConflictStore{}, publisher, logger, nil, "pass.ac.campus.student")

	_, err := service.Enroll(s.ctx, s.enrollReq(id.CampusLondon))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTransient))
}

func (s *ServiceSuite) TestIssuePass() {
	subject, err := s.service.Enroll(s.ctx, s.enrollReq(id.CampusLondon))
	s.Require().NoError(err)

	issuedAt := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(s.ctx, issuedAt)

	s.Run("activates pass and stamps last-modified", func() {
		issued, err := s.service.IssuePass(ctx, subject.ID)
		s.Require().NoError(err)
		s.True(issued.PassActive)
		s.Equal(issuedAt, issued.PassActiveAt)
		s.Equal(issuedAt, issued.LastModified())
		s.Contains(issued.PassArtifactURL, subject.ID.String())
	})

	s.Run("emits a pass.issued event", func() {
		emitted := s.sink.Events()
		s.Require().NotEmpty(emitted)
		last := emitted[len(emitted)-1]
		s.Equal(events.TypePassIssued, last.Type)
		s.Equal(subject.ID, last.Serial)
	})

	s.Run("unknown serial returns not found", func() {
		_, err := s.service.IssuePass(ctx, id.StudentID("207999998"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// alwaysConflictStore simulates a store where every create loses the race.
type alwaysConflictStore struct{}

func (s *alwaysConflictStore) Create(context.Context, *models.Subject) error {
	return fmt.Errorf("duplicate: %w", sentinel.ErrConflict)
}

func (s *alwaysConflictStore) FindByID(_ context.Context, serial id.StudentID) (*models.Subject, error) {
	return nil, fmt.Errorf("subject %s: %w", serial, sentinel.ErrNotFound)
}

func (s *alwaysConflictStore) MaxSequence(context.Context, string) (int, error) {
	return 0, nil
}

func (s *alwaysConflictStore) Update(context.Context, *models.Subject) error {
	return fmt.Errorf("subject: %w", sentinel.ErrNotFound)
}
