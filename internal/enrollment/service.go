// Package enrollment allocates campus-prefixed student IDs and manages pass
// issuance for enrolled subjects.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"campuspass/internal/enrollment/metrics"
	"campuspass/internal/events"
	"campuspass/internal/pass/models"
	"campuspass/internal/pass/store"
	id "campuspass/pkg/domain"
	dErrors "campuspass/pkg/domain-errors"
	"campuspass/pkg/platform/sentinel"
	"campuspass/pkg/requestcontext"
)

// allocationAttempts bounds the read-increment-create retry loop. Losing the
// race this many times in a row means unusual contention; the whole enrollment
// request is safe to re-issue, so we surface a retryable error instead of
// spinning.
const allocationAttempts = 3

// EnrollRequest carries the subject fields captured at enrollment time.
type EnrollRequest struct {
	Campus    id.Campus
	FirstName string
	LastName  string
	Email     string
	Programme string
	PhotoURL  string
}

// Service implements enrollment and pass issuance.
type Service struct {
	subjects   store.SubjectStore
	events     *events.Publisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
	passTypeID string

	// campusLocks serializes in-process allocations per campus without
	// serializing across campuses. Cross-process races are still caught by
	// the store's uniqueness constraint; this only keeps local contention
	// from burning the retry budget.
	campusLocks map[id.Campus]*sync.Mutex
}

// New constructs the enrollment service.
func New(subjects store.SubjectStore, publisher *events.Publisher, logger *slog.Logger, m *metrics.Metrics, passTypeID string) *Service {
	locks := make(map[id.Campus]*sync.Mutex)
	for _, campus := range []id.Campus{id.CampusLondon, id.CampusBristol, id.CampusSheffield, id.CampusBirmingham} {
		locks[campus] = &sync.Mutex{}
	}
	return &Service{
		subjects:    subjects,
		events:      publisher,
		logger:      logger,
		metrics:     m,
		passTypeID:  passTypeID,
		campusLocks: locks,
	}
}

// Enroll allocates the next free StudentID for the campus and creates the
// subject row. The store's uniqueness constraint is the real guard against
// concurrent allocations observing the same "last issued" value: losing the
// race surfaces as a conflict and the whole sequence re-runs.
//
// Errors: CodeInvalidInput for an unknown campus, CodeCapacity when the campus
// sequence space is exhausted (terminal, never rolls over to another campus),
// CodeTransient after the retry budget is spent (the caller may re-issue the
// whole enrollment request).
func (s *Service) Enroll(ctx context.Context, req EnrollRequest) (*models.Subject, error) {
	if !req.Campus.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid campus")
	}

	now := requestcontext.Now(ctx)
	prefix := req.Campus.Prefix()

	lock := s.campusLocks[req.Campus]
	lock.Lock()
	defer lock.Unlock()

	for attempt := 1; attempt <= allocationAttempts; attempt++ {
		maxSeq, err := s.subjects.MaxSequence(ctx, prefix)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "read campus sequence")
		}

		next := maxSeq + 1
		if maxSeq == 0 {
			next = id.SequenceFloor
		}
		if next > id.SequenceCap {
			s.metrics.RecordAllocation(req.Campus.String(), "capacity_exceeded")
			return nil, dErrors.New(dErrors.CodeCapacity,
				fmt.Sprintf("campus %s has no remaining student IDs", req.Campus))
		}

		subject := &models.Subject{
			ID:        id.FormatStudentID(req.Campus, next),
			Campus:    req.Campus,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Programme: req.Programme,
			PhotoURL:  req.PhotoURL,
			CreatedAt: now,
			UpdatedAt: now,
		}

		err = s.subjects.Create(ctx, subject)
		if err == nil {
			s.metrics.RecordAllocation(req.Campus.String(), "allocated")
			s.metrics.ObserveAttempts(attempt)
			s.logger.InfoContext(ctx, "student enrolled",
				"request_id", requestcontext.RequestID(ctx),
				"serial", subject.ID,
				"campus", req.Campus,
				"attempt", attempt,
			)
			return subject, nil
		}
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost the allocation race; re-read and try the next sequence.
			continue
		}
		s.metrics.RecordAllocation(req.Campus.String(), "error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create subject")
	}

	s.metrics.RecordAllocation(req.Campus.String(), "contention")
	s.logger.WarnContext(ctx, "allocation retry budget exhausted",
		"request_id", requestcontext.RequestID(ctx),
		"campus", req.Campus,
	)
	return nil, dErrors.New(dErrors.CodeTransient, "allocation contention, retry enrollment")
}

// IssuePass activates (or reissues) the subject's pass. The issue timestamp
// becomes the pass's last-modified value, which is what moves conditional
// fetches from 304 back to 200.
func (s *Service) IssuePass(ctx context.Context, serial id.StudentID) (*models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, serial)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "pass not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load subject")
	}

	now := requestcontext.Now(ctx)
	subject.PassActive = true
	subject.PassActiveAt = now
	subject.UpdatedAt = now
	subject.PassArtifactURL = fmt.Sprintf("/v1/passes/%s/%s", s.passTypeID, serial)

	if err := s.subjects.Update(ctx, subject); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update subject")
	}

	s.metrics.RecordPassIssued(subject.Campus.String())
	s.events.Emit(ctx, events.Event{
		Type:       events.TypePassIssued,
		Serial:     serial,
		OccurredAt: now,
	})
	s.logger.InfoContext(ctx, "pass issued",
		"request_id", requestcontext.RequestID(ctx),
		"serial", serial,
	)
	return subject, nil
}

// GetSubject loads one enrolled subject.
func (s *Service) GetSubject(ctx context.Context, serial id.StudentID) (*models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, serial)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "subject not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load subject")
	}
	return subject, nil
}
