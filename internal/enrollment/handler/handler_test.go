package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"campuspass/internal/enrollment"
	"campuspass/internal/enrollment/handler/mocks"
	"campuspass/internal/pass/models"
	id "campuspass/pkg/domain"
	dErrors "campuspass/pkg/domain-errors"
	"campuspass/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/enrollment-mocks.go -package=mocks Service
type EnrollmentHandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *EnrollmentHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestEnrollmentHandlerSuite(t *testing.T) {
	suite.Run(t, new(EnrollmentHandlerSuite))
}

func newTestHandler(t *testing.T) (*chi.Mux, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := New(mockService, logger)
	r := chi.NewRouter()
	handler.Register(r)
	return r, mockService
}

func (s *EnrollmentHandlerSuite) TestHandleEnroll() {
	router, mockService := newTestHandler(s.T())
	created := time.Date(2026, 1, 12, 9, 30, 0, 0, time.UTC)
	mockService.EXPECT().Enroll(gomock.Any(), enrollment.EnrollRequest{
		Campus:    id.CampusLondon,
		FirstName: "Amara",
		LastName:  "Okafor",
		Email:     "amara.okafor@example.ac.uk",
		Programme: "BSc Computer Science",
	}).Return(&models.Subject{
		ID:        id.StudentID("207100001"),
		Campus:    id.CampusLondon,
		FirstName: "Amara",
		LastName:  "Okafor",
		Email:     "amara.okafor@example.ac.uk",
		Programme: "BSc Computer Science",
		CreatedAt: created,
	}, nil)

	body, err := json.Marshal(EnrollRequest{
		Campus:    "london",
		FirstName: "Amara",
		LastName:  "Okafor",
		Email:     "amara.okafor@example.ac.uk",
		Programme: "BSc Computer Science",
	})
	require.NoError(s.T(), err)

	req := testutil.WithStaffID(httptest.NewRequest(http.MethodPost, "/subjects", bytes.NewReader(body)), "staff-042")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())
	var resp map[string]any
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "207100001", resp["serialNumber"])
	assert.Equal(s.T(), "london", resp["campus"])
	assert.Equal(s.T(), false, resp["passActive"])
}

func (s *EnrollmentHandlerSuite) TestHandleEnrollRejectsUnknownCampus() {
	router, _ := newTestHandler(s.T())

	body, err := json.Marshal(EnrollRequest{
		Campus:    "atlantis",
		FirstName: "Amara",
		LastName:  "Okafor",
		Email:     "amara.okafor@example.ac.uk",
	})
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, "/subjects", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code, w.Body.String())
}

func (s *EnrollmentHandlerSuite) TestHandleEnrollRequiresName() {
	router, _ := newTestHandler(s.T())

	body, err := json.Marshal(EnrollRequest{
		Campus: "bristol",
		Email:  "someone@example.ac.uk",
	})
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, "/subjects", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code, w.Body.String())
}

func (s *EnrollmentHandlerSuite) TestHandleEnrollCapacityExceeded() {
	router, mockService := newTestHandler(s.T())
	mockService.EXPECT().Enroll(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeCapacity, "campus sheffield has no remaining student numbers"))

	body, err := json.Marshal(EnrollRequest{
		Campus:    "sheffield",
		FirstName: "Priya",
		LastName:  "Shah",
		Email:     "priya.shah@example.ac.uk",
	})
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, "/subjects", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusConflict, w.Code, w.Body.String())
	var resp map[string]any
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "capacity_exceeded", resp["error"])
}

func (s *EnrollmentHandlerSuite) TestHandleIssuePass() {
	router, mockService := newTestHandler(s.T())
	activeAt := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	mockService.EXPECT().IssuePass(gomock.Any(), id.StudentID("117100042")).
		Return(&models.Subject{
			ID:              id.StudentID("117100042"),
			Campus:          id.CampusBristol,
			FirstName:       "Noah",
			LastName:        "Hughes",
			Email:           "noah.hughes@example.ac.uk",
			PassActive:      true,
			PassActiveAt:    activeAt,
			PassArtifactURL: "/v1/passes/pass.ac.campus.student/117100042",
			CreatedAt:       activeAt.Add(-24 * time.Hour),
		}, nil)

	req := httptest.NewRequest(http.MethodPost, "/subjects/117100042/pass", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	var resp map[string]any
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), true, resp["passActive"])
	assert.Equal(s.T(), "/v1/passes/pass.ac.campus.student/117100042", resp["passUrl"])
}

func (s *EnrollmentHandlerSuite) TestHandleIssuePassMalformedSerial() {
	router, _ := newTestHandler(s.T())

	req := httptest.NewRequest(http.MethodPost, "/subjects/not-a-serial/pass", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusNotFound, w.Code, w.Body.String())
}

func (s *EnrollmentHandlerSuite) TestHandleGetSubjectNotFound() {
	router, mockService := newTestHandler(s.T())
	mockService.EXPECT().GetSubject(gomock.Any(), id.StudentID("121100500")).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "subject not found"))

	req := httptest.NewRequest(http.MethodGet, "/subjects/121100500", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusNotFound, w.Code, w.Body.String())
}
