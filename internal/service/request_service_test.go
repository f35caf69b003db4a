package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escuela-gastro/procurement-api/internal/dto"
	"github.com/escuela-gastro/procurement-api/internal/models"
	"github.com/escuela-gastro/procurement-api/internal/repository"
	appErrors "github.com/escuela-gastro/procurement-api/pkg/errors"
)

type requestRepoStub struct {
	requests  map[string]*models.Request
	seq       int
	createErr error
	stateErr  error
}

func newRequestRepoStub(requests ...*models.Request) *requestRepoStub {
	s := &requestRepoStub{requests: make(map[string]*models.Request)}
	for _, request := range requests {
		s.requests[request.ID] = request
	}
	return s
}

func (s *requestRepoStub) Create(ctx context.Context, request *models.Request) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.seq++
	request.ID = fmt.Sprintf("req-%d", s.seq)
	request.CreatedAt = time.Now().UTC()
	stored := *request
	s.requests[request.ID] = &stored
	return nil
}

func (s *requestRepoStub) GetByID(ctx context.Context, id string) (*models.Request, error) {
	request, ok := s.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	snapshot := *request
	return &snapshot, nil
}

func (s *requestRepoStub) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error) {
	var result []models.Request
	for _, request := range s.requests {
		if filter.RequesterID != "" && request.RequesterID != filter.RequesterID {
			continue
		}
		if len(filter.States) > 0 {
			matched := false
			for _, state := range filter.States {
				if request.State == state {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		result = append(result, *request)
	}
	return result, nil
}

func (s *requestRepoStub) UpdateContent(ctx context.Context, request *models.Request, expectedState models.RequestState) error {
	current, ok := s.requests[request.ID]
	if !ok || current.State != expectedState {
		return sql.ErrNoRows
	}
	stored := *request
	stored.State = models.RequestStatePending
	stored.RejectReason = nil
	stored.AdminComment = nil
	stored.ReviewedBy = nil
	stored.ReviewedAt = nil
	s.requests[request.ID] = &stored
	return nil
}

func (s *requestRepoStub) SetState(ctx context.Context, params repository.SetStateParams) error {
	if s.stateErr != nil {
		return s.stateErr
	}
	current, ok := s.requests[params.ID]
	if !ok || current.State != params.From {
		return sql.ErrNoRows
	}
	current.State = params.To
	current.RejectReason = params.RejectReason
	current.AdminComment = params.AdminComment
	current.ReviewedBy = &params.ReviewedBy
	current.ReviewedAt = &params.ReviewedAt
	if params.Lines != nil {
		current.Lines = params.Lines
	}
	return nil
}

func (s *requestRepoStub) DeleteOwned(ctx context.Context, id, requesterID string) error {
	current, ok := s.requests[id]
	if !ok || current.RequesterID != requesterID || current.State != models.RequestStatePending {
		return sql.ErrNoRows
	}
	delete(s.requests, id)
	return nil
}

func (s *requestRepoStub) DeleteAny(ctx context.Context, id string) error {
	if _, ok := s.requests[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.requests, id)
	return nil
}

func teacherClaims(userID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: models.RoleTeacher}
}

func lineInput(productID, name, quantity string) dto.RequestLineInput {
	return dto.RequestLineInput{
		ProductID:     productID,
		ProductName:   name,
		Quantity:      decimal.RequireFromString(quantity),
		UnitOfMeasure: "kg",
	}
}

func submitPayload(lines ...dto.RequestLineInput) dto.CreateRequestRequest {
	return dto.CreateRequestRequest{
		SubjectID:  "pastry-101",
		ClassDate:  time.Date(2026, 2, 16, 9, 0, 0, 0, time.UTC),
		WeekNumber: 7,
		Lines:      lines,
	}
}

func newRequestServiceForTest(repo *requestRepoStub) *RequestService {
	return NewRequestService(repo, &auditLoggerStub{}, nil, nil)
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	repo := newRequestRepoStub()
	svc := newRequestServiceForTest(repo)

	request, err := svc.Submit(context.Background(), submitPayload(lineInput("flour", "Harina", "5")), teacherClaims("teacher-1"))
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatePending, request.State)
	assert.Equal(t, "teacher-1", request.RequesterID)
	require.Len(t, request.Lines, 1)
	assert.True(t, request.Lines[0].Quantity.Equal(decimal.RequireFromString("5")))
}

func TestSubmitRejectsNonPositiveQuantity(t *testing.T) {
	svc := newRequestServiceForTest(newRequestRepoStub())

	_, err := svc.Submit(context.Background(), submitPayload(lineInput("flour", "Harina", "-2")), teacherClaims("teacher-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUpdateRevertsReviewToPending(t *testing.T) {
	reviewer := "admin-1"
	now := time.Now().UTC()
	repo := newRequestRepoStub(&models.Request{
		ID:          "req-1",
		RequesterID: "teacher-1",
		SubjectID:   "pastry-101",
		WeekNumber:  7,
		State:       models.RequestStateAccepted,
		ReviewedBy:  &reviewer,
		ReviewedAt:  &now,
		Lines: models.RequestLines{
			{ProductID: "flour", ProductName: "Harina", Quantity: decimal.RequireFromString("5"), UnitOfMeasure: "kg"},
		},
	})
	svc := newRequestServiceForTest(repo)

	payload := dto.UpdateRequestRequest{
		SubjectID:  "pastry-101",
		ClassDate:  time.Date(2026, 2, 16, 9, 0, 0, 0, time.UTC),
		WeekNumber: 7,
		Lines:      []dto.RequestLineInput{lineInput("flour", "Harina", "8")},
	}
	updated, err := svc.Update(context.Background(), "req-1", payload, teacherClaims("teacher-1"))
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatePending, updated.State)
	assert.Nil(t, updated.ReviewedBy, "edit discards the previous review")
	assert.True(t, updated.Lines[0].Quantity.Equal(decimal.RequireFromString("8")))
}

func TestUpdateRejectedRequestFails(t *testing.T) {
	repo := newRequestRepoStub(&models.Request{
		ID:          "req-1",
		RequesterID: "teacher-1",
		State:       models.RequestStateRejected,
	})
	svc := newRequestServiceForTest(repo)

	payload := dto.UpdateRequestRequest{
		SubjectID:  "pastry-101",
		ClassDate:  time.Date(2026, 2, 16, 9, 0, 0, 0, time.UTC),
		WeekNumber: 7,
		Lines:      []dto.RequestLineInput{lineInput("flour", "Harina", "8")},
	}
	_, err := svc.Update(context.Background(), "req-1", payload, teacherClaims("teacher-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUpdateForeignRequestForbidden(t *testing.T) {
	repo := newRequestRepoStub(&models.Request{
		ID:          "req-1",
		RequesterID: "teacher-1",
		State:       models.RequestStatePending,
	})
	svc := newRequestServiceForTest(repo)

	payload := dto.UpdateRequestRequest{
		SubjectID:  "pastry-101",
		ClassDate:  time.Date(2026, 2, 16, 9, 0, 0, 0, time.UTC),
		WeekNumber: 7,
		Lines:      []dto.RequestLineInput{lineInput("flour", "Harina", "8")},
	}
	_, err := svc.Update(context.Background(), "req-1", payload, teacherClaims("teacher-2"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestListScopesTeachersToOwnRequests(t *testing.T) {
	repo := newRequestRepoStub(
		&models.Request{ID: "req-1", RequesterID: "teacher-1", State: models.RequestStatePending},
		&models.Request{ID: "req-2", RequesterID: "teacher-2", State: models.RequestStatePending},
	)
	svc := newRequestServiceForTest(repo)

	requests, err := svc.List(context.Background(), dto.RequestQuery{}, teacherClaims("teacher-1"))
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "req-1", requests[0].ID)
}

func TestListRejectsUnknownStateFilter(t *testing.T) {
	svc := newRequestServiceForTest(newRequestRepoStub())

	_, err := svc.List(context.Background(), dto.RequestQuery{States: []string{"SHIPPED"}}, adminClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReviewAcceptWithEditsReplacesLines(t *testing.T) {
	repo := newRequestRepoStub(&models.Request{
		ID:          "req-1",
		RequesterID: "teacher-1",
		State:       models.RequestStatePending,
		Lines: models.RequestLines{
			{ProductID: "flour", ProductName: "Harina", Quantity: decimal.RequireFromString("20"), UnitOfMeasure: "kg"},
		},
	})
	svc := newRequestServiceForTest(repo)

	reviewed, err := svc.Review(context.Background(), "req-1", dto.ReviewRequestRequest{
		Decision: dto.ReviewDecisionAcceptWithEdits,
		Lines:    []dto.RequestLineInput{lineInput("flour", "Harina", "10")},
	}, adminClaims())
	require.NoError(t, err)
	assert.Equal(t, models.RequestStateAcceptedModified, reviewed.State)
	assert.True(t, reviewed.Lines[0].Quantity.Equal(decimal.RequireFromString("10")))
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, "admin-1", *reviewed.ReviewedBy)
}

func TestReviewAcceptWithEditsRequiresLines(t *testing.T) {
	repo := newRequestRepoStub(&models.Request{ID: "req-1", State: models.RequestStatePending})
	svc := newRequestServiceForTest(repo)

	_, err := svc.Review(context.Background(), "req-1", dto.ReviewRequestRequest{
		Decision: dto.ReviewDecisionAcceptWithEdits,
	}, adminClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReviewRejectRequiresReason(t *testing.T) {
	repo := newRequestRepoStub(&models.Request{ID: "req-1", State: models.RequestStatePending})
	svc := newRequestServiceForTest(repo)

	_, err := svc.Review(context.Background(), "req-1", dto.ReviewRequestRequest{
		Decision:     dto.ReviewDecisionReject,
		RejectReason: "   ",
	}, adminClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReviewRejectStoresReason(t *testing.T) {
	repo := newRequestRepoStub(&models.Request{ID: "req-1", State: models.RequestStatePending})
	svc := newRequestServiceForTest(repo)

	reviewed, err := svc.Review(context.Background(), "req-1", dto.ReviewRequestRequest{
		Decision:     dto.ReviewDecisionReject,
		RejectReason: "duplicate of last week's request",
	}, adminClaims())
	require.NoError(t, err)
	assert.Equal(t, models.RequestStateRejected, reviewed.State)
	require.NotNil(t, reviewed.RejectReason)
	assert.Equal(t, "duplicate of last week's request", *reviewed.RejectReason)
}

func TestReviewLosesRaceToAnotherReviewer(t *testing.T) {
	repo := newRequestRepoStub(&models.Request{ID: "req-1", State: models.RequestStatePending})
	repo.stateErr = sql.ErrNoRows
	svc := newRequestServiceForTest(repo)

	_, err := svc.Review(context.Background(), "req-1", dto.ReviewRequestRequest{
		Decision: dto.ReviewDecisionAccept,
	}, adminClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestReviewAlreadyResolvedRequest(t *testing.T) {
	repo := newRequestRepoStub(&models.Request{ID: "req-1", State: models.RequestStateAccepted})
	svc := newRequestServiceForTest(repo)

	_, err := svc.Review(context.Background(), "req-1", dto.ReviewRequestRequest{
		Decision: dto.ReviewDecisionAccept,
	}, adminClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestDeleteTeacherOwnPendingOnly(t *testing.T) {
	repo := newRequestRepoStub(
		&models.Request{ID: "req-1", RequesterID: "teacher-1", State: models.RequestStatePending},
		&models.Request{ID: "req-2", RequesterID: "teacher-1", State: models.RequestStateAccepted},
	)
	svc := newRequestServiceForTest(repo)

	require.NoError(t, svc.Delete(context.Background(), "req-1", teacherClaims("teacher-1")))

	err := svc.Delete(context.Background(), "req-2", teacherClaims("teacher-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestDeleteAdminRemovesAnyRequest(t *testing.T) {
	repo := newRequestRepoStub(&models.Request{ID: "req-1", RequesterID: "teacher-1", State: models.RequestStateAccepted})
	svc := newRequestServiceForTest(repo)

	require.NoError(t, svc.Delete(context.Background(), "req-1", adminClaims()))
	_, ok := repo.requests["req-1"]
	assert.False(t, ok)
}
