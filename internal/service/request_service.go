package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/escuela-gastro/procurement-api/internal/dto"
	"github.com/escuela-gastro/procurement-api/internal/models"
	"github.com/escuela-gastro/procurement-api/internal/repository"
	appErrors "github.com/escuela-gastro/procurement-api/pkg/errors"
)

type requestRepository interface {
	Create(ctx context.Context, request *models.Request) error
	GetByID(ctx context.Context, id string) (*models.Request, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error)
	UpdateContent(ctx context.Context, request *models.Request, expectedState models.RequestState) error
	SetState(ctx context.Context, params repository.SetStateParams) error
	DeleteOwned(ctx context.Context, id, requesterID string) error
	DeleteAny(ctx context.Context, id string) error
}

type requestAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// RequestService orchestrates the ingredient request lifecycle: teachers
// submit and edit their own requests, administrators review them.
type RequestService struct {
	repo      requestRepository
	audit     requestAuditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRequestService constructs the service.
func NewRequestService(repo requestRepository, audit requestAuditLogger, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// Submit stores a new request in PENDING state.
func (s *RequestService) Submit(ctx context.Context, req dto.CreateRequestRequest, actor *models.JWTClaims) (*models.Request, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	lines, err := toRequestLines(req.Lines)
	if err != nil {
		return nil, err
	}
	request := &models.Request{
		RequesterID: actor.UserID,
		SubjectID:   req.SubjectID,
		ClassDate:   req.ClassDate,
		WeekNumber:  req.WeekNumber,
		Lines:       lines,
		Notes:       optionalString(strings.TrimSpace(req.Notes)),
		State:       models.RequestStatePending,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}
	s.emitAudit(ctx, actor, models.AuditActionRequestSubmit, request.ID, request.Lines)
	return request, nil
}

// Update edits an owned request. Editing a reviewed request reverts it to
// PENDING so the reviewer sees the new content.
func (s *RequestService) Update(ctx context.Context, id string, req dto.UpdateRequestRequest, actor *models.JWTClaims) (*models.Request, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	lines, err := toRequestLines(req.Lines)
	if err != nil {
		return nil, err
	}

	current, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.RequesterID != actor.UserID {
		return nil, appErrors.ErrForbidden
	}
	if current.State == models.RequestStateRejected {
		return nil, appErrors.Clone(appErrors.ErrConflict, "rejected requests cannot be edited; submit a new one")
	}

	current.SubjectID = req.SubjectID
	current.ClassDate = req.ClassDate
	current.WeekNumber = req.WeekNumber
	current.Lines = lines
	current.Notes = optionalString(strings.TrimSpace(req.Notes))
	if err := s.repo.UpdateContent(ctx, current, current.State); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "request changed concurrently; refresh and retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request")
	}
	current.State = models.RequestStatePending
	current.RejectReason = nil
	current.AdminComment = nil
	current.ReviewedBy = nil
	current.ReviewedAt = nil
	s.emitAudit(ctx, actor, models.AuditActionRequestSubmit, current.ID, current.Lines)
	return current, nil
}

// Get returns a request enforcing ownership for teachers.
func (s *RequestService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Request, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	request, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleTeacher && request.RequesterID != actor.UserID {
		return nil, appErrors.ErrForbidden
	}
	return request, nil
}

// List returns requests respecting the actor's role scope.
func (s *RequestService) List(ctx context.Context, query dto.RequestQuery, actor *models.JWTClaims) ([]models.Request, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.RequestFilter{
		WeekNumber: query.WeekNumber,
		SubjectID:  query.SubjectID,
		Limit:      query.Limit,
		Offset:     query.Offset,
	}
	for _, state := range query.States {
		switch models.RequestState(strings.ToUpper(strings.TrimSpace(state))) {
		case models.RequestStatePending:
			filter.States = append(filter.States, models.RequestStatePending)
		case models.RequestStateAccepted:
			filter.States = append(filter.States, models.RequestStateAccepted)
		case models.RequestStateAcceptedModified:
			filter.States = append(filter.States, models.RequestStateAcceptedModified)
		case models.RequestStateRejected:
			filter.States = append(filter.States, models.RequestStateRejected)
		default:
			return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported request state filter")
		}
	}
	switch actor.Role {
	case models.RoleSuperAdmin, models.RoleAdmin:
		// full access
	case models.RoleTeacher:
		filter.RequesterID = actor.UserID
	default:
		return nil, appErrors.ErrForbidden
	}
	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return requests, nil
}

// Review applies an admin decision over a pending request. The underlying
// write is compare-and-swap on the PENDING state, so two reviewers cannot
// both resolve the same request.
func (s *RequestService) Review(ctx context.Context, id string, req dto.ReviewRequestRequest, actor *models.JWTClaims) (*models.Request, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	request, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.State != models.RequestStatePending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "request already reviewed")
	}

	params := repository.SetStateParams{
		ID:           request.ID,
		From:         models.RequestStatePending,
		ReviewedBy:   actor.UserID,
		ReviewedAt:   time.Now().UTC(),
		AdminComment: optionalString(strings.TrimSpace(req.AdminComment)),
	}
	switch req.Decision {
	case dto.ReviewDecisionAccept:
		params.To = models.RequestStateAccepted
	case dto.ReviewDecisionAcceptWithEdits:
		if len(req.Lines) == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "accepting with edits requires the revised lines")
		}
		lines, err := toRequestLines(req.Lines)
		if err != nil {
			return nil, err
		}
		params.To = models.RequestStateAcceptedModified
		params.Lines = lines
	case dto.ReviewDecisionReject:
		reason := strings.TrimSpace(req.RejectReason)
		if reason == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "rejection requires a reason")
		}
		params.To = models.RequestStateRejected
		params.RejectReason = &reason
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported review decision")
	}

	if err := s.repo.SetState(ctx, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "request already resolved by another reviewer")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review request")
	}

	request.State = params.To
	request.RejectReason = params.RejectReason
	request.AdminComment = params.AdminComment
	request.ReviewedBy = &params.ReviewedBy
	request.ReviewedAt = &params.ReviewedAt
	if params.Lines != nil {
		request.Lines = params.Lines
	}
	s.emitAudit(ctx, actor, models.AuditActionRequestReview, request.ID, map[string]interface{}{"decision": string(req.Decision)})
	return request, nil
}

// Delete removes a request. Owners may delete only their own PENDING
// requests; admins may permanently delete any request (irreversible).
func (s *RequestService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	switch actor.Role {
	case models.RoleSuperAdmin, models.RoleAdmin:
		if err := s.repo.DeleteAny(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "request not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete request")
		}
	case models.RoleTeacher:
		if err := s.repo.DeleteOwned(ctx, id, actor.UserID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrConflict, "only your own pending requests can be deleted")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete request")
		}
	default:
		return appErrors.ErrForbidden
	}
	s.emitAudit(ctx, actor, models.AuditActionRequestDelete, id, nil)
	return nil
}

func (s *RequestService) getRequest(ctx context.Context, id string) (*models.Request, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return request, nil
}

func (s *RequestService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, requestID string, details interface{}) {
	if s.audit == nil {
		return
	}
	var payload []byte
	if details != nil {
		payload, _ = json.Marshal(details)
	}
	log := &models.AuditLog{
		UserID:     userIDPtr(actor),
		Action:     action,
		Resource:   "request",
		ResourceID: &requestID,
		NewValues:  payload,
		IPAddress:  "system",
		UserAgent:  "request-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record request audit", zap.Error(err))
	}
}

func toRequestLines(inputs []dto.RequestLineInput) (models.RequestLines, error) {
	lines := make(models.RequestLines, 0, len(inputs))
	for _, input := range inputs {
		if input.ProductID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "every line requires a product id")
		}
		if !input.Quantity.IsPositive() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "every line quantity must be greater than zero")
		}
		lines = append(lines, models.RequestLine{
			ProductID:     input.ProductID,
			ProductName:   input.ProductName,
			Quantity:      input.Quantity,
			UnitOfMeasure: input.UnitOfMeasure,
			IsAdditional:  input.IsAdditional,
		})
	}
	return lines, nil
}
