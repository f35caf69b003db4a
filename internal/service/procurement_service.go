package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/escuela-gastro/procurement-api/internal/dto"
	"github.com/escuela-gastro/procurement-api/internal/models"
	appErrors "github.com/escuela-gastro/procurement-api/pkg/errors"
)

type processStateStore interface {
	Read(ctx context.Context) (*models.ProcessState, error)
	Write(ctx context.Context, expectedVersion int64, state models.ProcessState) error
}

type orderStore interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	SaveStages(ctx context.Context, id string, stages models.StageSnapshots) error
	Close(ctx context.Context, id string, state models.OrderState, total decimal.Decimal, stages models.StageSnapshots, closedAt time.Time) error
}

type requestStore interface {
	GetByID(ctx context.Context, id string) (*models.Request, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error)
	LinkToOrder(ctx context.Context, ids []string, orderID string) error
}

type inventoryReader interface {
	GetLevels(ctx context.Context, productIDs []string) (models.InventorySnapshot, error)
}

type offeringReader interface {
	GetOfferings(ctx context.Context, productIDs []string) (map[string][]models.SupplierOffer, error)
}

type processAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ProcurementService drives the singleton weekly procurement pipeline:
// collect accepted requests, consolidate demand, reconcile against inventory,
// quote suppliers, finalize the purchase order. Every transition is
// compare-and-swap guarded on the persisted process state so two admin
// sessions can never run two orders at once.
type ProcurementService struct {
	state     processStateStore
	orders    orderStore
	requests  requestStore
	inventory inventoryReader
	catalog   offeringReader
	audit     processAuditLogger
	notifier  *ProcessNotifier
	metrics   *MetricsService
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

const processStatusCacheKey = "procurement:status"

// NewProcurementService constructs the service.
func NewProcurementService(
	state processStateStore,
	orders orderStore,
	requests requestStore,
	inventory inventoryReader,
	catalog offeringReader,
	audit processAuditLogger,
	notifier *ProcessNotifier,
	metrics *MetricsService,
	cache *CacheService,
	validate *validator.Validate,
	logger *zap.Logger,
) *ProcurementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcurementService{
		state:     state,
		orders:    orders,
		requests:  requests,
		inventory: inventory,
		catalog:   catalog,
		audit:     audit,
		notifier:  notifier,
		metrics:   metrics,
		cache:     cache,
		validator: validate,
		logger:    logger,
	}
}

// Start opens a new procurement run for one academic week. Fails with a
// conflict while another run is active.
func (s *ProcurementService) Start(ctx context.Context, req dto.StartProcessRequest, actor *models.JWTClaims) (*models.Order, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start payload")
	}
	return s.startRun(ctx, req.WeekNumber, req.Comment, nil, actor)
}

// StartFromSelection opens a run over hand-picked accepted requests and links
// them to the order immediately.
func (s *ProcurementService) StartFromSelection(ctx context.Context, req dto.StartFromSelectionRequest, actor *models.JWTClaims) (*models.Order, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection payload")
	}
	for _, id := range req.RequestIDs {
		request, err := s.requests.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("request %s not found", id))
			}
			return nil, s.dependencyError(err, "failed to load selected request")
		}
		if request.State != models.RequestStateAccepted && request.State != models.RequestStateAcceptedModified {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("request %s is not accepted", id))
		}
		// A request claimed by a completed or running order stays with it;
		// only a cancelled run releases its requests for re-selection.
		if request.OrderID != nil {
			owner, err := s.orders.GetByID(ctx, *request.OrderID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					continue
				}
				return nil, s.dependencyError(err, "failed to load owning order")
			}
			if owner.State != models.OrderStateCancelled {
				return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("request %s already belongs to order %s", id, owner.ID))
			}
		}
	}
	return s.startRun(ctx, req.WeekNumber, req.Comment, req.RequestIDs, actor)
}

func (s *ProcurementService) startRun(ctx context.Context, week int, comment string, selection []string, actor *models.JWTClaims) (*models.Order, error) {
	if week < models.MinWeekNumber || week > models.MaxWeekNumber {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("week number must be between %d and %d", models.MinWeekNumber, models.MaxWeekNumber))
	}
	state, err := s.state.Read(ctx)
	if err != nil {
		return nil, s.dependencyError(err, "failed to read process state")
	}
	if state.Active {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a procurement process is already active")
	}

	order := &models.Order{
		WeekNumber: week,
		State:      models.OrderStateInProgress,
		CreatedBy:  actor.UserID,
		Comment:    optionalString(comment),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, s.dependencyError(err, "failed to create order")
	}

	next := models.ProcessState{
		Active:     true,
		Step:       models.StepCollecting,
		WeekNumber: &order.WeekNumber,
		OrderID:    &order.ID,
	}
	if err := s.state.Write(ctx, state.Version, next); err != nil {
		// Another session won the race. Abandon the freshly created order so
		// it cannot linger as a second IN_PROGRESS run.
		if closeErr := s.orders.Close(ctx, order.ID, models.OrderStateCancelled, decimal.Zero, models.StageSnapshots{}, time.Now().UTC()); closeErr != nil {
			s.logger.Warn("failed to abandon order after state conflict", zap.String("order_id", order.ID), zap.Error(closeErr))
		}
		return nil, s.casError(err, "failed to activate process")
	}

	if len(selection) > 0 {
		if err := s.requests.LinkToOrder(ctx, selection, order.ID); err != nil {
			// Order and state are already committed; linking is idempotent and
			// can be retried, so surface the gap instead of compensating.
			return nil, s.dependencyError(err, "order started but request linking failed; retry linking")
		}
	}

	s.invalidateStatusCache(ctx)
	s.recordTransition(models.StepIdle, models.StepCollecting)
	s.emitAudit(ctx, actor, models.AuditActionProcessStart, order.ID, map[string]interface{}{"week": week, "selection": len(selection)})
	s.publish(ProcessEventStarted, order.ID, week, models.StepIdle, models.StepCollecting, actor)
	s.logger.Info("procurement process started", zap.String("order_id", order.ID), zap.Int("week", week))
	return order, nil
}

// TerminateCollection closes the collection stage: all week-matched or linked
// requests must be resolved, accepted ones are linked and consolidated, and
// the process moves to reconciliation with a fresh inventory snapshot.
func (s *ProcurementService) TerminateCollection(ctx context.Context, actor *models.JWTClaims) ([]models.ReconciliationLine, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	state, err := s.requireStep(ctx, models.StepCollecting)
	if err != nil {
		return nil, err
	}

	pending, err := s.pendingRequests(ctx, state)
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("%d request(s) still pending review", len(pending)))
	}

	accepted, err := s.collectAccepted(ctx, state)
	if err != nil {
		return nil, err
	}
	toLink := make([]string, 0, len(accepted))
	for _, request := range accepted {
		if request.OrderID == nil {
			toLink = append(toLink, request.ID)
		}
	}
	if err := s.requests.LinkToOrder(ctx, toLink, *state.OrderID); err != nil {
		return nil, s.dependencyError(err, "failed to link requests to order")
	}

	consolidated := Consolidate(accepted)
	productIDs := make([]string, 0, len(consolidated))
	for _, line := range consolidated {
		productIDs = append(productIDs, line.ProductID)
	}
	snapshot, err := s.inventory.GetLevels(ctx, productIDs)
	if err != nil {
		return nil, s.dependencyError(err, "failed to read inventory levels")
	}
	reconciliation := Reconcile(consolidated, snapshot)

	stages := models.StageSnapshots{Consolidated: consolidated, Reconciliation: reconciliation}
	if err := s.orders.SaveStages(ctx, *state.OrderID, stages); err != nil {
		return nil, s.casError(err, "failed to persist consolidation")
	}
	if err := s.advance(ctx, state, models.StepReconciling); err != nil {
		return nil, err
	}
	s.emitAudit(ctx, actor, models.AuditActionProcessAdvance, *state.OrderID, map[string]interface{}{"step": models.StepReconciling.String(), "lines": len(consolidated)})
	s.publish(ProcessEventAdvanced, *state.OrderID, derefWeek(state.WeekNumber), models.StepCollecting, models.StepReconciling, actor)
	return reconciliation, nil
}

// AcceptReconciliation applies operator overrides to the persisted
// reconciliation, computes the default supplier quotes for the shortfall, and
// advances to the quoting stage.
func (s *ProcurementService) AcceptReconciliation(ctx context.Context, req dto.AcceptReconciliationRequest, actor *models.JWTClaims) ([]models.QuoteLine, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reconciliation payload")
	}
	state, err := s.requireStep(ctx, models.StepReconciling)
	if err != nil {
		return nil, err
	}
	order, err := s.loadOrder(ctx, state)
	if err != nil {
		return nil, err
	}

	overrides := make(map[string]decimal.Decimal, len(req.Overrides))
	for _, override := range req.Overrides {
		overrides[override.ProductID] = override.ToOrder
	}
	reconciliation, err := ApplyReconciliationOverrides(order.Stages.Reconciliation, overrides)
	if err != nil {
		return nil, err
	}

	shortfall := make([]string, 0, len(reconciliation))
	for _, line := range reconciliation {
		if line.ToOrder.IsPositive() {
			shortfall = append(shortfall, line.ProductID)
		}
	}
	offerings, err := s.catalog.GetOfferings(ctx, shortfall)
	if err != nil {
		return nil, s.dependencyError(err, "failed to read supplier catalog")
	}
	quotes := SelectQuotes(reconciliation, offerings)

	stages := order.Stages
	stages.Reconciliation = reconciliation
	stages.Quotes = quotes
	if err := s.orders.SaveStages(ctx, order.ID, stages); err != nil {
		return nil, s.casError(err, "failed to persist reconciliation")
	}
	if err := s.advance(ctx, state, models.StepQuoting); err != nil {
		return nil, err
	}
	s.emitAudit(ctx, actor, models.AuditActionProcessAdvance, order.ID, map[string]interface{}{"step": models.StepQuoting.String(), "shortfall": len(shortfall)})
	s.publish(ProcessEventAdvanced, order.ID, order.WeekNumber, models.StepReconciling, models.StepQuoting, actor)
	return quotes, nil
}

// AcceptQuotes applies operator supplier selections over the persisted quote
// proposal and advances to finalization.
func (s *ProcurementService) AcceptQuotes(ctx context.Context, req dto.AcceptQuotesRequest, actor *models.JWTClaims) ([]models.QuoteLine, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quotes payload")
	}
	state, err := s.requireStep(ctx, models.StepQuoting)
	if err != nil {
		return nil, err
	}
	order, err := s.loadOrder(ctx, state)
	if err != nil {
		return nil, err
	}

	selections := make(map[string]string, len(req.Selections))
	for _, selection := range req.Selections {
		selections[selection.ProductID] = selection.SupplierID
	}
	quotes, err := ApplyQuoteSelections(order.Stages.Quotes, selections)
	if err != nil {
		return nil, err
	}

	stages := order.Stages
	stages.Quotes = quotes
	if err := s.orders.SaveStages(ctx, order.ID, stages); err != nil {
		return nil, s.casError(err, "failed to persist quotes")
	}
	if err := s.advance(ctx, state, models.StepFinalizing); err != nil {
		return nil, err
	}
	s.emitAudit(ctx, actor, models.AuditActionProcessAdvance, order.ID, map[string]interface{}{"step": models.StepFinalizing.String()})
	s.publish(ProcessEventAdvanced, order.ID, order.WeekNumber, models.StepQuoting, models.StepFinalizing, actor)
	return quotes, nil
}

// Finalize commits the purchase order: every quote line must carry a chosen
// supplier, line totals are computed, the order is completed and the process
// resets to idle for the next cycle.
func (s *ProcurementService) Finalize(ctx context.Context, actor *models.JWTClaims) (*models.FinalOrder, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	state, err := s.requireStep(ctx, models.StepFinalizing)
	if err != nil {
		return nil, err
	}
	order, err := s.loadOrder(ctx, state)
	if err != nil {
		return nil, err
	}

	finalLines, err := BuildFinalLines(order.Stages.Quotes)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, line := range finalLines {
		total = total.Add(line.LineTotal)
	}

	linked, err := s.listAllRequests(ctx, models.RequestFilter{OrderID: order.ID})
	if err != nil {
		return nil, s.dependencyError(err, "failed to list linked requests")
	}
	linkedIDs := make([]string, 0, len(linked))
	for _, request := range linked {
		linkedIDs = append(linkedIDs, request.ID)
	}

	closedAt := time.Now().UTC()
	stages := order.Stages
	stages.Final = finalLines
	if err := s.orders.Close(ctx, order.ID, models.OrderStateCompleted, total, stages, closedAt); err != nil {
		return nil, s.casError(err, "failed to complete order")
	}
	idle := models.ProcessState{Active: false, Step: models.StepIdle}
	if err := s.state.Write(ctx, state.Version, idle); err != nil {
		// The order is already completed, so the reset gets one retry against
		// fresh state: a concurrent cancel leaves nothing to reset, while any
		// other version bump still points at this order.
		retryErr := err
		if fresh, readErr := s.state.Read(ctx); readErr == nil {
			if !fresh.Active {
				retryErr = nil
			} else if fresh.OrderID != nil && *fresh.OrderID == order.ID {
				retryErr = s.state.Write(ctx, fresh.Version, idle)
			}
		}
		if retryErr != nil {
			return nil, s.casError(retryErr, "order completed but process state is still active; cancel the run to reset it")
		}
	}

	s.invalidateStatusCache(ctx)
	s.recordTransition(models.StepFinalizing, models.StepClosed)
	s.recordTransition(models.StepClosed, models.StepIdle)
	s.emitAudit(ctx, actor, models.AuditActionProcessFinalize, order.ID, map[string]interface{}{"total": total.String(), "lines": len(finalLines)})
	s.publish(ProcessEventFinalized, order.ID, order.WeekNumber, models.StepFinalizing, models.StepIdle, actor)
	s.logger.Info("procurement process finalized",
		zap.String("order_id", order.ID),
		zap.String("total", total.String()),
		zap.Int("lines", len(finalLines)))

	return &models.FinalOrder{
		OrderID:          order.ID,
		Lines:            finalLines,
		Total:            total,
		LinkedRequestIDs: linkedIDs,
		ClosedAt:         closedAt,
	}, nil
}

// Cancel aborts the active run from any stage. Derived pipeline data is
// discarded; linked requests keep whatever state they had.
func (s *ProcurementService) Cancel(ctx context.Context, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	state, err := s.state.Read(ctx)
	if err != nil {
		return s.dependencyError(err, "failed to read process state")
	}
	if !state.Active {
		return appErrors.Clone(appErrors.ErrConflict, "no active procurement process")
	}
	if state.OrderID != nil {
		if err := s.orders.Close(ctx, *state.OrderID, models.OrderStateCancelled, decimal.Zero, models.StageSnapshots{}, time.Now().UTC()); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return s.dependencyError(err, "failed to cancel order")
		}
	}
	fromStep := state.Step
	if err := s.state.Write(ctx, state.Version, models.ProcessState{Active: false, Step: models.StepIdle}); err != nil {
		return s.casError(err, "failed to reset process")
	}

	s.invalidateStatusCache(ctx)
	s.recordTransition(fromStep, models.StepIdle)
	orderID := ""
	if state.OrderID != nil {
		orderID = *state.OrderID
	}
	s.emitAudit(ctx, actor, models.AuditActionProcessCancel, orderID, map[string]interface{}{"from_step": fromStep.String()})
	s.publish(ProcessEventCancelled, orderID, derefWeek(state.WeekNumber), fromStep, models.StepIdle, actor)
	s.logger.Info("procurement process cancelled", zap.String("order_id", orderID), zap.String("from_step", fromStep.String()))
	return nil
}

// Status reports the current pipeline position with the persisted stage
// payloads and, during collection, the requests still pending review.
func (s *ProcurementService) Status(ctx context.Context) (*dto.ProcessStatus, bool, error) {
	var cached dto.ProcessStatus
	if hit, err := s.cache.Get(ctx, processStatusCacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	state, err := s.state.Read(ctx)
	if err != nil {
		return nil, false, s.dependencyError(err, "failed to read process state")
	}
	status := &dto.ProcessStatus{
		Active:     state.Active,
		Step:       int(state.Step),
		StepName:   state.Step.String(),
		WeekNumber: state.WeekNumber,
		OrderID:    state.OrderID,
	}
	if state.OrderID != nil {
		order, err := s.loadOrder(ctx, state)
		if err != nil {
			return nil, false, err
		}
		status.Order = order
		status.Stages = order.Stages
	}
	if state.Active && state.Step == models.StepCollecting {
		pending, err := s.pendingRequests(ctx, state)
		if err != nil {
			return nil, false, err
		}
		status.PendingRequests = pending
	}

	if err := s.cache.Set(ctx, processStatusCacheKey, status, 0); err != nil {
		s.logger.Warn("failed to cache process status", zap.Error(err))
	}
	return status, false, nil
}

func (s *ProcurementService) requireStep(ctx context.Context, step models.ProcessStep) (*models.ProcessState, error) {
	state, err := s.state.Read(ctx)
	if err != nil {
		return nil, s.dependencyError(err, "failed to read process state")
	}
	if !state.Active || state.Step != step {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("process is not in %s stage", step.String()))
	}
	if state.OrderID == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "active process has no order")
	}
	return state, nil
}

func (s *ProcurementService) advance(ctx context.Context, state *models.ProcessState, to models.ProcessStep) error {
	next := models.ProcessState{
		Active:     true,
		Step:       to,
		WeekNumber: state.WeekNumber,
		OrderID:    state.OrderID,
	}
	if err := s.state.Write(ctx, state.Version, next); err != nil {
		return s.casError(err, "failed to advance process")
	}
	s.invalidateStatusCache(ctx)
	s.recordTransition(state.Step, to)
	return nil
}

// requestPageSize caps each page pulled from the request store. Collection
// listings page until a short page so no week is silently truncated.
const requestPageSize = 200

func (s *ProcurementService) listAllRequests(ctx context.Context, filter models.RequestFilter) ([]models.Request, error) {
	filter.Limit = requestPageSize
	var all []models.Request
	for offset := 0; ; offset += requestPageSize {
		filter.Offset = offset
		page, err := s.requests.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < requestPageSize {
			return all, nil
		}
	}
}

func (s *ProcurementService) pendingRequests(ctx context.Context, state *models.ProcessState) ([]models.Request, error) {
	seen := make(map[string]struct{})
	var pending []models.Request

	byOrder, err := s.listAllRequests(ctx, models.RequestFilter{States: []models.RequestState{models.RequestStatePending}, OrderID: *state.OrderID})
	if err != nil {
		return nil, s.dependencyError(err, "failed to list pending requests")
	}
	for _, request := range byOrder {
		seen[request.ID] = struct{}{}
		pending = append(pending, request)
	}

	if state.WeekNumber != nil {
		byWeek, err := s.listAllRequests(ctx, models.RequestFilter{States: []models.RequestState{models.RequestStatePending}, WeekNumber: state.WeekNumber})
		if err != nil {
			return nil, s.dependencyError(err, "failed to list pending requests")
		}
		for _, request := range byWeek {
			if _, ok := seen[request.ID]; ok {
				continue
			}
			pending = append(pending, request)
		}
	}
	return pending, nil
}

func (s *ProcurementService) collectAccepted(ctx context.Context, state *models.ProcessState) ([]models.Request, error) {
	acceptedStates := []models.RequestState{models.RequestStateAccepted, models.RequestStateAcceptedModified}
	seen := make(map[string]struct{})
	var accepted []models.Request

	linked, err := s.listAllRequests(ctx, models.RequestFilter{States: acceptedStates, OrderID: *state.OrderID})
	if err != nil {
		return nil, s.dependencyError(err, "failed to list accepted requests")
	}
	for _, request := range linked {
		seen[request.ID] = struct{}{}
		accepted = append(accepted, request)
	}

	if state.WeekNumber != nil {
		byWeek, err := s.listAllRequests(ctx, models.RequestFilter{States: acceptedStates, WeekNumber: state.WeekNumber})
		if err != nil {
			return nil, s.dependencyError(err, "failed to list accepted requests")
		}
		for _, request := range byWeek {
			if _, ok := seen[request.ID]; ok {
				continue
			}
			// A request already claimed by a previous order stays with it.
			if request.OrderID != nil && *request.OrderID != *state.OrderID {
				continue
			}
			accepted = append(accepted, request)
		}
	}
	return accepted, nil
}

func (s *ProcurementService) loadOrder(ctx context.Context, state *models.ProcessState) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, *state.OrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "active order not found")
		}
		return nil, s.dependencyError(err, "failed to load order")
	}
	return order, nil
}

func (s *ProcurementService) casError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrConflict, "process state changed concurrently; refresh and retry")
	}
	return s.dependencyError(err, message)
}

func (s *ProcurementService) dependencyError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrDependency.Code, appErrors.ErrDependency.Status, message)
}

func (s *ProcurementService) invalidateStatusCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, processStatusCacheKey); err != nil {
		s.logger.Warn("failed to invalidate process status cache", zap.Error(err))
	}
}

func (s *ProcurementService) recordTransition(from, to models.ProcessStep) {
	if s.metrics != nil {
		s.metrics.RecordStepTransition(from, to)
	}
}

func (s *ProcurementService) publish(eventType ProcessEventType, orderID string, week int, from, to models.ProcessStep, actor *models.JWTClaims) {
	if s.notifier == nil {
		return
	}
	actorID := ""
	if actor != nil {
		actorID = actor.UserID
	}
	s.notifier.Publish(ProcessEvent{
		Type:       eventType,
		OrderID:    orderID,
		WeekNumber: week,
		FromStep:   from,
		ToStep:     to,
		Actor:      actorID,
	})
}

func (s *ProcurementService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, orderID string, details map[string]interface{}) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(details)
	log := &models.AuditLog{
		UserID:    userIDPtr(actor),
		Action:    action,
		Resource:  "procurement",
		NewValues: payload,
		IPAddress: "system",
		UserAgent: "procurement-service",
	}
	if orderID != "" {
		log.ResourceID = &orderID
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record procurement audit", zap.Error(err))
	}
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	v := value
	return &v
}

func derefWeek(week *int) int {
	if week == nil {
		return 0
	}
	return *week
}
