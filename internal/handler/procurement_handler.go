package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/escuela-gastro/procurement-api/internal/dto"
	"github.com/escuela-gastro/procurement-api/internal/middleware"
	"github.com/escuela-gastro/procurement-api/internal/models"
	appErrors "github.com/escuela-gastro/procurement-api/pkg/errors"
	"github.com/escuela-gastro/procurement-api/pkg/response"
)

type procurementService interface {
	Start(ctx context.Context, req dto.StartProcessRequest, actor *models.JWTClaims) (*models.Order, error)
	StartFromSelection(ctx context.Context, req dto.StartFromSelectionRequest, actor *models.JWTClaims) (*models.Order, error)
	TerminateCollection(ctx context.Context, actor *models.JWTClaims) ([]models.ReconciliationLine, error)
	AcceptReconciliation(ctx context.Context, req dto.AcceptReconciliationRequest, actor *models.JWTClaims) ([]models.QuoteLine, error)
	AcceptQuotes(ctx context.Context, req dto.AcceptQuotesRequest, actor *models.JWTClaims) ([]models.QuoteLine, error)
	Finalize(ctx context.Context, actor *models.JWTClaims) (*models.FinalOrder, error)
	Cancel(ctx context.Context, actor *models.JWTClaims) error
	Status(ctx context.Context) (*dto.ProcessStatus, bool, error)
}

type weekDefaulter interface {
	GetCurrentWeekNumber(ctx context.Context) (int, error)
}

// ProcurementHandler exposes the weekly purchase pipeline endpoints.
type ProcurementHandler struct {
	service  procurementService
	settings weekDefaulter
}

// NewProcurementHandler builds a new handler. The settings reader may be nil;
// it only supplies the default week when the start payload omits one.
func NewProcurementHandler(service procurementService, settings weekDefaulter) *ProcurementHandler {
	return &ProcurementHandler{service: service, settings: settings}
}

// Start godoc
// @Summary Start a procurement run for one week
// @Tags Procurement
// @Accept json
// @Produce json
// @Param payload body dto.StartProcessRequest true "Week to open"
// @Success 201 {object} response.Envelope
// @Router /procurement/start [post]
func (h *ProcurementHandler) Start(c *gin.Context) {
	var req dto.StartProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid start payload"))
		return
	}
	if req.WeekNumber == 0 && h.settings != nil {
		if week, err := h.settings.GetCurrentWeekNumber(c.Request.Context()); err == nil && week > 0 {
			req.WeekNumber = week
		}
	}
	order, err := h.service.Start(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, order)
}

// StartFromSelection godoc
// @Summary Start a procurement run over selected requests
// @Tags Procurement
// @Accept json
// @Produce json
// @Param payload body dto.StartFromSelectionRequest true "Requests to include"
// @Success 201 {object} response.Envelope
// @Router /procurement/start-selection [post]
func (h *ProcurementHandler) StartFromSelection(c *gin.Context) {
	var req dto.StartFromSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid selection payload"))
		return
	}
	order, err := h.service.StartFromSelection(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, order)
}

// TerminateCollection godoc
// @Summary Close the collection window and compute reconciliation
// @Tags Procurement
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /procurement/terminate-collection [post]
func (h *ProcurementHandler) TerminateCollection(c *gin.Context) {
	lines, err := h.service.TerminateCollection(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lines, nil)
}

// AcceptReconciliation godoc
// @Summary Approve reconciliation and request supplier quotes
// @Tags Procurement
// @Accept json
// @Produce json
// @Param payload body dto.AcceptReconciliationRequest true "Optional per-line overrides"
// @Success 200 {object} response.Envelope
// @Router /procurement/accept-reconciliation [post]
func (h *ProcurementHandler) AcceptReconciliation(c *gin.Context) {
	var req dto.AcceptReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reconciliation payload"))
		return
	}
	lines, err := h.service.AcceptReconciliation(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lines, nil)
}

// AcceptQuotes godoc
// @Summary Approve supplier selections
// @Tags Procurement
// @Accept json
// @Produce json
// @Param payload body dto.AcceptQuotesRequest true "Optional supplier overrides"
// @Success 200 {object} response.Envelope
// @Router /procurement/accept-quotes [post]
func (h *ProcurementHandler) AcceptQuotes(c *gin.Context) {
	var req dto.AcceptQuotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid quotes payload"))
		return
	}
	lines, err := h.service.AcceptQuotes(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lines, nil)
}

// Finalize godoc
// @Summary Commit the final order and close the run
// @Tags Procurement
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /procurement/finalize [post]
func (h *ProcurementHandler) Finalize(c *gin.Context) {
	final, err := h.service.Finalize(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, final, nil)
}

// Cancel godoc
// @Summary Cancel the in-flight run
// @Tags Procurement
// @Produce json
// @Success 204
// @Router /procurement/cancel [post]
func (h *ProcurementHandler) Cancel(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context(), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Status godoc
// @Summary Report the current pipeline position
// @Tags Procurement
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /procurement/status [get]
func (h *ProcurementHandler) Status(c *gin.Context) {
	start := time.Now()
	status, cacheHit, err := h.service.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, status, nil, meta)
}
