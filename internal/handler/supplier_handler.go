package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/escuela-gastro/procurement-api/internal/dto"
	"github.com/escuela-gastro/procurement-api/internal/models"
	appErrors "github.com/escuela-gastro/procurement-api/pkg/errors"
	"github.com/escuela-gastro/procurement-api/pkg/response"
)

type supplierService interface {
	Create(ctx context.Context, req dto.CreateSupplierRequest, actor *models.JWTClaims) (*models.Supplier, error)
	Get(ctx context.Context, id string) (*models.Supplier, error)
	List(ctx context.Context, activeOnly bool) ([]models.Supplier, error)
	UpsertOffering(ctx context.Context, supplierID string, req dto.UpsertOfferingRequest, actor *models.JWTClaims) (*models.SupplierOffering, error)
}

// SupplierHandler exposes supplier catalogue endpoints.
type SupplierHandler struct {
	service supplierService
}

// NewSupplierHandler builds a new handler.
func NewSupplierHandler(service supplierService) *SupplierHandler {
	return &SupplierHandler{service: service}
}

// Create godoc
// @Summary Register a supplier
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param payload body dto.CreateSupplierRequest true "Supplier payload"
// @Success 201 {object} response.Envelope
// @Router /suppliers [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	var req dto.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid supplier payload"))
		return
	}
	supplier, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, supplier)
}

// Get godoc
// @Summary Get one supplier
// @Tags Suppliers
// @Produce json
// @Param id path string true "Supplier ID"
// @Success 200 {object} response.Envelope
// @Router /suppliers/{id} [get]
func (h *SupplierHandler) Get(c *gin.Context) {
	supplier, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, supplier, nil)
}

// List godoc
// @Summary List suppliers
// @Tags Suppliers
// @Produce json
// @Param active query bool false "Only active suppliers"
// @Success 200 {object} response.Envelope
// @Router /suppliers [get]
func (h *SupplierHandler) List(c *gin.Context) {
	activeOnly := false
	if raw := c.Query("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "active must be a boolean"))
			return
		}
		activeOnly = parsed
	}
	suppliers, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suppliers, nil)
}

// UpsertOffering godoc
// @Summary List or re-price a supplier offering
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param id path string true "Supplier ID"
// @Param payload body dto.UpsertOfferingRequest true "Offering payload"
// @Success 200 {object} response.Envelope
// @Router /suppliers/{id}/offerings [put]
func (h *SupplierHandler) UpsertOffering(c *gin.Context) {
	var req dto.UpsertOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid offering payload"))
		return
	}
	offering, err := h.service.UpsertOffering(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offering, nil)
}
