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

type inventoryService interface {
	Create(ctx context.Context, req dto.CreateProductRequest, actor *models.JWTClaims) (*models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	AdjustStock(ctx context.Context, id string, req dto.AdjustStockRequest, actor *models.JWTClaims) (*models.Product, error)
}

// InventoryHandler exposes product and stock endpoints.
type InventoryHandler struct {
	service inventoryService
}

// NewInventoryHandler builds a new handler.
func NewInventoryHandler(service inventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// Create godoc
// @Summary Register a product
// @Tags Inventory
// @Accept json
// @Produce json
// @Param payload body dto.CreateProductRequest true "Product payload"
// @Success 201 {object} response.Envelope
// @Router /products [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid product payload"))
		return
	}
	product, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, product)
}

// Get godoc
// @Summary Get one product
// @Tags Inventory
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} response.Envelope
// @Router /products/{id} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	product, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, product, nil)
}

// List godoc
// @Summary List products
// @Tags Inventory
// @Produce json
// @Param search query string false "Name search"
// @Param active query bool false "Only active products"
// @Success 200 {object} response.Envelope
// @Router /products [get]
func (h *InventoryHandler) List(c *gin.Context) {
	filter := models.ProductFilter{Search: c.Query("search")}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "active must be a boolean"))
			return
		}
		filter.Active = &active
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil {
			filter.Offset = offset
		}
	}
	products, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, products, nil)
}

// AdjustStock godoc
// @Summary Apply a relative stock correction
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param payload body dto.AdjustStockRequest true "Stock delta"
// @Success 200 {object} response.Envelope
// @Router /products/{id}/stock [post]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid stock payload"))
		return
	}
	product, err := h.service.AdjustStock(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, product, nil)
}
