package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/escuela-gastro/procurement-api/internal/models"
	appErrors "github.com/escuela-gastro/procurement-api/pkg/errors"
	"github.com/escuela-gastro/procurement-api/pkg/response"
)

type orderReader interface {
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, limit, offset int) ([]models.Order, error)
}

// OrderHandler exposes the order history endpoints.
type OrderHandler struct {
	orders orderReader
}

// NewOrderHandler builds a new handler.
func NewOrderHandler(orders orderReader) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Get godoc
// @Summary Get one order with its stage history
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Envelope
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "order not found"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load order"))
		return
	}
	response.JSON(c, http.StatusOK, order, nil)
}

// List godoc
// @Summary List past orders
// @Tags Orders
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} response.Envelope
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	orders, err := h.orders.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list orders"))
		return
	}
	response.JSON(c, http.StatusOK, orders, nil)
}
