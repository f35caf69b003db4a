package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/escuela-gastro/procurement-api/internal/models"
	"github.com/escuela-gastro/procurement-api/internal/service"
	appErrors "github.com/escuela-gastro/procurement-api/pkg/errors"
	"github.com/escuela-gastro/procurement-api/pkg/response"
)

type exportService interface {
	Generate(ctx context.Context, orderID string, format models.ExportFormat) (*service.ExportResult, error)
	ParseToken(token string, allowExpired bool) (orderID, relPath string, expiresAt time.Time, err error)
	Open(relPath string) (*os.File, error)
}

// ExportHandler exposes purchase order export endpoints.
type ExportHandler struct {
	service exportService
}

// NewExportHandler builds a new handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Generate godoc
// @Summary Render a purchase order as CSV or PDF
// @Tags Export
// @Produce json
// @Param id path string true "Order ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {object} response.Envelope
// @Router /orders/{id}/export [post]
func (h *ExportHandler) Generate(c *gin.Context) {
	format := models.ExportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))
	result, err := h.service.Generate(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download a generated purchase order
// @Tags Export
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Router /export/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Param("token")
	_, relPath, _, err := h.service.ParseToken(token, false)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "download link is invalid or expired"))
		return
	}
	file, err := h.service.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available"))
		return
	}
	defer file.Close()

	filename := filepath.Base(relPath)
	contentType := "text/csv"
	if strings.HasSuffix(filename, ".pdf") {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", contentType)
	c.File(file.Name())
}
