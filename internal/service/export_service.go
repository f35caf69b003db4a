package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/escuela-gastro/procurement-api/internal/models"
	appErrors "github.com/escuela-gastro/procurement-api/pkg/errors"
	"github.com/escuela-gastro/procurement-api/pkg/export"
	"github.com/escuela-gastro/procurement-api/pkg/storage"
)

type exportOrderReader interface {
	GetByID(ctx context.Context, id string) (*models.Order, error)
}

type exportSupplierReader interface {
	List(ctx context.Context, activeOnly bool) ([]models.Supplier, error)
}

type exportSettingsReader interface {
	GetDefaultCurrency(ctx context.Context) (string, error)
	GetPurchaseOrderFooter(ctx context.Context) (string, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	Footer    string
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders purchase orders as downloadable documents.
type ExportService struct {
	orders    exportOrderReader
	suppliers exportSupplierReader
	settings  exportSettingsReader
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// NewExportService constructs an ExportService.
func NewExportService(orders exportOrderReader, suppliers exportSupplierReader, settings exportSettingsReader, storage fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		orders:    orders,
		suppliers: suppliers,
		settings:  settings,
		storage:   storage,
		csv:       csv,
		pdf:       pdf,
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate renders the purchase order for a completed run and stores the file.
func (s *ExportService) Generate(ctx context.Context, orderID string, format models.ExportFormat) (*ExportResult, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "order not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load order")
	}
	if len(order.Stages.Final) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "order has no finalized lines to export")
	}

	dataset, title := s.buildDataset(ctx, order)

	var payload []byte
	switch format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %s", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := buildExportFilename(order, format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(order.ID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (orderID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildDataset(ctx context.Context, order *models.Order) (export.Dataset, string) {
	supplierNames := s.supplierNames(ctx)

	headers := []string{"Product", "Quantity", "Unit", "Supplier", "Unit Price", "Line Total"}
	rows := make([]map[string]string, 0, len(order.Stages.Final)+1)
	for _, line := range order.Stages.Final {
		supplier := line.SupplierID
		if name, ok := supplierNames[line.SupplierID]; ok {
			supplier = name
		}
		rows = append(rows, map[string]string{
			"Product":    line.ProductName,
			"Quantity":   line.Quantity.String(),
			"Unit":       line.Unit,
			"Supplier":   supplier,
			"Unit Price": line.UnitPrice.StringFixed(2),
			"Line Total": line.LineTotal.StringFixed(2),
		})
	}
	total := order.Total.StringFixed(2)
	if currency := s.defaultCurrency(ctx); currency != "" {
		total = total + " " + currency
	}
	rows = append(rows, map[string]string{
		"Product":    "TOTAL",
		"Quantity":   "",
		"Unit":       "",
		"Supplier":   "",
		"Unit Price": "",
		"Line Total": total,
	})
	if footer := s.footer(ctx); footer != "" {
		rows = append(rows, map[string]string{"Product": footer})
	}

	title := fmt.Sprintf("Purchase Order Week %d", order.WeekNumber)
	return export.Dataset{Headers: headers, Rows: rows}, title
}

// footer prefers the operator-managed setting over the static config value.
func (s *ExportService) footer(ctx context.Context) string {
	if s.settings != nil {
		footer, err := s.settings.GetPurchaseOrderFooter(ctx)
		if err == nil && footer != "" {
			return footer
		}
	}
	return s.cfg.Footer
}

func (s *ExportService) defaultCurrency(ctx context.Context) string {
	if s.settings == nil {
		return ""
	}
	currency, err := s.settings.GetDefaultCurrency(ctx)
	if err != nil {
		return ""
	}
	return currency
}

func (s *ExportService) supplierNames(ctx context.Context) map[string]string {
	names := map[string]string{}
	if s.suppliers == nil {
		return names
	}
	suppliers, err := s.suppliers.List(ctx, false)
	if err != nil {
		s.logger.Warn("failed to resolve supplier names for export", zap.Error(err))
		return names
	}
	for _, supplier := range suppliers {
		names[supplier.ID] = supplier.Name
	}
	return names
}

func buildExportFilename(order *models.Order, format models.ExportFormat) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("purchase_order_week%02d_%s_%s.%s", order.WeekNumber, sanitizeFilename(order.ID), timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
