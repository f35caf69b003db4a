package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/escuela-gastro/procurement-api/internal/dto"
	"github.com/escuela-gastro/procurement-api/internal/models"
	appErrors "github.com/escuela-gastro/procurement-api/pkg/errors"
)

type inventoryRepository interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	AdjustStock(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error)
}

// InventoryService manages the product catalogue and stock corrections.
type InventoryService struct {
	repo      inventoryRepository
	audit     requestAuditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInventoryService constructs the service.
func NewInventoryService(repo inventoryRepository, audit requestAuditLogger, validate *validator.Validate, logger *zap.Logger) *InventoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// Create registers a new product.
func (s *InventoryService) Create(ctx context.Context, req dto.CreateProductRequest, actor *models.JWTClaims) (*models.Product, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid product payload")
	}
	if req.Stock.IsNegative() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "initial stock cannot be negative")
	}
	product := &models.Product{
		Name:          strings.TrimSpace(req.Name),
		UnitOfMeasure: strings.TrimSpace(req.UnitOfMeasure),
		Stock:         req.Stock,
		Active:        true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create product")
	}
	return product, nil
}

// Get returns one product.
func (s *InventoryService) Get(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "product not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load product")
	}
	return product, nil
}

// List returns products matching the filter.
func (s *InventoryService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list products")
	}
	return products, nil
}

// AdjustStock applies a relative correction to a product's stock level. The
// repository rejects adjustments that would drive stock below zero.
func (s *InventoryService) AdjustStock(ctx context.Context, id string, req dto.AdjustStockRequest, actor *models.JWTClaims) (*models.Product, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stock adjustment")
	}
	if req.Delta.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "delta must be non-zero")
	}

	newStock, err := s.repo.AdjustStock(ctx, id, req.Delta)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "adjustment would drive stock negative or product not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to adjust stock")
	}

	s.emitAudit(ctx, actor, id, req)

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return &models.Product{ID: id, Stock: newStock}, nil
	}
	return product, nil
}

func (s *InventoryService) emitAudit(ctx context.Context, actor *models.JWTClaims, productID string, req dto.AdjustStockRequest) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{"delta": req.Delta.String(), "reason": req.Reason})
	log := &models.AuditLog{
		UserID:     userIDPtr(actor),
		Action:     models.AuditActionStockAdjust,
		Resource:   "product",
		ResourceID: &productID,
		NewValues:  payload,
		IPAddress:  "system",
		UserAgent:  "inventory-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record stock adjustment audit", zap.Error(err))
	}
}
