package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/escuela-gastro/procurement-api/internal/dto"
	"github.com/escuela-gastro/procurement-api/internal/models"
	appErrors "github.com/escuela-gastro/procurement-api/pkg/errors"
)

type supplierRepository interface {
	GetByID(ctx context.Context, id string) (*models.Supplier, error)
	List(ctx context.Context, activeOnly bool) ([]models.Supplier, error)
	Create(ctx context.Context, supplier *models.Supplier) error
	UpsertOffering(ctx context.Context, offering *models.SupplierOffering) error
}

// SupplierService manages the vendor catalogue and their price lists.
type SupplierService struct {
	repo      supplierRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSupplierService constructs the service.
func NewSupplierService(repo supplierRepository, validate *validator.Validate, logger *zap.Logger) *SupplierService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupplierService{repo: repo, validator: validate, logger: logger}
}

// Create registers a new supplier.
func (s *SupplierService) Create(ctx context.Context, req dto.CreateSupplierRequest, actor *models.JWTClaims) (*models.Supplier, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid supplier payload")
	}
	supplier := &models.Supplier{
		Name:   strings.TrimSpace(req.Name),
		Email:  optionalString(strings.TrimSpace(req.Email)),
		Phone:  optionalString(strings.TrimSpace(req.Phone)),
		Active: true,
	}
	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create supplier")
	}
	return supplier, nil
}

// Get returns one supplier.
func (s *SupplierService) Get(ctx context.Context, id string) (*models.Supplier, error) {
	supplier, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "supplier not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load supplier")
	}
	return supplier, nil
}

// List returns suppliers, optionally restricted to active ones.
func (s *SupplierService) List(ctx context.Context, activeOnly bool) ([]models.Supplier, error) {
	suppliers, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list suppliers")
	}
	return suppliers, nil
}

// UpsertOffering lists or re-prices a supplier's offering for one product.
func (s *SupplierService) UpsertOffering(ctx context.Context, supplierID string, req dto.UpsertOfferingRequest, actor *models.JWTClaims) (*models.SupplierOffering, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid offering payload")
	}
	if !req.UnitPrice.IsPositive() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unit price must be greater than zero")
	}
	if _, err := s.Get(ctx, supplierID); err != nil {
		return nil, err
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	offering := &models.SupplierOffering{
		SupplierID: supplierID,
		ProductID:  req.ProductID,
		UnitPrice:  req.UnitPrice,
		Available:  available,
	}
	if err := s.repo.UpsertOffering(ctx, offering); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert offering")
	}
	return offering, nil
}
