package dto

import "github.com/shopspring/decimal"

// CreateProductRequest describes the payload for registering a product.
type CreateProductRequest struct {
	Name          string          `json:"name" validate:"required"`
	UnitOfMeasure string          `json:"unitOfMeasure" validate:"required"`
	Stock         decimal.Decimal `json:"stock"`
}

// AdjustStockRequest applies a relative stock correction.
type AdjustStockRequest struct {
	Delta  decimal.Decimal `json:"delta" validate:"required"`
	Reason string          `json:"reason"`
}

// CreateSupplierRequest describes the payload for registering a supplier.
type CreateSupplierRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

// UpsertOfferingRequest lists or re-prices one supplier/product offering.
type UpsertOfferingRequest struct {
	ProductID string          `json:"productId" validate:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice" validate:"required"`
	Available *bool           `json:"available"`
}
