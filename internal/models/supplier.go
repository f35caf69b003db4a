package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier is a vendor the school can purchase from.
type Supplier struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// SupplierOffering is a supplier's listed unit price for one product.
type SupplierOffering struct {
	ID         string          `db:"id" json:"id"`
	SupplierID string          `db:"supplier_id" json:"supplierId"`
	ProductID  string          `db:"product_id" json:"productId"`
	UnitPrice  decimal.Decimal `db:"unit_price" json:"unitPrice"`
	Available  bool            `db:"available" json:"available"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`
}
