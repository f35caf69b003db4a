package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a purchasable ingredient tracked in inventory.
type Product struct {
	ID            string          `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	UnitOfMeasure string          `db:"unit_of_measure" json:"unitOfMeasure"`
	Stock         decimal.Decimal `db:"stock" json:"stock"`
	Active        bool            `db:"active" json:"active"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// InventorySnapshot maps product ids to the stock level observed at
// reconciliation time.
type InventorySnapshot map[string]decimal.Decimal

// ProductFilter constrains product listing queries.
type ProductFilter struct {
	Search string
	Active *bool
	Limit  int
	Offset int
}
