package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/escuela-gastro/procurement-api/internal/models"
	appErrors "github.com/escuela-gastro/procurement-api/pkg/errors"
)

// Reconcile compares consolidated demand against the inventory snapshot and
// computes the default quantity to order per line:
// toOrder = max(0, totalRequested - stockOnHand). Products missing from the
// snapshot are treated as out of stock.
func Reconcile(lines []models.ConsolidatedLine, inventory models.InventorySnapshot) []models.ReconciliationLine {
	result := make([]models.ReconciliationLine, 0, len(lines))
	for _, line := range lines {
		stock := decimal.Zero
		if s, ok := inventory[line.ProductID]; ok {
			stock = s
		}
		toOrder := line.TotalRequested.Sub(stock)
		if toOrder.IsNegative() {
			toOrder = decimal.Zero
		}
		result = append(result, models.ReconciliationLine{
			ConsolidatedLine: line,
			StockOnHand:      stock,
			ToOrder:          toOrder,
		})
	}
	return result
}

// ApplyReconciliationOverrides replaces the computed toOrder quantities with
// operator-entered values. Overrides below zero are rejected; values below the
// computed shortfall are allowed (the operator may deliberately under-order).
func ApplyReconciliationOverrides(lines []models.ReconciliationLine, overrides map[string]decimal.Decimal) ([]models.ReconciliationLine, error) {
	byProduct := make(map[string]int, len(lines))
	for i, line := range lines {
		byProduct[line.ProductID] = i
	}
	result := append([]models.ReconciliationLine(nil), lines...)
	for productID, qty := range overrides {
		idx, ok := byProduct[productID]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("product %s is not part of this reconciliation", productID))
		}
		if qty.IsNegative() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("toOrder for product %s must not be negative", productID))
		}
		result[idx].ToOrder = qty
	}
	return result, nil
}
