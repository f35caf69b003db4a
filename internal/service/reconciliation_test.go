package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escuela-gastro/procurement-api/internal/models"
	appErrors "github.com/escuela-gastro/procurement-api/pkg/errors"
)

func consolidated(productID string, total string) models.ConsolidatedLine {
	return models.ConsolidatedLine{
		ProductID:      productID,
		ProductName:    productID,
		Unit:           "kg",
		TotalRequested: qty(total),
	}
}

func TestReconcileComputesShortfall(t *testing.T) {
	lines := []models.ConsolidatedLine{
		consolidated("flour", "10"),
		consolidated("sugar", "4"),
	}
	inventory := models.InventorySnapshot{
		"flour": qty("3"),
		"sugar": qty("9"),
	}

	result := Reconcile(lines, inventory)
	require.Len(t, result, 2)

	assert.True(t, result[0].ToOrder.Equal(qty("7")), "10 requested minus 3 on hand")
	assert.True(t, result[1].ToOrder.IsZero(), "stock covers demand, clamp at zero")
	assert.True(t, result[1].StockOnHand.Equal(qty("9")))
}

func TestReconcileMissingProductTreatedAsZeroStock(t *testing.T) {
	result := Reconcile([]models.ConsolidatedLine{consolidated("saffron", "0.5")}, models.InventorySnapshot{})
	require.Len(t, result, 1)
	assert.True(t, result[0].StockOnHand.IsZero())
	assert.True(t, result[0].ToOrder.Equal(qty("0.5")))
}

func TestApplyReconciliationOverrides(t *testing.T) {
	base := Reconcile([]models.ConsolidatedLine{consolidated("flour", "10")}, models.InventorySnapshot{"flour": qty("3")})

	result, err := ApplyReconciliationOverrides(base, map[string]decimal.Decimal{"flour": qty("2")})
	require.NoError(t, err)
	assert.True(t, result[0].ToOrder.Equal(qty("2")), "under-ordering below the shortfall is allowed")
	assert.True(t, base[0].ToOrder.Equal(qty("7")), "input slice is not mutated")
}

func TestApplyReconciliationOverridesRejectsNegative(t *testing.T) {
	base := Reconcile([]models.ConsolidatedLine{consolidated("flour", "10")}, models.InventorySnapshot{})
	_, err := ApplyReconciliationOverrides(base, map[string]decimal.Decimal{"flour": qty("-1")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestApplyReconciliationOverridesUnknownProduct(t *testing.T) {
	base := Reconcile([]models.ConsolidatedLine{consolidated("flour", "10")}, models.InventorySnapshot{})
	_, err := ApplyReconciliationOverrides(base, map[string]decimal.Decimal{"ghost": qty("1")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
