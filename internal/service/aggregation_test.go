package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escuela-gastro/procurement-api/internal/models"
)

func qty(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

func requestWithLines(id string, lines ...models.RequestLine) models.Request {
	return models.Request{ID: id, Lines: lines}
}

func TestConsolidateSumsByProduct(t *testing.T) {
	requests := []models.Request{
		requestWithLines("req-1",
			models.RequestLine{ProductID: "flour", ProductName: "Harina", Quantity: qty("5"), UnitOfMeasure: "kg"},
			models.RequestLine{ProductID: "eggs", ProductName: "Huevos", Quantity: qty("24"), UnitOfMeasure: "u"},
		),
		requestWithLines("req-2",
			models.RequestLine{ProductID: "flour", ProductName: "Harina", Quantity: qty("3.5"), UnitOfMeasure: "kg"},
		),
	}

	lines := Consolidate(requests)
	require.Len(t, lines, 2)

	assert.Equal(t, "eggs", lines[0].ProductID)
	assert.True(t, lines[0].TotalRequested.Equal(qty("24")))
	assert.Equal(t, []string{"req-1"}, lines[0].ContributingIDs)

	assert.Equal(t, "flour", lines[1].ProductID)
	assert.True(t, lines[1].TotalRequested.Equal(qty("8.5")))
	assert.Equal(t, []string{"req-1", "req-2"}, lines[1].ContributingIDs)
}

func TestConsolidateOrderInvariant(t *testing.T) {
	a := requestWithLines("req-a",
		models.RequestLine{ProductID: "flour", ProductName: "Harina", Quantity: qty("2"), UnitOfMeasure: "kg"},
		models.RequestLine{ProductID: "milk", ProductName: "Leche", Quantity: qty("6"), UnitOfMeasure: "l"},
	)
	b := requestWithLines("req-b",
		models.RequestLine{ProductID: "milk", ProductName: "Leche", Quantity: qty("4"), UnitOfMeasure: "l", IsAdditional: true},
	)
	c := requestWithLines("req-c",
		models.RequestLine{ProductID: "flour", ProductName: "Harina", Quantity: qty("1"), UnitOfMeasure: "kg"},
	)

	forward := Consolidate([]models.Request{a, b, c})
	backward := Consolidate([]models.Request{c, b, a})
	assert.Equal(t, forward, backward)
}

func TestConsolidateDoesNotMergeByName(t *testing.T) {
	requests := []models.Request{
		requestWithLines("req-1", models.RequestLine{ProductID: "tomato-1", ProductName: "Tomate", Quantity: qty("2"), UnitOfMeasure: "kg"}),
		requestWithLines("req-2", models.RequestLine{ProductID: "tomato-2", ProductName: "Tomate", Quantity: qty("3"), UnitOfMeasure: "kg"}),
	}

	lines := Consolidate(requests)
	require.Len(t, lines, 2)
}

func TestConsolidateFlagsAdditionalLines(t *testing.T) {
	requests := []models.Request{
		requestWithLines("req-1", models.RequestLine{ProductID: "saffron", ProductName: "Azafran", Quantity: qty("0.1"), UnitOfMeasure: "g"}),
		requestWithLines("req-2", models.RequestLine{ProductID: "saffron", ProductName: "Azafran", Quantity: qty("0.2"), UnitOfMeasure: "g", IsAdditional: true}),
	}

	lines := Consolidate(requests)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].IncludesAdditional)
}

func TestConsolidateEmptyInput(t *testing.T) {
	assert.Empty(t, Consolidate(nil))
}
