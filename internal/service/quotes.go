package service

import (
	"fmt"
	"sort"

	"github.com/escuela-gastro/procurement-api/internal/models"
	appErrors "github.com/escuela-gastro/procurement-api/pkg/errors"
)

// SelectQuotes builds one quote line per shortfall product. Offers are ranked
// ascending by unit price, ties broken by supplier id so the ranking is
// deterministic. The cheapest offer becomes the default choice; a product
// nobody offers gets an empty offer list and no chosen supplier, which blocks
// finalization until the operator resolves it.
func SelectQuotes(lines []models.ReconciliationLine, offerings map[string][]models.SupplierOffer) []models.QuoteLine {
	result := make([]models.QuoteLine, 0, len(lines))
	for _, line := range lines {
		if !line.ToOrder.IsPositive() {
			continue
		}
		offers := make([]models.SupplierOffer, 0, len(offerings[line.ProductID]))
		for _, offer := range offerings[line.ProductID] {
			if !offer.Available {
				continue
			}
			offers = append(offers, offer)
		}
		sort.Slice(offers, func(i, j int) bool {
			if !offers[i].UnitPrice.Equal(offers[j].UnitPrice) {
				return offers[i].UnitPrice.LessThan(offers[j].UnitPrice)
			}
			return offers[i].SupplierID < offers[j].SupplierID
		})

		quote := models.QuoteLine{
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			Unit:           line.Unit,
			QuantityNeeded: line.ToOrder,
			Offers:         offers,
		}
		if len(offers) > 0 {
			chosen := offers[0].SupplierID
			quote.ChosenSupplierID = &chosen
		}
		result = append(result, quote)
	}
	return result
}

// ApplyQuoteSelections overrides the default supplier choices with operator
// picks. A selection must reference a supplier that actually offers the
// product.
func ApplyQuoteSelections(lines []models.QuoteLine, selections map[string]string) ([]models.QuoteLine, error) {
	byProduct := make(map[string]int, len(lines))
	for i, line := range lines {
		byProduct[line.ProductID] = i
	}
	result := append([]models.QuoteLine(nil), lines...)
	for productID, supplierID := range selections {
		idx, ok := byProduct[productID]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("product %s is not part of this quotation", productID))
		}
		found := false
		for _, offer := range result[idx].Offers {
			if offer.SupplierID == supplierID {
				found = true
				break
			}
		}
		if !found {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("supplier %s has no offer for product %s", supplierID, productID))
		}
		chosen := supplierID
		result[idx].ChosenSupplierID = &chosen
	}
	return result, nil
}

// BuildFinalLines converts accepted quote lines into committed purchase lines,
// computing lineTotal = quantity x unit price of the chosen supplier's offer.
// Every line must carry a chosen supplier.
func BuildFinalLines(lines []models.QuoteLine) ([]models.FinalOrderLine, error) {
	result := make([]models.FinalOrderLine, 0, len(lines))
	for _, line := range lines {
		if line.ChosenSupplierID == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("no supplier chosen for product %s", line.ProductID))
		}
		var offer *models.SupplierOffer
		for i := range line.Offers {
			if line.Offers[i].SupplierID == *line.ChosenSupplierID {
				offer = &line.Offers[i]
				break
			}
		}
		if offer == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("chosen supplier %s has no offer for product %s", *line.ChosenSupplierID, line.ProductID))
		}
		result = append(result, models.FinalOrderLine{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Unit:        line.Unit,
			Quantity:    line.QuantityNeeded,
			SupplierID:  offer.SupplierID,
			UnitPrice:   offer.UnitPrice,
			LineTotal:   line.QuantityNeeded.Mul(offer.UnitPrice),
		})
	}
	return result, nil
}
