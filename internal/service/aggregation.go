package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/escuela-gastro/procurement-api/internal/models"
)

// Consolidate folds the lines of the given requests into per-product demand
// totals. Lines are grouped strictly by product id; matching on product names
// is not attempted, so two spellings of the same name stay separate products.
// The fold is associative and commutative: input order never changes the
// result, and the output is sorted by product id for determinism.
func Consolidate(requests []models.Request) []models.ConsolidatedLine {
	type bucket struct {
		line         models.ConsolidatedLine
		contributors map[string]struct{}
	}
	buckets := make(map[string]*bucket)

	for _, req := range requests {
		for _, line := range req.Lines {
			b, ok := buckets[line.ProductID]
			if !ok {
				b = &bucket{
					line: models.ConsolidatedLine{
						ProductID:      line.ProductID,
						ProductName:    line.ProductName,
						Unit:           line.UnitOfMeasure,
						TotalRequested: decimal.Zero,
					},
					contributors: make(map[string]struct{}),
				}
				buckets[line.ProductID] = b
			}
			b.line.TotalRequested = b.line.TotalRequested.Add(line.Quantity)
			b.line.IncludesAdditional = b.line.IncludesAdditional || line.IsAdditional
			b.contributors[req.ID] = struct{}{}
		}
	}

	result := make([]models.ConsolidatedLine, 0, len(buckets))
	for _, b := range buckets {
		ids := make([]string, 0, len(b.contributors))
		for id := range b.contributors {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		b.line.ContributingIDs = ids
		result = append(result, b.line)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ProductID < result[j].ProductID
	})
	return result
}
