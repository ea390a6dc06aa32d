package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/pdm-data/partpricer/internal/scrape"
)

// Clean re-extracts a decimal-number substring from every cost and keeps
// only the rows where extraction produced a valid number. Not-found rows
// contain no digits, so they drop out here. The matched string is kept
// verbatim, which makes cleaning idempotent on already-numeric costs.
func Clean(raw []PriceResult) []PriceResult {
	cleaned := make([]PriceResult, 0, len(raw))
	for _, r := range raw {
		m, ok := scrape.ExtractNumeric(r.Cost)
		if !ok {
			continue
		}
		if _, err := decimal.NewFromString(m); err != nil {
			continue
		}
		cleaned = append(cleaned, PriceResult{
			SupplierPartNumber: r.SupplierPartNumber,
			PartNumber:         r.PartNumber,
			Cost:               m,
		})
	}
	return cleaned
}
