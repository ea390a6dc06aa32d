package pricing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pdm-data/partpricer/internal/scrape"
	"github.com/pdm-data/partpricer/internal/warehouse"
	"github.com/pdm-data/partpricer/pkg/ratelimit"
)

// Fetcher looks up the current price for one vendor part number.
type Fetcher interface {
	LookupPrice(ctx context.Context, vendorPartNumber string) scrape.Lookup
}

// Aggregator drives the fetch loop: one lookup per record, strictly
// sequential, with a fixed pause after every lookup so the scraped site is
// never hit with more than one request at a time.
type Aggregator struct {
	fetcher  Fetcher
	throttle *ratelimit.Throttle
	logger   *slog.Logger
}

// NewAggregator creates an aggregator. A nil throttle disables pausing.
func NewAggregator(fetcher Fetcher, throttle *ratelimit.Throttle, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		fetcher:  fetcher,
		throttle: throttle,
		logger:   logger,
	}
}

// Run looks up every record in input order and classifies each outcome.
// Exactly one PriceResult is produced per record; an ErrorEntry is added
// only when the lookup yielded no price. Context cancellation aborts the
// whole run.
func (a *Aggregator) Run(ctx context.Context, records []warehouse.PartRecord) (*Outcome, error) {
	out := &Outcome{
		Raw:         make([]PriceResult, 0, len(records)),
		NotFound:    []ErrorEntry{},
		MultiResult: []ErrorEntry{},
	}

	for i, rec := range records {
		lookup := a.fetcher.LookupPrice(ctx, rec.VendorPartNumber)

		if lookup.Found {
			out.Raw = append(out.Raw, PriceResult{
				SupplierPartNumber: rec.VendorPartNumber,
				PartNumber:         rec.PartNumber,
				Cost:               lookup.Price,
			})
			a.logger.Debug("priced part", "part", rec.VendorPartNumber, "cost", lookup.Price)
		} else {
			out.Raw = append(out.Raw, PriceResult{
				SupplierPartNumber: rec.VendorPartNumber,
				PartNumber:         rec.PartNumber,
				Cost:               CostNotFound,
			})
			out.NotFound = append(out.NotFound, ErrorEntry{
				VendorPartNumber: rec.VendorPartNumber,
				Reason:           ReasonNoResults,
			})
			a.logger.Debug("no price for part", "part", rec.VendorPartNumber, "status", lookup.StatusCode)
		}

		// Pause after every lookup, hit or miss.
		if err := a.throttle.Pause(ctx); err != nil {
			return nil, fmt.Errorf("throttle interrupted at record %d: %w", i, err)
		}
	}

	out.Cleaned = Clean(out.Raw)
	return out, nil
}
