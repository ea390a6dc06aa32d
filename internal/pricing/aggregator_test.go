package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/pdm-data/partpricer/internal/scrape"
	"github.com/pdm-data/partpricer/internal/warehouse"
	"github.com/pdm-data/partpricer/pkg/ratelimit"
)

// fakeFetcher maps vendor part numbers to prices; missing entries are not found.
type fakeFetcher struct {
	prices map[string]string
	calls  []string
}

func (f *fakeFetcher) LookupPrice(ctx context.Context, vpn string) scrape.Lookup {
	f.calls = append(f.calls, vpn)
	if price, ok := f.prices[vpn]; ok {
		return scrape.Lookup{VendorPartNumber: vpn, Price: price, Found: true, StatusCode: 200}
	}
	return scrape.Lookup{VendorPartNumber: vpn, StatusCode: 200}
}

func TestAggregator_OneResultPerRecordInOrder(t *testing.T) {
	records := []warehouse.PartRecord{
		{VendorPartNumber: "A-1", PartNumber: "P-1"},
		{VendorPartNumber: "A-2", PartNumber: "P-2"},
		{VendorPartNumber: "A-3", PartNumber: "P-3"},
	}
	fetcher := &fakeFetcher{prices: map[string]string{
		"A-1": "19.99",
		"A-3": "5",
	}}

	agg := NewAggregator(fetcher, ratelimit.New(0, 0), nil)
	out, err := agg.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(out.Raw) != 3 {
		t.Fatalf("expected 3 raw results, got %d", len(out.Raw))
	}
	for i, rec := range records {
		if out.Raw[i].SupplierPartNumber != rec.VendorPartNumber {
			t.Errorf("row %d: expected %s, got %s", i, rec.VendorPartNumber, out.Raw[i].SupplierPartNumber)
		}
		if out.Raw[i].PartNumber != rec.PartNumber {
			t.Errorf("row %d: internal part number not carried through", i)
		}
	}

	if out.Raw[0].Cost != "19.99" || out.Raw[2].Cost != "5" {
		t.Errorf("priced rows wrong: %+v", out.Raw)
	}
	if out.Raw[1].Cost != CostNotFound {
		t.Errorf("expected sentinel cost for A-2, got %q", out.Raw[1].Cost)
	}
}

func TestAggregator_NotFoundMatchesErrorEntries(t *testing.T) {
	records := []warehouse.PartRecord{
		{VendorPartNumber: "A-1", PartNumber: "P-1"},
		{VendorPartNumber: "A-2", PartNumber: "P-2"},
	}
	fetcher := &fakeFetcher{prices: map[string]string{"A-1": "10.00"}}

	agg := NewAggregator(fetcher, nil, nil)
	out, err := agg.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// cost == "Not Found" iff a matching error entry exists
	notFound := map[string]bool{}
	for _, e := range out.NotFound {
		if e.Reason != ReasonNoResults {
			t.Errorf("unexpected reason %q", e.Reason)
		}
		notFound[e.VendorPartNumber] = true
	}
	for _, r := range out.Raw {
		if (r.Cost == CostNotFound) != notFound[r.SupplierPartNumber] {
			t.Errorf("sentinel/error mismatch for %s", r.SupplierPartNumber)
		}
	}
}

func TestAggregator_MultiResultStaysEmpty(t *testing.T) {
	fetcher := &fakeFetcher{prices: map[string]string{"A-1": "1.00"}}
	agg := NewAggregator(fetcher, nil, nil)

	out, err := agg.Run(context.Background(), []warehouse.PartRecord{
		{VendorPartNumber: "A-1", PartNumber: "P-1"},
		{VendorPartNumber: "A-2", PartNumber: "P-2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.MultiResult == nil {
		t.Fatal("expected reserved multi-result collection to exist")
	}
	if len(out.MultiResult) != 0 {
		t.Errorf("expected reserved multi-result collection to stay empty, got %d", len(out.MultiResult))
	}
}

func TestAggregator_EmptyInput(t *testing.T) {
	agg := NewAggregator(&fakeFetcher{}, nil, nil)
	out, err := agg.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Raw) != 0 || len(out.NotFound) != 0 || len(out.Cleaned) != 0 {
		t.Errorf("expected empty outcome, got %+v", out)
	}
}

func TestAggregator_ThrottleAppliedPerRecord(t *testing.T) {
	records := []warehouse.PartRecord{
		{VendorPartNumber: "A-1"}, {VendorPartNumber: "A-2"}, {VendorPartNumber: "A-3"},
	}
	fetcher := &fakeFetcher{}

	agg := NewAggregator(fetcher, ratelimit.New(20*time.Millisecond, 0), nil)

	start := time.Now()
	if _, err := agg.Run(context.Background(), records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Errorf("expected at least 60ms of throttling for 3 records, got %v", elapsed)
	}
	if len(fetcher.calls) != 3 {
		t.Errorf("expected 3 lookups, got %d", len(fetcher.calls))
	}
}

func TestAggregator_CancelAbortsRun(t *testing.T) {
	records := []warehouse.PartRecord{
		{VendorPartNumber: "A-1"}, {VendorPartNumber: "A-2"},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg := NewAggregator(&fakeFetcher{}, ratelimit.New(time.Hour, 0), nil)
	if _, err := agg.Run(ctx, records); err == nil {
		t.Fatal("expected error when context is canceled")
	}
}
