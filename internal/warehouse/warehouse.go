package warehouse

import "context"

// PartRecord maps a vendor's part number to our own catalog number.
// One record per warehouse row; no deduplication is performed.
type PartRecord struct {
	VendorPartNumber string
	PartNumber       string
}

// Source yields the vendor part mapping for a single vendor. The query is
// read-only; implementations must release their connection on Close
// whether or not Fetch succeeded.
type Source interface {
	// Fetch returns every row for the configured vendor, in warehouse
	// order. Any connection or query error is fatal to the run.
	Fetch(ctx context.Context) ([]PartRecord, error)
	Close() error
}
