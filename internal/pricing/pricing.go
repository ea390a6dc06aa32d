package pricing

// PriceResult is one output row of a pricing run. Cost is either a bare
// decimal string or the CostNotFound sentinel.
type PriceResult struct {
	SupplierPartNumber string
	PartNumber         string
	Cost               string
}

// ErrorEntry records a lookup that produced no usable price.
type ErrorEntry struct {
	VendorPartNumber string
	Reason           string
}

// CostNotFound marks rows whose lookup returned no price.
const CostNotFound = "Not Found"

const (
	ReasonNoResults       = "No results found"
	ReasonMultipleResults = "Multiple results found"
)

// Outcome collects everything a run produced, in input order.
type Outcome struct {
	// Raw holds one result per input record, priced or not.
	Raw []PriceResult
	// Cleaned is Raw minus the not-found rows, costs normalized.
	Cleaned []PriceResult
	// NotFound lists the records whose lookup produced no price.
	NotFound []ErrorEntry
	// MultiResult is reserved for ambiguous lookups. The fetcher always
	// takes the first displayed price, so nothing populates it today; the
	// output schema and log file keep the category.
	MultiResult []ErrorEntry
}
