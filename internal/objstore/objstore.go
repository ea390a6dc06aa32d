package objstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pdm-data/partpricer/internal/metrics"
)

// Store is a durable blob store keyed by string paths. Put fully replaces
// the object at key.
type Store interface {
	Put(ctx context.Context, key string, body []byte) error
}

// The four objects every run overwrites.
const (
	KeyMultiResultLog = "multi_result_error_log.csv"
	KeyNotFoundLog    = "not_found_error_log.csv"
	KeyPrices         = "part_numbers_with_prices.csv"
	KeyCleanedPrices  = "cleaned_part_numbers_with_prices.csv"
)

// Headers fixes the column order for each output object.
var Headers = map[string][]string{
	KeyMultiResultLog: {"VendorPartNumber", "Error"},
	KeyNotFoundLog:    {"VendorPartNumber", "Error"},
	KeyPrices:         {"SupplierPartNumber", "Partnumber", "Cost"},
	KeyCleanedPrices:  {"SupplierPartNumber", "Partnumber", "Cost"},
}

// EncodeCSV serializes a header row plus data rows as UTF-8 CSV text.
func EncodeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteCSV serializes the rows under the given column order and uploads
// the result, replacing whatever was stored at key.
func WriteCSV(ctx context.Context, store Store, key string, header []string, rows [][]string) error {
	body, err := EncodeCSV(header, rows)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Put(ctx, key, body); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	metrics.RecordUpload(key)
	return nil
}

// ResetAll overwrites all four output objects with header-only CSVs,
// erasing any prior run's data. The keys are independent objects, so the
// uploads run concurrently; any failure aborts the reset.
func ResetAll(ctx context.Context, store Store) error {
	g, gCtx := errgroup.WithContext(ctx)
	for key, header := range Headers {
		key, header := key, header
		g.Go(func() error {
			return WriteCSV(gCtx, store, key, header, nil)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("reset output objects: %w", err)
	}
	return nil
}
