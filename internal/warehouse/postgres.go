package warehouse

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ensure postgresSource implements Source
var _ Source = (*postgresSource)(nil)

// Staging mirrors of the warehouse mapping table live in Postgres, so dev
// and staging runs can go against those instead of the production
// warehouse.
type postgresSource struct {
	pool     *pgxpool.Pool
	vendorID string
}

const pgPartQuery = `
SELECT vendor_part_number, part_number
  FROM product_to_vendor
 WHERE vendor_id = $1
`

// NewPostgres connects to a Postgres mirror of the product-to-vendor table.
func NewPostgres(ctx context.Context, dsn, vendorID string) (Source, error) {
	if vendorID == "" {
		vendorID = defaultVendorID
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &postgresSource{pool: pool, vendorID: vendorID}, nil
}

func (s *postgresSource) Fetch(ctx context.Context) ([]PartRecord, error) {
	rows, err := s.pool.Query(ctx, pgPartQuery, s.vendorID)
	if err != nil {
		return nil, fmt.Errorf("query part numbers: %w", err)
	}
	defer rows.Close()

	var records []PartRecord
	for rows.Next() {
		var rec PartRecord
		if err := rows.Scan(&rec.VendorPartNumber, &rec.PartNumber); err != nil {
			return nil, fmt.Errorf("scan part row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate part rows: %w", err)
	}

	return records, nil
}

func (s *postgresSource) Close() error {
	s.pool.Close()
	return nil
}
