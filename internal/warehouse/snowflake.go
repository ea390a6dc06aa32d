package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	sf "github.com/snowflakedb/gosnowflake"
)

// ensure snowflakeSource implements Source
var _ Source = (*snowflakeSource)(nil)

// SnowflakeConfig carries the externally provisioned warehouse credentials.
type SnowflakeConfig struct {
	User      string
	Password  string
	Account   string
	Warehouse string
	Role      string
	// VendorID filters the mapping table to one vendor. Defaults to the
	// production vendor when empty.
	VendorID string
}

const defaultVendorID = "70084"

const partQuery = `
SELECT VENDOR_PART_NUMBER, PART_NUMBER
  FROM SHARED_VELOCITY.ERP_COMPLETE.PRODUCT_TO_VENDOR
 WHERE vendor_id = ?
`

type snowflakeSource struct {
	db       *sql.DB
	vendorID string
}

// NewSnowflake opens a Snowflake connection for the product-to-vendor
// mapping table.
func NewSnowflake(cfg SnowflakeConfig) (Source, error) {
	if cfg.VendorID == "" {
		cfg.VendorID = defaultVendorID
	}

	dsn, err := sf.DSN(&sf.Config{
		User:      cfg.User,
		Password:  cfg.Password,
		Account:   cfg.Account,
		Warehouse: cfg.Warehouse,
		Role:      cfg.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("build snowflake dsn: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("open snowflake connection: %w", err)
	}

	return &snowflakeSource{db: db, vendorID: cfg.VendorID}, nil
}

func (s *snowflakeSource) Fetch(ctx context.Context) ([]PartRecord, error) {
	rows, err := s.db.QueryContext(ctx, partQuery, s.vendorID)
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

func (s *snowflakeSource) Close() error {
	return s.db.Close()
}
