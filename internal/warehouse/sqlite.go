package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// ensure SQLiteSource implements Source
var _ Source = (*SQLiteSource)(nil)

// SQLiteSource reads the part mapping from a local SQLite file. Used for
// local runs and tests; Seed loads fixture rows.
type SQLiteSource struct {
	db       *sql.DB
	vendorID string
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS product_to_vendor (
	vendor_id TEXT NOT NULL,
	vendor_part_number TEXT NOT NULL,
	part_number TEXT NOT NULL
);
`

// NewSQLite opens (and if needed initializes) a SQLite part mapping.
func NewSQLite(path, vendorID string) (*SQLiteSource, error) {
	if vendorID == "" {
		vendorID = defaultVendorID
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}

	return &SQLiteSource{db: db, vendorID: vendorID}, nil
}

// Seed inserts fixture rows for the source's vendor.
func (s *SQLiteSource) Seed(ctx context.Context, records []PartRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	for _, rec := range records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO product_to_vendor (vendor_id, vendor_part_number, part_number) VALUES (?, ?, ?)`,
			s.vendorID, rec.VendorPartNumber, rec.PartNumber,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert seed row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}

func (s *SQLiteSource) Fetch(ctx context.Context) ([]PartRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT vendor_part_number, part_number FROM product_to_vendor WHERE vendor_id = ? ORDER BY rowid`,
		s.vendorID,
	)
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

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
