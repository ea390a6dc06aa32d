package warehouse

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteSource_SeedAndFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parts.db")

	src, err := NewSQLite(path, "70084")
	if err != nil {
		t.Fatalf("failed to open sqlite source: %v", err)
	}
	defer src.Close()

	ctx := context.Background()
	seed := []PartRecord{
		{VendorPartNumber: "BRK-1001", PartNumber: "P-001"},
		{VendorPartNumber: "BRK-1002", PartNumber: "P-002"},
		{VendorPartNumber: "BRK-1003", PartNumber: "P-003"},
	}
	if err := src.Seed(ctx, seed); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	got, err := src.Fetch(ctx)
	if err != nil {
		t.Fatalf("failed to fetch: %v", err)
	}

	if len(got) != len(seed) {
		t.Fatalf("expected %d records, got %d", len(seed), len(got))
	}
	for i, rec := range seed {
		if got[i] != rec {
			t.Errorf("record %d: expected %+v, got %+v", i, rec, got[i])
		}
	}
}

func TestSQLiteSource_VendorFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parts.db")
	ctx := context.Background()

	other, err := NewSQLite(path, "99999")
	if err != nil {
		t.Fatalf("failed to open sqlite source: %v", err)
	}
	if err := other.Seed(ctx, []PartRecord{{VendorPartNumber: "X-1", PartNumber: "P-X"}}); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
	if err := other.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	src, err := NewSQLite(path, "70084")
	if err != nil {
		t.Fatalf("failed to reopen sqlite source: %v", err)
	}
	defer src.Close()

	got, err := src.Fetch(ctx)
	if err != nil {
		t.Fatalf("failed to fetch: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records for vendor 70084, got %d", len(got))
	}
}

func TestSQLiteSource_EmptyFetch(t *testing.T) {
	src, err := NewSQLite(filepath.Join(t.TempDir(), "empty.db"), "")
	if err != nil {
		t.Fatalf("failed to open sqlite source: %v", err)
	}
	defer src.Close()

	got, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("failed to fetch: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d records", len(got))
	}
}
