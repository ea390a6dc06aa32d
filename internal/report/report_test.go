package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pdm-data/partpricer/internal/pricing"
)

func testOutcome() *pricing.Outcome {
	return &pricing.Outcome{
		Raw: []pricing.PriceResult{
			{SupplierPartNumber: "A-1", PartNumber: "P-1", Cost: "19.99"},
			{SupplierPartNumber: "A-2", PartNumber: "P-2", Cost: pricing.CostNotFound},
			{SupplierPartNumber: "A-3", PartNumber: "P-3", Cost: "5"},
		},
		Cleaned: []pricing.PriceResult{
			{SupplierPartNumber: "A-1", PartNumber: "P-1", Cost: "19.99"},
			{SupplierPartNumber: "A-3", PartNumber: "P-3", Cost: "5"},
		},
		NotFound: []pricing.ErrorEntry{
			{VendorPartNumber: "A-2", Reason: pricing.ReasonNoResults},
		},
		MultiResult: []pricing.ErrorEntry{},
	}
}

func TestGenerateSummary(t *testing.T) {
	start := time.Now()
	end := start.Add(3 * time.Second)

	s := GenerateSummary("run-1", testOutcome(), start, end)

	if s.Searched != 3 {
		t.Errorf("expected 3 searched, got %d", s.Searched)
	}
	if s.Priced != 2 {
		t.Errorf("expected 2 priced, got %d", s.Priced)
	}
	if s.NotFound != 1 {
		t.Errorf("expected 1 not found, got %d", s.NotFound)
	}
	if s.Duration != 3*time.Second {
		t.Errorf("expected 3s duration, got %v", s.Duration)
	}
	if s.MinCost != "5" {
		t.Errorf("expected min 5, got %q", s.MinCost)
	}
	if s.MaxCost != "19.99" {
		t.Errorf("expected max 19.99, got %q", s.MaxCost)
	}
	if s.TotalCost != "24.99" {
		t.Errorf("expected total 24.99, got %q", s.TotalCost)
	}
}

func TestGenerateSummary_Empty(t *testing.T) {
	now := time.Now()
	s := GenerateSummary("run-2", &pricing.Outcome{}, now, now)

	if s.Searched != 0 || s.Priced != 0 || s.NotFound != 0 {
		t.Errorf("expected zero counts, got %+v", s)
	}
	if s.TotalCost != "" {
		t.Errorf("expected no cost stats without priced rows, got %q", s.TotalCost)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	s := GenerateSummary("run-3", testOutcome(), time.Now(), time.Now())

	if err := WriteJSON(&buf, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"Searched": 3`) {
		t.Errorf("expected searched count in JSON, got %s", buf.String())
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	s := GenerateSummary("run-4", testOutcome(), time.Now(), time.Now())

	if err := WriteText(&buf, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Searched:  3 parts") {
		t.Errorf("expected searched line, got:\n%s", out)
	}
	if !strings.Contains(out, "Cost Range: 5 - 19.99") {
		t.Errorf("expected cost range line, got:\n%s", out)
	}
}
