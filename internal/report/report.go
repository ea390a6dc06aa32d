package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pdm-data/partpricer/internal/pricing"
)

// Summary aggregates what a pricing run did.
type Summary struct {
	RunID     string
	Message   string
	Searched  int
	Priced    int
	NotFound  int
	MinCost   string
	MaxCost   string
	TotalCost string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// GenerateSummary computes run totals and price statistics from an
// aggregation outcome. Statistics come from the cleaned rows, whose costs
// are guaranteed numeric.
func GenerateSummary(runID string, out *pricing.Outcome, start, end time.Time) Summary {
	s := Summary{
		RunID:     runID,
		Message:   "part price scrape complete",
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
	}
	if out == nil {
		return s
	}

	s.Searched = len(out.Raw)
	s.Priced = len(out.Cleaned)
	s.NotFound = len(out.NotFound)

	var (
		total    decimal.Decimal
		min, max decimal.Decimal
		first    = true
	)
	for _, r := range out.Cleaned {
		d, err := decimal.NewFromString(r.Cost)
		if err != nil {
			continue
		}
		total = total.Add(d)
		if first {
			min, max = d, d
			first = false
			continue
		}
		if d.LessThan(min) {
			min = d
		}
		if d.GreaterThan(max) {
			max = d
		}
	}
	if !first {
		s.MinCost = min.String()
		s.MaxCost = max.String()
		s.TotalCost = total.String()
	}

	return s
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `Part Price Run Summary
----------------------
Run ID:    {{.RunID}}
Time:      {{.StartTime.Format "2006-01-02 15:04:05"}} - {{.EndTime.Format "2006-01-02 15:04:05"}}
Duration:  {{.Duration}}
Searched:  {{.Searched}} parts
Priced:    {{.Priced}}
Not Found: {{.NotFound}}
{{- if .TotalCost}}

Cost Range: {{.MinCost}} - {{.MaxCost}} (total {{.TotalCost}})
{{- end}}
`

	t, err := template.New("textReport").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("parse summary template: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	return nil
}
