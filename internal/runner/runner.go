package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pdm-data/partpricer/internal/objstore"
	"github.com/pdm-data/partpricer/internal/pricing"
	"github.com/pdm-data/partpricer/internal/report"
	"github.com/pdm-data/partpricer/internal/warehouse"
	"github.com/pdm-data/partpricer/pkg/ratelimit"
)

// Runner wires the whole pipeline together: reset the output objects, read
// the part mapping, look up every price, write the four CSVs. All client
// handles are injected; the runner owns none of their lifecycles.
type Runner struct {
	Source  warehouse.Source
	Fetcher pricing.Fetcher
	Store   objstore.Store
	// Delay is the pause between lookups. Zero disables throttling
	// (tests); production runs use one second.
	Delay  time.Duration
	Jitter float64
	Logger *slog.Logger
}

// Response mirrors the platform invocation contract.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type responseBody struct {
	Message       string `json:"message"`
	SearchedCount int    `json:"searched_count"`
}

// Run executes one full pass: Reset, Read, Fetch-all, Write. Any error
// other than a per-record lookup failure aborts the run; there is no
// partial summary.
func (r *Runner) Run(ctx context.Context) (report.Summary, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	runID := uuid.New().String()
	start := time.Now().UTC()
	throttle := ratelimit.New(r.Delay, r.Jitter)
	logger.Info("starting price run", "run_id", runID, "delay", throttle.Interval())

	// Reset first so a later abort still leaves clean header-only files.
	if err := objstore.ResetAll(ctx, r.Store); err != nil {
		return report.Summary{}, fmt.Errorf("reset outputs: %w", err)
	}

	records, err := r.Source.Fetch(ctx)
	if err != nil {
		return report.Summary{}, fmt.Errorf("read warehouse: %w", err)
	}
	logger.Info("fetched part mapping", "run_id", runID, "records", len(records))

	agg := pricing.NewAggregator(r.Fetcher, throttle, logger)
	out, err := agg.Run(ctx, records)
	if err != nil {
		return report.Summary{}, fmt.Errorf("aggregate prices: %w", err)
	}

	if err := r.writeOutputs(ctx, out); err != nil {
		return report.Summary{}, err
	}

	summary := report.GenerateSummary(runID, out, start, time.Now().UTC())
	logger.Info("price run complete",
		"run_id", runID,
		"searched", summary.Searched,
		"priced", summary.Priced,
		"not_found", summary.NotFound,
		"duration", summary.Duration,
	)
	return summary, nil
}

// writeOutputs uploads the result CSVs. Error logs are only written when
// non-empty; the reset already left them header-only.
func (r *Runner) writeOutputs(ctx context.Context, out *pricing.Outcome) error {
	if len(out.MultiResult) > 0 {
		rows := errorRows(out.MultiResult)
		if err := objstore.WriteCSV(ctx, r.Store, objstore.KeyMultiResultLog, objstore.Headers[objstore.KeyMultiResultLog], rows); err != nil {
			return err
		}
	}
	if len(out.NotFound) > 0 {
		rows := errorRows(out.NotFound)
		if err := objstore.WriteCSV(ctx, r.Store, objstore.KeyNotFoundLog, objstore.Headers[objstore.KeyNotFoundLog], rows); err != nil {
			return err
		}
	}

	if err := objstore.WriteCSV(ctx, r.Store, objstore.KeyPrices, objstore.Headers[objstore.KeyPrices], priceRows(out.Raw)); err != nil {
		return err
	}
	return objstore.WriteCSV(ctx, r.Store, objstore.KeyCleanedPrices, objstore.Headers[objstore.KeyCleanedPrices], priceRows(out.Cleaned))
}

// Handle is the platform entry point. The event payload is ignored; the
// trigger carries no parameters.
func (r *Runner) Handle(ctx context.Context, event json.RawMessage) (Response, error) {
	_ = event

	summary, err := r.Run(ctx)
	if err != nil {
		return Response{}, err
	}
	return NewResponse(summary)
}

// NewResponse builds the invocation response for a completed run.
func NewResponse(summary report.Summary) (Response, error) {
	body, err := json.Marshal(responseBody{
		Message:       summary.Message,
		SearchedCount: summary.Searched,
	})
	if err != nil {
		return Response{}, fmt.Errorf("encode response: %w", err)
	}
	return Response{StatusCode: 200, Body: string(body)}, nil
}

func priceRows(results []pricing.PriceResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.SupplierPartNumber, r.PartNumber, r.Cost})
	}
	return rows
}

func errorRows(entries []pricing.ErrorEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.VendorPartNumber, e.Reason})
	}
	return rows
}
