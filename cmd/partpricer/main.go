// partpricer scrapes current retail prices for one vendor's part numbers
// and publishes the price tables to object storage.
//
// Usage:
//   partpricer run [--warehouse snowflake|postgres|sqlite] [options]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pdm-data/partpricer/internal/fingerprint"
	"github.com/pdm-data/partpricer/internal/metrics"
	"github.com/pdm-data/partpricer/internal/objstore"
	"github.com/pdm-data/partpricer/internal/report"
	"github.com/pdm-data/partpricer/internal/runner"
	"github.com/pdm-data/partpricer/internal/scrape"
	"github.com/pdm-data/partpricer/internal/warehouse"
	"github.com/pdm-data/partpricer/pkg/proxy"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	app := &cli.App{
		Name:    "partpricer",
		Usage:   "Scrape vendor part prices into object storage",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"PARTPRICER_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Execute one full price scrape",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "warehouse",
						Value:   "snowflake",
						Usage:   "Part mapping source (snowflake, postgres, sqlite)",
						EnvVars: []string{"PARTPRICER_WAREHOUSE"},
					},
					&cli.StringFlag{
						Name:    "sf-user",
						Usage:   "Snowflake user",
						EnvVars: []string{"SF_USER"},
					},
					&cli.StringFlag{
						Name:    "sf-password",
						Usage:   "Snowflake password",
						EnvVars: []string{"SF_PASSWORD"},
					},
					&cli.StringFlag{
						Name:    "sf-account",
						Usage:   "Snowflake account identifier",
						EnvVars: []string{"SF_ACCOUNT"},
					},
					&cli.StringFlag{
						Name:    "sf-warehouse",
						Usage:   "Snowflake compute warehouse",
						EnvVars: []string{"SF_WAREHOUSE"},
					},
					&cli.StringFlag{
						Name:    "sf-role",
						Usage:   "Snowflake role",
						EnvVars: []string{"SF_ROLE"},
					},
					&cli.StringFlag{
						Name:    "pg-dsn",
						Usage:   "Postgres DSN for the staging mirror",
						EnvVars: []string{"PARTPRICER_PG_DSN"},
					},
					&cli.StringFlag{
						Name:    "sqlite-path",
						Usage:   "SQLite file for local part mappings",
						EnvVars: []string{"PARTPRICER_SQLITE_PATH"},
					},
					&cli.StringFlag{
						Name:    "vendor-id",
						Usage:   "Vendor filter for the mapping table (default: production vendor)",
						EnvVars: []string{"PARTPRICER_VENDOR_ID"},
					},
					&cli.StringFlag{
						Name:    "bucket",
						Value:   "pdm-matillion-pipeline",
						Usage:   "Destination S3 bucket",
						EnvVars: []string{"PARTPRICER_BUCKET"},
					},
					&cli.StringFlag{
						Name:    "search-base",
						Usage:   "Override the part search site base URL",
						EnvVars: []string{"PARTPRICER_SEARCH_BASE"},
					},
					&cli.DurationFlag{
						Name:    "delay",
						Value:   time.Second,
						Usage:   "Pause between lookups",
						EnvVars: []string{"PARTPRICER_DELAY"},
					},
					&cli.Float64Flag{
						Name:    "jitter",
						Usage:   "Randomize each pause by up to this fraction (0-1)",
						EnvVars: []string{"PARTPRICER_JITTER"},
					},
					&cli.DurationFlag{
						Name:    "timeout",
						Value:   10 * time.Second,
						Usage:   "Per-lookup HTTP timeout",
						EnvVars: []string{"PARTPRICER_TIMEOUT"},
					},
					&cli.IntFlag{
						Name:    "max-redirects",
						Value:   10,
						Usage:   "Redirects to follow per lookup (negative disables)",
						EnvVars: []string{"PARTPRICER_MAX_REDIRECTS"},
					},
					&cli.StringFlag{
						Name:    "tls-profile",
						Value:   string(fingerprint.ProfileChrome),
						Usage:   "TLS fingerprint profile (chrome, firefox, safari, go)",
						EnvVars: []string{"PARTPRICER_TLS_PROFILE"},
					},
					&cli.StringFlag{
						Name:    "proxy-file",
						Usage:   "File of proxy URLs to rotate through, one per line",
						EnvVars: []string{"PARTPRICER_PROXY_FILE"},
					},
					&cli.IntFlag{
						Name:    "metrics-port",
						Usage:   "Expose prometheus metrics on this port while running (0 = off)",
						EnvVars: []string{"PARTPRICER_METRICS_PORT"},
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Run the pipeline without uploading (results stay in memory)",
					},
					&cli.StringFlag{
						Name:    "summary",
						Value:   "text",
						Usage:   "Run summary format on stderr (text, json, none)",
						EnvVars: []string{"PARTPRICER_SUMMARY"},
					},
				},
				Action: runAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	ctx := c.Context
	logger := newLogger(c.String("log-level"))

	if port := c.Int("metrics-port"); port > 0 {
		srv := metrics.Start(port)
		defer func() { _ = srv.Stop(context.Background()) }()
		logger.Info("metrics server listening", "port", port)
	}

	source, err := openSource(ctx, c)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := source.Close(); cerr != nil {
			logger.Warn("closing warehouse source", "error", cerr)
		}
	}()

	var proxyPool *proxy.Pool
	if path := c.String("proxy-file"); path != "" {
		proxyPool = proxy.NewPool(proxy.Config{})
		if err := proxyPool.LoadFile(path); err != nil {
			return fmt.Errorf("load proxies: %w", err)
		}
	}

	fetcher, err := scrape.NewFetcher(scrape.FetchConfig{
		SearchBase:   c.String("search-base"),
		Timeout:      c.Duration("timeout"),
		MaxRedirects: c.Int("max-redirects"),
		Fingerprint:  fingerprint.Profile(c.String("tls-profile")),
		ProxyPool:    proxyPool,
	}, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}

	var store objstore.Store
	if c.Bool("dry-run") {
		logger.Info("dry run: uploads go to an in-memory store")
		store = objstore.NewMemory()
	} else {
		store, err = objstore.NewS3(ctx, c.String("bucket"))
		if err != nil {
			return fmt.Errorf("open object store: %w", err)
		}
	}

	r := &runner.Runner{
		Source:  source,
		Fetcher: fetcher,
		Store:   store,
		Delay:   c.Duration("delay"),
		Jitter:  c.Float64("jitter"),
		Logger:  logger,
	}

	summary, err := r.Run(ctx)
	if err != nil {
		return err
	}

	switch c.String("summary") {
	case "json":
		if err := report.WriteJSON(os.Stderr, summary); err != nil {
			return err
		}
	case "text":
		if err := report.WriteText(os.Stderr, summary); err != nil {
			return err
		}
	case "none":
	default:
		return fmt.Errorf("unknown summary format %q", c.String("summary"))
	}

	resp, err := runner.NewResponse(summary)
	if err != nil {
		return err
	}
	out, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func openSource(ctx context.Context, c *cli.Context) (warehouse.Source, error) {
	vendorID := c.String("vendor-id")

	switch c.String("warehouse") {
	case "snowflake":
		return warehouse.NewSnowflake(warehouse.SnowflakeConfig{
			User:      c.String("sf-user"),
			Password:  c.String("sf-password"),
			Account:   c.String("sf-account"),
			Warehouse: c.String("sf-warehouse"),
			Role:      c.String("sf-role"),
			VendorID:  vendorID,
		})
	case "postgres":
		return warehouse.NewPostgres(ctx, c.String("pg-dsn"), vendorID)
	case "sqlite":
		return warehouse.NewSQLite(c.String("sqlite-path"), vendorID)
	default:
		return nil, fmt.Errorf("unknown warehouse %q", c.String("warehouse"))
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
