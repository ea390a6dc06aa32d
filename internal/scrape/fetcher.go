package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pdm-data/partpricer/internal/fingerprint"
	"github.com/pdm-data/partpricer/internal/metrics"
	"github.com/pdm-data/partpricer/pkg/httpclient"
	"github.com/pdm-data/partpricer/pkg/proxy"
	"github.com/pdm-data/partpricer/pkg/useragent"
)

type contextKey string

const proxyKey contextKey = "proxy_url"

const defaultSearchBase = "https://www.rockauto.com"

// FetchConfig configures price lookups against the part search site.
type FetchConfig struct {
	// SearchBase is the scheme+host of the part search site.
	SearchBase string
	Timeout    time.Duration
	// MaxRedirects caps redirect following; zero means the default of
	// 10, negative disables redirects. The search site 302s exact-match
	// searches to the part page, so lookups must follow redirects.
	MaxRedirects int
	UAPool       *useragent.Pool
	ProxyPool    *proxy.Pool
	Fingerprint  fingerprint.Profile
	// Detectors identify bot-protection block pages. Defaults to
	// DefaultDetectors.
	Detectors []Detector
}

// Lookup is the outcome of a single price lookup. A lookup has exactly two
// usable outcomes: a price, or not found. Network errors, HTTP errors, and
// challenges all collapse into not found; the extra fields exist for
// logging and metrics only.
type Lookup struct {
	VendorPartNumber string
	Price            string
	Found            bool
	StatusCode       int
	ChallengeSrc     string
	Duration         time.Duration
	Err              string // non-empty if the request failed outright
}

// Fetcher looks up current prices one part at a time. Holding a single
// client across lookups keeps the underlying connections pooled.
type Fetcher struct {
	cfg       FetchConfig
	client    *httpclient.Client
	extractor Extractor
	logger    *slog.Logger
}

// NewFetcher initializes a Fetcher with the given configuration.
func NewFetcher(cfg FetchConfig, logger *slog.Logger) (*Fetcher, error) {
	if cfg.SearchBase == "" {
		cfg.SearchBase = defaultSearchBase
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRedirects == 0 {
		cfg.MaxRedirects = 10
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if string(cfg.Fingerprint) == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}
	if cfg.Detectors == nil {
		cfg.Detectors = DefaultDetectors()
	}
	if logger == nil {
		logger = slog.Default()
	}

	// The transport is created once per fetcher. Per-request proxy
	// rotation goes through the request context: the proxy func reads the
	// URL the lookup stashed there.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if val := req.Context().Value(proxyKey); val != nil {
			if u, ok := val.(*url.URL); ok {
				return u, nil
			}
		}
		if req.URL.Hostname() == "127.0.0.1" || req.URL.Hostname() == "localhost" {
			// keep system proxies out of local test traffic
			return nil, nil
		}
		return http.ProxyFromEnvironment(req)
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, proxyFunc)
	if err != nil {
		return nil, fmt.Errorf("setup transport: %w", err)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return &Fetcher{
		cfg:       cfg,
		client:    client,
		extractor: NewPriceExtractor(),
		logger:    logger,
	}, nil
}

// SearchURL builds the search page URL for a vendor part number.
func (f *Fetcher) SearchURL(vendorPartNumber string) string {
	return fmt.Sprintf("%s/en/partsearch/?partnum=%s", f.cfg.SearchBase, url.QueryEscape(vendorPartNumber))
}

// LookupPrice fetches the search page for one vendor part number and
// extracts its displayed price. Failures never propagate as errors; they
// classify as not found.
func (f *Fetcher) LookupPrice(ctx context.Context, vendorPartNumber string) Lookup {
	start := time.Now()
	result := Lookup{VendorPartNumber: vendorPartNumber}

	defer func() {
		outcome := "not_found"
		switch {
		case result.Found:
			outcome = "priced"
		case result.Err != "":
			outcome = "error"
		}
		metrics.RecordLookup(outcome, result.Duration, result.ChallengeSrc)
	}()

	var activeProxy *url.URL
	if f.cfg.ProxyPool != nil {
		activeProxy = f.cfg.ProxyPool.Next()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.SearchURL(vendorPartNumber), nil)
	if err != nil {
		result.Err = fmt.Sprintf("create request: %v", err)
		result.Duration = time.Since(start)
		return result
	}

	if activeProxy != nil {
		req = req.WithContext(context.WithValue(req.Context(), proxyKey, activeProxy))
	}

	req.Header.Set("User-Agent", f.cfg.UAPool.Next())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req.Context(), req)
	if err != nil {
		if activeProxy != nil {
			_ = f.cfg.ProxyPool.MarkFailure(activeProxy)
		}
		f.logger.Debug("lookup request failed", "part", vendorPartNumber, "error", err)
		result.Err = fmt.Sprintf("request failed: %v", err)
		result.Duration = time.Since(start)
		return result
	}
	defer resp.Body.Close()

	if activeProxy != nil {
		_ = f.cfg.ProxyPool.MarkSuccess(activeProxy)
	}

	result.StatusCode = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Err = fmt.Sprintf("read body: %v", err)
		result.Duration = time.Since(start)
		return result
	}

	if challenged, src := DetectChallenge(resp.StatusCode, resp.Header, body, f.cfg.Detectors); challenged {
		f.logger.Warn("lookup blocked by bot protection", "part", vendorPartNumber, "source", src)
		result.ChallengeSrc = src
		result.Duration = time.Since(start)
		return result
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Debug("lookup returned non-success status", "part", vendorPartNumber, "status", resp.StatusCode)
		result.Duration = time.Since(start)
		return result
	}

	if price, ok := f.extractor.Extract(body); ok {
		result.Price = price
		result.Found = true
	}
	result.Duration = time.Since(start)
	return result
}
