package proxy

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// entry tracks the health of a single proxy endpoint.
type entry struct {
	url           *url.URL
	failures      int
	disabled      bool
	disabledUntil time.Time
}

// Pool rotates outbound requests across a set of proxies, temporarily
// benching endpoints that keep failing.
type Pool struct {
	mu          sync.Mutex
	entries     []*entry
	next        int
	maxFailures int
	cooldown    time.Duration
}

// Config defines settings for the proxy pool.
type Config struct {
	// MaxFailures before benching a proxy temporarily.
	MaxFailures int
	// Cooldown is how long a benched proxy stays out of rotation.
	Cooldown time.Duration
}

// NewPool creates an empty pool. Zero config values get defaults.
func NewPool(cfg Config) *Pool {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Minute
	}
	return &Pool{
		maxFailures: cfg.MaxFailures,
		cooldown:    cfg.Cooldown,
	}
}

// LoadFile reads proxy URLs from a file, one per line. Blank lines and
// lines starting with '#' are skipped.
func (p *Pool) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open proxy file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read proxy file: %w", err)
	}

	return p.Add(urls...)
}

// Add parses raw URL strings and adds them to the rotation.
func (p *Pool) Add(rawURLs ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, raw := range rawURLs {
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("parse proxy url %q: %w", raw, err)
		}
		p.entries = append(p.entries, &entry{url: u})
	}
	return nil
}

// Next returns the next healthy proxy URL, or nil when the pool is empty
// or every proxy is cooling down.
func (p *Pool) Next() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.entries) == 0 {
		return nil
	}

	now := time.Now()
	start := p.next
	for {
		e := p.entries[p.next]
		p.next = (p.next + 1) % len(p.entries)

		if e.disabled && now.After(e.disabledUntil) {
			e.disabled = false
			e.failures = 0
		}
		if !e.disabled {
			return e.url
		}
		if p.next == start {
			return nil
		}
	}
}

// MarkSuccess records a successful request through the given proxy.
func (p *Pool) MarkSuccess(proxyURL *url.URL) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, err := p.find(proxyURL)
	if err != nil {
		return err
	}
	if e.failures > 0 {
		e.failures--
	}
	return nil
}

// MarkFailure records a failed request through the given proxy. Hitting
// the failure limit benches the proxy for the cooldown period.
func (p *Pool) MarkFailure(proxyURL *url.URL) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, err := p.find(proxyURL)
	if err != nil {
		return err
	}
	e.failures++
	if e.failures >= p.maxFailures {
		e.disabled = true
		e.disabledUntil = time.Now().Add(p.cooldown)
	}
	return nil
}

// find locates an entry by URL string. Caller must hold the lock.
func (p *Pool) find(u *url.URL) (*entry, error) {
	if u == nil {
		return nil, errors.New("proxy url cannot be nil")
	}
	target := u.String()
	for _, e := range p.entries {
		if e.url.String() == target {
			return e, nil
		}
	}
	return nil, fmt.Errorf("proxy %s not in pool", target)
}
