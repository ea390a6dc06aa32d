package scrape

import (
	"bytes"
	"net/http"
	"strings"
)

// Detector inspects a lookup response for a bot-protection challenge or
// block page. A challenged lookup still classifies as "not found", but the
// source is surfaced in logs and metrics so operators can tell blocking
// apart from parts the site genuinely does not stock.
type Detector func(statusCode int, header http.Header, body []byte) (detected bool, source string)

// DefaultDetectors returns the standard challenge detectors.
func DefaultDetectors() []Detector {
	return []Detector{
		detectCloudflare,
		detectAkamai,
		detectDataDome,
	}
}

// DetectChallenge runs the response through all detectors and returns the
// first match.
func DetectChallenge(statusCode int, header http.Header, body []byte, detectors []Detector) (bool, string) {
	for _, d := range detectors {
		if detected, source := d(statusCode, header, body); detected {
			return true, source
		}
	}
	return false, ""
}

func detectCloudflare(statusCode int, header http.Header, body []byte) (bool, string) {
	if statusCode != http.StatusForbidden && statusCode != http.StatusServiceUnavailable {
		return false, ""
	}
	if strings.Contains(strings.ToLower(header.Get("Server")), "cloudflare") {
		return true, "Cloudflare"
	}
	if bytes.Contains(body, []byte("cf-browser-verification")) ||
		bytes.Contains(body, []byte("cf-turnstile")) ||
		bytes.Contains(body, []byte("Attention Required! | Cloudflare")) {
		return true, "Cloudflare"
	}
	return false, ""
}

func detectAkamai(statusCode int, header http.Header, body []byte) (bool, string) {
	if statusCode != http.StatusForbidden {
		return false, ""
	}
	if strings.Contains(strings.ToLower(header.Get("Server")), "akamai") {
		return true, "Akamai"
	}
	// Akamai block pages carry a generic "Reference #" block
	if bytes.Contains(body, []byte("Reference #")) && bytes.Contains(body, []byte("Access Denied")) {
		return true, "Akamai"
	}
	return false, ""
}

func detectDataDome(statusCode int, header http.Header, body []byte) (bool, string) {
	if statusCode != http.StatusForbidden {
		return false, ""
	}
	if strings.Contains(strings.ToLower(header.Get("Server")), "datadome") {
		return true, "DataDome"
	}
	if header.Get("X-DataDome") != "" || header.Get("X-DataDome-Response") != "" {
		return true, "DataDome"
	}
	if bytes.Contains(body, []byte("geo.captcha-delivery.com")) {
		return true, "DataDome"
	}
	return false, ""
}
