package engine

import (
	"fmt"
	"net/url"
	"strings"
)

// normalizeURL resolves a scraped href against the rule's base URL.
// Absolute URLs pass through, protocol-relative ones get https, and
// everything else is joined onto the base.
func normalizeURL(base, href string) string {
	switch {
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return strings.TrimRight(base, "/") + href
	default:
		return strings.TrimRight(base, "/") + "/" + href
	}
}

// origin reduces a page URL to its scheme://host root, the base detail-page
// links resolve against.
func origin(pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("page url %q has no origin", pageURL)
	}
	return parsed.Scheme + "://" + parsed.Host, nil
}
