// Package network provides the resilient HTTP fetch layer used against rule sites.
//
// Every fetch is tried directly first. When the failure looks like an
// anti-scraping block or a transient outage, the request is reissued exactly
// once through a configured reverse-proxy mirror, using a client with a longer
// timeout since mirror round-trips add latency.
package network

import (
	"net/http"
	"time"

	"github.com/Moe-Sakura/anime-search-api/key"
	"github.com/spf13/viper"
)

// Config carries the resolved fetch-layer settings. Values are read from the
// global configuration once at construction; the package keeps no hidden state.
type Config struct {
	Timeout       time.Duration
	MirrorTimeout time.Duration
	MirrorPrefix  string
	UserAgent     string
	ChromeTLS     bool
}

// ConfigFromViper resolves the fetch-layer settings from the global configuration.
func ConfigFromViper() Config {
	return Config{
		Timeout:       time.Duration(viper.GetInt(key.HTTPTimeout)) * time.Second,
		MirrorTimeout: time.Duration(viper.GetInt(key.HTTPMirrorTimeout)) * time.Second,
		MirrorPrefix:  viper.GetString(key.HTTPMirrorPrefix),
		UserAgent:     viper.GetString(key.HTTPUserAgent),
		ChromeTLS:     viper.GetBool(key.HTTPChromeTLS),
	}
}

// Client is the long-lived fetcher shared by all concurrent searches.
// Both underlying http.Clients are safe for concurrent use.
type Client struct {
	direct *http.Client
	mirror *http.Client
	prefix string
	ua     string
}

// New constructs a Client with a direct and a mirror http.Client sharing the tuned transport.
func New(cfg Config) *Client {
	return &Client{
		direct: NewHTTPClient(cfg.Timeout, cfg.ChromeTLS),
		mirror: NewHTTPClient(cfg.MirrorTimeout, cfg.ChromeTLS),
		prefix: cfg.MirrorPrefix,
		ua:     cfg.UserAgent,
	}
}

// NewHTTPClient builds an http.Client on the shared tuned transport.
// Collaborators with their own retry policies (rule updater, metadata client)
// use this directly instead of the failover path.
func NewHTTPClient(timeout time.Duration, chromeTLS bool) *http.Client {
	var transport http.RoundTripper = newTransport()
	if chromeTLS {
		transport = newFingerprintTransport()
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// newTransport initializes a tuned http.Transport with optimized pool and timeout parameters.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 30 * time.Second
	return t
}
