// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// App is the canonical application identifier used for filesystem paths, env prefixes and CLI branding.
	App = "animesearch"

	// Version is the current application semantic version string.
	Version = "0.2.0"

	// UserAgent is the default HTTP User-Agent string used for requests against rule sites.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36"

	// KeywordPlaceholder is the token substituted with the percent-encoded keyword in a rule's search URL.
	KeywordPlaceholder = "@keyword"
)
