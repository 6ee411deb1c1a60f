// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Server Surface - these keys configure the HTTP listener exposing the search stream.
const (
	ServerPort = "server.port"
	ServerCORS = "server.cors_origins"
)

// Outbound HTTP - these keys govern the resilient fetch layer used against rule sites.
const (
	HTTPTimeout       = "http.timeout"
	HTTPMirrorTimeout = "http.mirror_timeout"
	HTTPMirrorPrefix  = "http.mirror_prefix"
	HTTPUserAgent     = "http.user_agent"
	HTTPChromeTLS     = "http.chrome_tls"
)

// Rule Repository - these keys manage synchronization with the remote rule repository.
const (
	RulesRepo           = "rules.repo"
	RulesBranch         = "rules.branch"
	RulesAutoUpdate     = "rules.auto_update"
	RulesUpdateSchedule = "rules.update_schedule"
	RulesGitHubProxy    = "rules.github_proxy"
)

// Bangumi Integration - these keys configure the independent metadata API binding.
const (
	BangumiAPIBase     = "bangumi.api_base"
	BangumiUserAgent   = "bangumi.user_agent"
	BangumiAccessToken = "bangumi.access_token"
)

// Diagnostics - these keys configure the persistence of application logs.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)
