// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"strings"

	"github.com/Moe-Sakura/anime-search-api/constant"
	"github.com/Moe-Sakura/anime-search-api/key"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
	})
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.ServerPort, 3000, "TCP port the HTTP server listens on")
	register(key.ServerCORS, "*", "Comma-separated list of allowed CORS origins")

	register(key.HTTPTimeout, 15, "Timeout in seconds for direct fetches against rule sites")
	register(key.HTTPMirrorTimeout, 20, "Timeout in seconds for the mirror failover attempt.\nMirror round-trips add latency, so this should exceed http.timeout")
	register(key.HTTPMirrorPrefix, "https://rp.30hb.cn/?target=", "Reverse-proxy prefix prepended to the original URL on failover")
	register(key.HTTPUserAgent, constant.UserAgent, "User-Agent header sent with every fetch against rule sites")
	register(key.HTTPChromeTLS, false, "Dial TLS with a Chrome fingerprint instead of the stock Go handshake.\nHelps against sites fronted by anti-bot challenges")

	register(key.RulesRepo, "Predidit/KazumiRules", "GitHub repository holding the rule definitions, in owner/repo form")
	register(key.RulesBranch, "main", "Branch of the rule repository to sync from")
	register(key.RulesAutoUpdate, false, "Sync rules from the repository on startup")
	register(key.RulesUpdateSchedule, "", "Cron expression for periodic rule sync (e.g. \"@every 6h\").\nEmpty disables the scheduler")
	register(key.RulesGitHubProxy, "https://gh-proxy.com/", "Proxy prefix used when a direct GitHub request fails")

	register(key.BangumiAPIBase, "https://api.bgm.tv", "Base URL of the Bangumi API")
	register(key.BangumiUserAgent, "moe-sakura/anime-search-api (https://github.com/Moe-Sakura/anime-search-api)", "User-Agent sent to the Bangumi API, per their usage policy")
	register(key.BangumiAccessToken, "", "Server-side Bangumi access token used when the client supplies none")

	register(key.LogsWrite, false, "Write logs to the log directory instead of discarding them")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
}
