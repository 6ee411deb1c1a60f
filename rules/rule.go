// Package rules manages the declarative site descriptors that drive searches.
//
// Each rule is a JSON document naming a site, its search endpoint and the
// XPath expressions used to pull results and episode lists out of its pages.
// Rule files in the wild are hand-written and inconsistent about key casing,
// so decoding resolves aliases instead of requiring exact field names.
package rules

import (
	"encoding/json"
	"strings"
)

// Rule describes one searchable site.
type Rule struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	BaseURL   string `json:"baseUrl"`
	SearchURL string `json:"searchURL"`

	SearchList   string `json:"searchList"`
	SearchName   string `json:"searchName"`
	SearchResult string `json:"searchResult"`

	ChapterRoads  string `json:"chapterRoads"`
	ChapterResult string `json:"chapterResult"`

	UsePost         bool `json:"usePost"`
	UseLegacyParser bool `json:"useLegacyParser"`
	MuliSources     bool `json:"muliSources"`
	UseWebview      bool `json:"useWebview"`
	UseNativePlayer bool `json:"useNativePlayer"`

	AdBlocker bool   `json:"adBlocker"`
	UserAgent string `json:"userAgent"`
	Referer   string `json:"referer"`

	Color string   `json:"color"`
	Tags  []string `json:"tags,omitempty"`
	Magic string   `json:"magic,omitempty"`

	API  string `json:"api"`
	Type string `json:"type"`
}

// canonicalKey collapses the casing and underscore variants seen across rule
// files, so "search_url", "searchUrl" and "SearchURL" all land on one field.
func canonicalKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "")
}

// UnmarshalJSON decodes a rule document, resolving key aliases and applying
// the defaults that most published rules leave implicit.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.applyDefaults()

	for key, value := range raw {
		var err error
		switch canonicalKey(key) {
		case "name":
			err = json.Unmarshal(value, &r.Name)
		case "version":
			err = json.Unmarshal(value, &r.Version)
		case "baseurl":
			err = json.Unmarshal(value, &r.BaseURL)
		case "searchurl":
			err = json.Unmarshal(value, &r.SearchURL)
		case "searchlist":
			err = json.Unmarshal(value, &r.SearchList)
		case "searchname":
			err = json.Unmarshal(value, &r.SearchName)
		case "searchresult":
			err = json.Unmarshal(value, &r.SearchResult)
		case "chapterroads":
			err = json.Unmarshal(value, &r.ChapterRoads)
		case "chapterresult":
			err = json.Unmarshal(value, &r.ChapterResult)
		case "usepost":
			err = json.Unmarshal(value, &r.UsePost)
		case "uselegacyparser":
			err = json.Unmarshal(value, &r.UseLegacyParser)
		case "mulisources", "multisources":
			err = json.Unmarshal(value, &r.MuliSources)
		case "usewebview":
			err = json.Unmarshal(value, &r.UseWebview)
		case "usenativeplayer":
			err = json.Unmarshal(value, &r.UseNativePlayer)
		case "adblocker":
			err = json.Unmarshal(value, &r.AdBlocker)
		case "useragent":
			err = json.Unmarshal(value, &r.UserAgent)
		case "referer":
			err = json.Unmarshal(value, &r.Referer)
		case "color":
			err = json.Unmarshal(value, &r.Color)
		case "tags":
			err = json.Unmarshal(value, &r.Tags)
		case "magic":
			err = json.Unmarshal(value, &r.Magic)
		case "api":
			err = decodeStringish(value, &r.API)
		case "type":
			err = json.Unmarshal(value, &r.Type)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *Rule) applyDefaults() {
	r.API = "1"
	r.Type = "anime"
	r.Version = "1.0"
	r.Color = "white"
	r.UseNativePlayer = true
}

// decodeStringish accepts both "1" and 1 for fields some rule authors wrote
// as bare numbers.
func decodeStringish(data json.RawMessage, dst *string) error {
	if err := json.Unmarshal(data, dst); err == nil {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*dst = n.String()
	return nil
}

// Valid reports whether the rule carries the minimum needed to run a search.
func (r *Rule) Valid() bool {
	return r.Name != "" && r.BaseURL != "" && r.SearchURL != ""
}

// HasEpisodes reports whether the rule defines the selectors needed to crawl
// detail pages for episode lists.
func (r *Rule) HasEpisodes() bool {
	return r.ChapterRoads != "" && r.ChapterResult != ""
}
