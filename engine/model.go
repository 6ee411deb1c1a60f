// Package engine executes rule-driven extraction against rule-site HTML,
// turning search pages into structured results and detail pages into
// episode listings.
package engine

import (
	"encoding/json"

	"github.com/samber/mo"
)

// Episode is one playable entry inside a road.
type Episode struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// EpisodeRoad groups the episodes of one playback line. Roads only get a
// name when the page offers more than one line to choose from.
type EpisodeRoad struct {
	Name     mo.Option[string] `json:"-"`
	Episodes []Episode         `json:"episodes"`
}

// MarshalJSON renders the road with its name only when one was assigned.
func (r EpisodeRoad) MarshalJSON() ([]byte, error) {
	type wire struct {
		Name     *string   `json:"name,omitempty"`
		Episodes []Episode `json:"episodes"`
	}
	w := wire{Episodes: r.Episodes}
	if name, ok := r.Name.Get(); ok {
		w.Name = &name
	}
	return json.Marshal(w)
}

// SearchResultItem is one hit on a platform's search page, optionally
// enriched with the episode roads scraped from its detail page.
type SearchResultItem struct {
	Name     string        `json:"name"`
	URL      string        `json:"url"`
	Tags     []string      `json:"tags,omitempty"`
	Episodes []EpisodeRoad `json:"episodes,omitempty"`
}

// PlatformResult is the outcome of searching one platform. A failed search
// carries Count -1, no items and the error message; a successful one carries
// the real count. The two states never mix.
type PlatformResult struct {
	Items []SearchResultItem `json:"items"`
	Count int                `json:"count"`
	Error string             `json:"error,omitempty"`
}

// ResultWithItems builds the success form of a platform result.
func ResultWithItems(items []SearchResultItem) PlatformResult {
	if items == nil {
		items = []SearchResultItem{}
	}
	return PlatformResult{Items: items, Count: len(items)}
}

// ResultWithError builds the failure form of a platform result.
func ResultWithError(err error) PlatformResult {
	return PlatformResult{Items: []SearchResultItem{}, Count: -1, Error: err.Error()}
}

// Failed reports whether the result is the failure form.
func (r PlatformResult) Failed() bool {
	return r.Count == -1
}
