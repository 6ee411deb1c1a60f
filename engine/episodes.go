package engine

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/mo"

	"github.com/Moe-Sakura/anime-search-api/rules"
	"github.com/Moe-Sakura/anime-search-api/util"
)

// parseEpisodes extracts the episode roads out of a detail page. Links on
// detail pages are resolved against the page's own origin rather than the
// rule's base URL, since some sites serve detail pages off a different host.
func parseEpisodes(page string, rule rules.Rule, pageURL string) ([]EpisodeRoad, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse detail page: %w", err)
	}

	base, err := origin(pageURL)
	if err != nil {
		return nil, err
	}

	roadsSel, err := compile(rule.ChapterRoads)
	if err != nil {
		return nil, err
	}
	episodesSel, err := compile(rule.ChapterResult)
	if err != nil {
		return nil, err
	}

	var roads []EpisodeRoad
	for _, container := range roadsSel.matches(doc.Selection) {
		road := EpisodeRoad{Name: mo.None[string]()}
		for _, entry := range episodesSel.matches(container) {
			// Episode elements must carry the link themselves; there is no
			// descendant fallback here.
			href, _ := entry.Attr("href")
			episode := Episode{
				Name: util.CollapseWhitespace(entry.Text()),
				URL:  href,
			}
			if episode.Name == "" || episode.URL == "" {
				continue
			}
			episode.URL = normalizeURL(base, episode.URL)
			road.Episodes = append(road.Episodes, episode)
		}
		if len(road.Episodes) > 0 {
			roads = append(roads, road)
		}
	}

	// Roads only need distinguishing names when there is a choice to make.
	if len(roads) > 1 {
		for i := range roads {
			roads[i].Name = mo.Some(fmt.Sprintf("Road %d", i+1))
		}
	}

	return roads, nil
}
