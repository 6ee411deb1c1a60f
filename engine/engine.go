package engine

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/samber/mo"

	"github.com/Moe-Sakura/anime-search-api/constant"
	"github.com/Moe-Sakura/anime-search-api/log"
	"github.com/Moe-Sakura/anime-search-api/rules"
	"github.com/Moe-Sakura/anime-search-api/selector"
	"github.com/Moe-Sakura/anime-search-api/util"
)

// enrichLimit caps how many search hits get their detail page crawled for
// episode roads. Detail fetches dominate search latency, so only the top
// hits are worth the round-trips.
const enrichLimit = 5

// Fetcher is the transport the engine runs on. The network client satisfies
// it; tests substitute canned pages.
type Fetcher interface {
	Get(url, referer string) (string, error)
	PostForm(url string, form url.Values, referer string) (string, error)
}

// Engine extracts structured results from rule-site pages.
type Engine struct {
	fetch Fetcher
}

// New constructs an engine on the given fetcher.
func New(fetch Fetcher) *Engine {
	return &Engine{fetch: fetch}
}

// Search runs the rule's search against the keyword and extracts the hits.
func (e *Engine) Search(rule rules.Rule, keyword string) PlatformResult {
	page, err := e.fetchSearchPage(rule, keyword)
	if err != nil {
		return ResultWithError(err)
	}

	items, err := parseSearchResults(page, rule)
	if err != nil {
		return ResultWithError(err)
	}

	return ResultWithItems(items)
}

// SearchWithEpisodes runs Search and then crawls the detail pages of the top
// hits for their episode roads. Rules without chapter selectors get no detail
// fetches at all; enrichment failures degrade the item rather than the whole
// result.
func (e *Engine) SearchWithEpisodes(rule rules.Rule, keyword string) PlatformResult {
	result := e.Search(rule, keyword)
	if result.Failed() || !rule.HasEpisodes() {
		return result
	}

	for i := 0; i < util.Min(len(result.Items), enrichLimit); i++ {
		roads, err := e.Episodes(rule, result.Items[i].URL)
		if err != nil {
			log.Debugf("episodes for %s: %s", result.Items[i].URL, err)
			continue
		}
		result.Items[i].Episodes = roads
	}

	return result
}

// Episodes fetches a detail page and extracts its episode roads.
func (e *Engine) Episodes(rule rules.Rule, detailURL string) ([]EpisodeRoad, error) {
	if !rule.HasEpisodes() {
		return nil, nil
	}

	page, err := e.fetch.Get(detailURL, rule.BaseURL)
	if err != nil {
		return nil, err
	}
	return parseEpisodes(page, rule, detailURL)
}

// fetchSearchPage resolves the templated search URL and issues the request
// the way the rule demands, form POST or plain GET.
func (e *Engine) fetchSearchPage(rule rules.Rule, keyword string) (string, error) {
	target := strings.ReplaceAll(rule.SearchURL, constant.KeywordPlaceholder, encodeKeyword(keyword))
	referer := rule.Referer
	if referer == "" {
		referer = rule.BaseURL
	}

	if !rule.UsePost {
		return e.fetch.Get(target, referer)
	}

	endpoint, form, err := splitPostTarget(target)
	if err != nil {
		return "", err
	}
	return e.fetch.PostForm(endpoint, form, referer)
}

// encodeKeyword percent-encodes the keyword for URL templating, using %20
// for spaces since rule sites do not treat '+' as a space outside query
// string contexts.
func encodeKeyword(keyword string) string {
	return strings.ReplaceAll(url.QueryEscape(keyword), "+", "%20")
}

// splitPostTarget decomposes a templated search URL into the POST endpoint
// and the query parameters reinterpreted as the form body.
func splitPostTarget(target string) (string, url.Values, error) {
	endpoint, query, found := strings.Cut(target, "?")
	if !found {
		return endpoint, url.Values{}, nil
	}

	form, err := url.ParseQuery(query)
	if err != nil {
		return "", nil, fmt.Errorf("parse search form: %w", err)
	}
	return endpoint, form, nil
}

// compiled pairs a ready-to-run CSS matcher with the positional filter the
// source expression carried.
type compiled struct {
	matcher cascadia.Selector
	filter  mo.Option[selector.PositionFilter]
}

// compile translates an XPath expression and compiles the resulting CSS
// selector, so invalid rules surface as errors instead of panics downstream.
func compile(expr string) (compiled, error) {
	translated, err := selector.Translate(expr)
	if err != nil {
		return compiled{}, err
	}

	matcher, err := cascadia.Compile(translated.Selector)
	if err != nil {
		return compiled{}, fmt.Errorf("compile selector %q: %w", translated.Selector, err)
	}

	return compiled{matcher: matcher, filter: translated.Filter}, nil
}

// matches runs the compiled selector within the selection and applies the
// positional filter to the hits.
func (c compiled) matches(s *goquery.Selection) []*goquery.Selection {
	var out []*goquery.Selection
	s.FindMatcher(c.matcher).Each(func(i int, item *goquery.Selection) {
		if filter, ok := c.filter.Get(); ok && !filter.Keep(i) {
			return
		}
		out = append(out, item)
	})
	return out
}

// parseSearchResults extracts the search hits out of a result page.
func parseSearchResults(page string, rule rules.Rule) ([]SearchResultItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	list, err := compile(rule.SearchList)
	if err != nil {
		return nil, err
	}

	name, err := compile(rule.SearchName)
	if err != nil {
		return nil, err
	}

	// The result selector locates the link-carrying element. Rules that omit
	// it reuse the name selector for both jobs.
	result := name
	if rule.SearchResult != "" {
		result, err = compile(rule.SearchResult)
		if err != nil {
			return nil, err
		}
	}

	var items []SearchResultItem
	for _, entry := range list.matches(doc.Selection) {
		item := SearchResultItem{
			Name: extractName(entry, name),
			URL:  extractLink(entry, result),
		}
		if item.Name == "" || item.URL == "" {
			continue
		}
		item.URL = normalizeURL(rule.BaseURL, item.URL)
		items = append(items, item)
	}

	return items, nil
}

// extractName resolves the display name of a search hit from the first
// name-selector match inside the container.
func extractName(entry *goquery.Selection, name compiled) string {
	hits := name.matches(entry)
	if len(hits) == 0 {
		return ""
	}
	return util.CollapseWhitespace(hits[0].Text())
}

// extractLink finds the hit's target URL on the first result-selector match:
// its href, then its data-href. Only when the result selector yields no
// attribute at all does the first descendant anchor serve as fallback.
func extractLink(entry *goquery.Selection, result compiled) string {
	if hits := result.matches(entry); len(hits) > 0 {
		if href, ok := hits[0].Attr("href"); ok {
			return href
		}
		if href, ok := hits[0].Attr("data-href"); ok {
			return href
		}
	}
	if href, ok := entry.Find("a[href]").First().Attr("href"); ok {
		return href
	}
	return ""
}
