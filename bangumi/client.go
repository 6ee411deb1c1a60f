// Package bangumi provides a thin client for the bgm.tv metadata API,
// used to attach subject details and airing calendars to search results.
package bangumi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/viper"

	"github.com/Moe-Sakura/anime-search-api/key"
	"github.com/Moe-Sakura/anime-search-api/network"
)

// subjectTypeAnime is bgm.tv's subject-type code for anime.
const subjectTypeAnime = 2

// Client talks to the bgm.tv REST API. Responses pass through as raw JSON
// since the server republishes them unmodified.
type Client struct {
	http  *http.Client
	base  string
	ua    string
	token string
}

// New builds a client from the global configuration.
func New() *Client {
	return &Client{
		http:  network.NewHTTPClient(15*time.Second, false),
		base:  viper.GetString(key.BangumiAPIBase),
		ua:    viper.GetString(key.BangumiUserAgent),
		token: viper.GetString(key.BangumiAccessToken),
	}
}

// effectiveToken prefers the caller's own access token over the
// server-configured one.
func (c *Client) effectiveToken(userToken string) string {
	if userToken != "" {
		return userToken
	}
	return c.token
}

// SearchSubjects runs the v0 paginated subject search, scoped to anime.
func (c *Client) SearchSubjects(keyword, userToken string) ([]byte, error) {
	body, err := json.Marshal(map[string]any{
		"keyword": keyword,
		"filter": map[string]any{
			"type": []int{subjectTypeAnime},
		},
	})
	if err != nil {
		return nil, err
	}
	return c.do(http.MethodPost, "/v0/search/subjects", body, userToken)
}

// Subject fetches one subject's full v0 record.
func (c *Client) Subject(id int, userToken string) ([]byte, error) {
	return c.do(http.MethodGet, fmt.Sprintf("/v0/subjects/%d", id), nil, userToken)
}

// Calendar fetches the weekly airing calendar.
func (c *Client) Calendar() ([]byte, error) {
	return c.do(http.MethodGet, "/calendar", nil, "")
}

// LegacySearch runs the pre-v0 subject search, kept for clients that still
// consume its response shape.
func (c *Client) LegacySearch(keyword, userToken string) ([]byte, error) {
	path := fmt.Sprintf("/search/subject/%s?type=%d&responseGroup=large", url.PathEscape(keyword), subjectTypeAnime)
	return c.do(http.MethodGet, path, nil, userToken)
}

func (c *Client) do(method, path string, body []byte, userToken string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.ua)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.effectiveToken(userToken); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return raw, nil
}
