package network

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Moe-Sakura/anime-search-api/log"
)

// request captures everything needed to issue (and reissue) one fetch.
type request struct {
	method  string
	url     string
	form    url.Values
	json    []byte
	referer string
}

// Get fetches the URL and returns the response body, failing over to the
// mirror on a recognized blocking or transient failure.
func (c *Client) Get(rawURL, referer string) (string, error) {
	return c.fetch(request{method: http.MethodGet, url: rawURL, referer: referer})
}

// PostForm issues a form-encoded POST and returns the response body, with the
// same failover policy as Get.
func (c *Client) PostForm(rawURL string, form url.Values, referer string) (string, error) {
	return c.fetch(request{method: http.MethodPost, url: rawURL, form: form, referer: referer})
}

// PostJSON issues a JSON-bodied POST against the direct client only.
// TODO: align this path with the Get/PostForm failover policy once the
// behavior difference is confirmed to be unintentional.
func (c *Client) PostJSON(rawURL string, body any, referer string) (string, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request body: %w", err)
	}
	return c.send(c.direct, request{method: http.MethodPost, url: rawURL, json: encoded, referer: referer}, rawURL)
}

// fetch runs the direct attempt and at most one mirror attempt.
func (c *Client) fetch(r request) (string, error) {
	body, err := c.send(c.direct, r, r.url)
	if err == nil {
		return body, nil
	}

	if !shouldFailover(err) {
		return "", err
	}

	log.Debugf("fetch %s failed (%v), retrying via mirror", r.url, err)
	body, mirrorErr := c.send(c.mirror, r, c.prefix+r.url)
	if mirrorErr != nil {
		return "", mirrorErr
	}
	return body, nil
}

// send issues one attempt of the request against the given client and target URL.
func (c *Client) send(client *http.Client, r request, target string) (string, error) {
	var body io.Reader
	contentType := ""
	switch {
	case r.form != nil:
		body = strings.NewReader(r.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case r.json != nil:
		body = bytes.NewReader(r.json)
		contentType = "application/json"
	}

	req, err := http.NewRequest(r.method, target, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", c.ua)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	req.Header.Set("Connection", "keep-alive")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.referer != "" {
		req.Header.Set("Referer", r.referer)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}

	return string(raw), nil
}
