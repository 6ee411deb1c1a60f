package rules

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/Moe-Sakura/anime-search-api/filesystem"
	"github.com/Moe-Sakura/anime-search-api/key"
	"github.com/Moe-Sakura/anime-search-api/log"
	"github.com/Moe-Sakura/anime-search-api/network"
	"github.com/Moe-Sakura/anime-search-api/where"
	"github.com/cenkalti/backoff/v4"
	"github.com/metafates/gache"
	"github.com/spf13/viper"
)

// commitCacher remembers the last rule-repository commit we synchronized,
// so repeated update calls short-circuit when upstream has not moved.
var commitCacher = gache.New[string](&gache.Options{
	Path:       where.RulesCommit(),
	FileSystem: &filesystem.GacheFs{},
})

// UpdateResult summarizes one synchronization run against the rule repository.
type UpdateResult struct {
	Commit   string   `json:"commit"`
	UpToDate bool     `json:"upToDate"`
	Total    int      `json:"total"`
	Added    int      `json:"added"`
	Updated  int      `json:"updated"`
	Failed   int      `json:"failed"`
	Details  []string `json:"details,omitempty"`
}

// Updater synchronizes the local rule directory with the upstream GitHub repository.
type Updater struct {
	client *http.Client
	store  *Store

	repo   string
	branch string
	proxy  string
}

// NewUpdater builds an updater bound to the given store, reading the
// repository coordinates from the global configuration.
func NewUpdater(store *Store) *Updater {
	return &Updater{
		client: network.NewHTTPClient(30*time.Second, false),
		store:  store,
		repo:   viper.GetString(key.RulesRepo),
		branch: viper.GetString(key.RulesBranch),
		proxy:  viper.GetString(key.RulesGitHubProxy),
	}
}

// Update synchronizes the rule directory. When force is false and the upstream
// commit matches the cached marker, the run is skipped entirely.
func (u *Updater) Update(force bool) (*UpdateResult, error) {
	commit, err := u.latestCommit()
	if err != nil {
		return nil, fmt.Errorf("resolve latest commit: %w", err)
	}

	cached, _, err := commitCacher.Get()
	if err == nil && !force && cached == commit {
		log.Infof("rules already at commit %s", commit)
		return &UpdateResult{Commit: commit, UpToDate: true}, nil
	}

	files, err := u.listFiles()
	if err != nil {
		return nil, fmt.Errorf("list rule files: %w", err)
	}

	result := &UpdateResult{Commit: commit}
	for _, file := range files {
		if !strings.HasSuffix(file.Name, ".json") || file.Name == "index.json" {
			continue
		}
		result.Total++

		added, err := u.syncFile(file)
		switch {
		case err != nil:
			result.Failed++
			result.Details = append(result.Details, fmt.Sprintf("%s: %s", file.Name, err))
			log.Warnf("rule %s failed to sync: %s", file.Name, err)
		case added:
			result.Added++
		default:
			result.Updated++
		}
	}

	if result.Failed == 0 {
		if err := commitCacher.Set(commit); err != nil {
			log.Warnf("persist commit marker: %s", err)
		}
	}

	if err := u.store.Reload(); err != nil {
		return nil, err
	}

	log.Infof("rules synchronized: %d added, %d updated, %d failed", result.Added, result.Updated, result.Failed)
	return result, nil
}

type remoteFile struct {
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
}

// latestCommit resolves the head commit SHA of the configured branch.
func (u *Updater) latestCommit() (string, error) {
	endpoint := fmt.Sprintf("https://api.github.com/repos/%s/commits/%s", u.repo, u.branch)

	var payload struct {
		SHA string `json:"sha"`
	}
	if err := u.getJSON(endpoint, &payload); err != nil {
		return "", err
	}
	if payload.SHA == "" {
		return "", fmt.Errorf("commit response carried no sha")
	}
	return payload.SHA, nil
}

// listFiles enumerates the repository root on the configured branch.
func (u *Updater) listFiles() ([]remoteFile, error) {
	endpoint := fmt.Sprintf("https://api.github.com/repos/%s/contents?ref=%s", u.repo, u.branch)

	var files []remoteFile
	if err := u.getJSON(endpoint, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// syncFile downloads, validates and atomically replaces one rule file.
// It reports whether the file was new to the local directory.
func (u *Updater) syncFile(file remoteFile) (added bool, err error) {
	raw, err := u.download(file.DownloadURL)
	if err != nil {
		return false, err
	}

	var rule Rule
	if err := json.Unmarshal(raw, &rule); err != nil {
		return false, fmt.Errorf("invalid rule document: %w", err)
	}
	if !rule.Valid() {
		return false, fmt.Errorf("rule is missing required fields")
	}

	path := filepath.Join(where.Rules(), file.Name)
	exists, err := filesystem.API().Exists(path)
	if err != nil {
		return false, err
	}

	// Write to a sibling temp file first so a failed download never
	// truncates a rule that previously worked.
	tmp := path + ".tmp"
	if err := filesystem.API().WriteFile(tmp, raw, 0o644); err != nil {
		return false, err
	}
	if err := filesystem.API().Rename(tmp, path); err != nil {
		return false, err
	}

	return !exists, nil
}

// download fetches raw bytes, retrying with backoff and falling back to the
// configured GitHub proxy after direct attempts are exhausted.
func (u *Updater) download(url string) ([]byte, error) {
	raw, err := u.get(url)
	if err == nil {
		return raw, nil
	}

	if u.proxy == "" {
		return nil, err
	}

	log.Debugf("download %s failed (%s), retrying via github proxy", url, err)
	return u.get(u.proxy + url)
}

// get performs a GET with exponential backoff on transient failures.
func (u *Updater) get(url string) ([]byte, error) {
	var raw []byte

	operation := func() error {
		resp, err := u.client.Get(url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden {
			return backoff.Permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		raw, err = io.ReadAll(resp.Body)
		return err
	}

	err := backoff.Retry(operation, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3))
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (u *Updater) getJSON(url string, dst any) error {
	raw, err := u.download(url)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
