package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Moe-Sakura/anime-search-api/filesystem"
	"github.com/Moe-Sakura/anime-search-api/log"
	"github.com/Moe-Sakura/anime-search-api/where"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// Store holds the loaded rule set and hands out consistent snapshots while
// updates swap files underneath.
type Store struct {
	mu    sync.RWMutex
	rules []Rule
}

// ErrNoSelection marks a request that named no rules at all.
var ErrNoSelection = errors.New("no rules selected")

// SelectionError reports a rule selection the caller got wrong, carrying
// fuzzy-matched suggestions for the unknown names.
type SelectionError struct {
	Unknown     []string
	Suggestions []string
}

func (e *SelectionError) Error() string {
	msg := fmt.Sprintf("unknown rules: %s", strings.Join(e.Unknown, ", "))
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// Load reads every rule file under the rules directory and returns a populated store.
func Load() (*Store, error) {
	s := &Store{}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload rereads the rules directory, replacing the current snapshot.
// Files that fail to decode are skipped with a warning so one malformed rule
// cannot take the whole set down.
func (s *Store) Reload() error {
	dir := where.Rules()
	entries, err := filesystem.API().ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read rules directory: %w", err)
	}

	var loaded []Rule
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if entry.Name() == "index.json" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		raw, err := filesystem.API().ReadFile(path)
		if err != nil {
			log.Warnf("skipping rule %s: %s", entry.Name(), err)
			continue
		}

		var rule Rule
		if err := json.Unmarshal(raw, &rule); err != nil {
			log.Warnf("skipping malformed rule %s: %s", entry.Name(), err)
			continue
		}
		if !rule.Valid() {
			log.Warnf("skipping incomplete rule %s", entry.Name())
			continue
		}

		loaded = append(loaded, rule)
	}

	sort.Slice(loaded, func(i, j int) bool {
		return loaded[i].Name < loaded[j].Name
	})

	s.mu.Lock()
	s.rules = loaded
	s.mu.Unlock()

	log.Infof("loaded %d rules from %s", len(loaded), dir)
	return nil
}

// All returns a snapshot of every loaded rule.
func (s *Store) All() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Names returns the loaded rule names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.rules, func(r Rule, _ int) string {
		return r.Name
	})
}

// Find returns rules whose names fuzzy-match the query, or every rule when
// the query is empty.
func (s *Store) Find(query string) []Rule {
	if query == "" {
		return s.All()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Filter(s.rules, func(r Rule, _ int) bool {
		return fuzzy.MatchFold(query, r.Name)
	})
}

// Select resolves the requested names to loaded rules, preserving request
// order. Any unknown name fails the whole selection with suggestions.
func (s *Store) Select(names []string) ([]Rule, error) {
	s.mu.RLock()
	byName := lo.SliceToMap(s.rules, func(r Rule) (string, Rule) {
		return r.Name, r
	})
	all := lo.Keys(byName)
	s.mu.RUnlock()

	var (
		selected []Rule
		unknown  []string
	)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if rule, ok := byName[name]; ok {
			selected = append(selected, rule)
		} else {
			unknown = append(unknown, name)
		}
	}

	if len(unknown) > 0 {
		var suggestions []string
		for _, name := range unknown {
			suggestions = append(suggestions, fuzzy.FindFold(name, all)...)
		}
		return nil, &SelectionError{Unknown: unknown, Suggestions: lo.Uniq(suggestions)}
	}

	if len(selected) == 0 {
		return nil, ErrNoSelection
	}

	return selected, nil
}
