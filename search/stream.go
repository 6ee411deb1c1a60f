// Package search fans one query out across many rules concurrently and
// streams per-rule outcomes back as they arrive.
package search

import (
	"sync"
	"sync/atomic"

	"github.com/Moe-Sakura/anime-search-api/engine"
	"github.com/Moe-Sakura/anime-search-api/log"
	"github.com/Moe-Sakura/anime-search-api/rules"
)

// errorColor marks failed rule results in the stream so clients can render
// them without inspecting the error field.
const errorColor = "red"

// eventBuffer bounds the stream channel. A slow consumer loses intermediate
// progress events rather than stalling the searchers.
const eventBuffer = 100

// StreamProgress reports how many rules have finished out of the total.
type StreamProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// RuleResult is one rule's search outcome as it appears on the wire.
type RuleResult struct {
	Name  string                    `json:"name"`
	Color string                    `json:"color"`
	Tags  []string                  `json:"tags,omitempty"`
	Items []engine.SearchResultItem `json:"items"`
	Error string                    `json:"error,omitempty"`
}

// Event is one line of the result stream. Exactly one of the optional
// fields discriminates the event kind, except result events which also
// carry the progress snapshot they were counted at.
type Event struct {
	Total    *int            `json:"total,omitempty"`
	Progress *StreamProgress `json:"progress,omitempty"`
	Result   *RuleResult     `json:"result,omitempty"`
	Done     *bool           `json:"done,omitempty"`
}

// Orchestrator runs searches across rule sets.
type Orchestrator struct {
	search func(rule rules.Rule, keyword string, withEpisodes bool) engine.PlatformResult
}

// New builds an orchestrator on the given engine.
func New(eng *engine.Engine) *Orchestrator {
	return &Orchestrator{
		search: func(rule rules.Rule, keyword string, withEpisodes bool) engine.PlatformResult {
			if withEpisodes {
				return eng.SearchWithEpisodes(rule, keyword)
			}
			return eng.Search(rule, keyword)
		},
	}
}

// Stream launches one searcher per rule and returns the event channel.
// The first event announces the rule count, the last confirms completion,
// and the channel closes after it. Intermediate events are best-effort:
// when the buffer is full they are dropped, never blocked on.
func (o *Orchestrator) Stream(keyword string, selected []rules.Rule, withEpisodes bool) <-chan Event {
	events := make(chan Event, eventBuffer)
	total := len(selected)

	events <- Event{Total: &total}

	var (
		wg        sync.WaitGroup
		completed atomic.Int32
	)
	for _, rule := range selected {
		wg.Add(1)
		go func(rule rules.Rule) {
			defer wg.Done()

			result := o.search(rule, keyword, withEpisodes)
			progress := &StreamProgress{
				Completed: int(completed.Add(1)),
				Total:     total,
			}

			trySend(events, o.ruleEvent(rule, result, progress))
		}(rule)
	}

	go func() {
		wg.Wait()
		done := true
		events <- Event{Done: &done}
		close(events)
	}()

	return events
}

// ruleEvent shapes one rule's outcome into a stream event. Failures keep the
// rule's tags but take the error color; empty successes report bare progress.
func (o *Orchestrator) ruleEvent(rule rules.Rule, result engine.PlatformResult, progress *StreamProgress) Event {
	if result.Failed() {
		log.Debugf("rule %s failed: %s", rule.Name, result.Error)
		return Event{
			Progress: progress,
			Result: &RuleResult{
				Name:  rule.Name,
				Color: errorColor,
				Tags:  rule.Tags,
				Items: result.Items,
				Error: result.Error,
			},
		}
	}

	if result.Count == 0 {
		return Event{Progress: progress}
	}

	return Event{
		Progress: progress,
		Result: &RuleResult{
			Name:  rule.Name,
			Color: rule.Color,
			Tags:  rule.Tags,
			Items: result.Items,
		},
	}
}

// trySend delivers the event unless the buffer is full.
func trySend(events chan<- Event, event Event) {
	select {
	case events <- event:
	default:
		log.Debugf("event buffer full, dropping event")
	}
}
