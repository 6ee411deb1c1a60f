package search

import (
	"errors"
	"sort"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Moe-Sakura/anime-search-api/engine"
	"github.com/Moe-Sakura/anime-search-api/rules"
)

func collect(events <-chan Event) []Event {
	var out []Event
	for event := range events {
		out = append(out, event)
	}
	return out
}

func namedRules(names ...string) []rules.Rule {
	out := make([]rules.Rule, len(names))
	for i, name := range names {
		out[i] = rules.Rule{Name: name, Color: "white", Tags: []string{"t-" + name}}
	}
	return out
}

func TestStream(t *testing.T) {
	Convey("Given rules that all come back empty", t, func() {
		o := &Orchestrator{
			search: func(rules.Rule, string, bool) engine.PlatformResult {
				return engine.ResultWithItems(nil)
			},
		}

		events := collect(o.Stream("query", namedRules("a", "b", "c"), false))

		Convey("The stream opens with the total and closes with done", func() {
			So(events, ShouldHaveLength, 5)
			So(events[0].Total, ShouldNotBeNil)
			So(*events[0].Total, ShouldEqual, 3)

			last := events[len(events)-1]
			So(last.Done, ShouldNotBeNil)
			So(*last.Done, ShouldBeTrue)
		})

		Convey("Empty successes surface as bare progress events", func() {
			var completed []int
			for _, event := range events[1 : len(events)-1] {
				So(event.Result, ShouldBeNil)
				So(event.Progress, ShouldNotBeNil)
				So(event.Progress.Total, ShouldEqual, 3)
				completed = append(completed, event.Progress.Completed)
			}
			sort.Ints(completed)
			So(completed, ShouldResemble, []int{1, 2, 3})
		})
	})

	Convey("A rule with hits produces a result event carrying its identity", t, func() {
		o := &Orchestrator{
			search: func(rules.Rule, string, bool) engine.PlatformResult {
				return engine.ResultWithItems([]engine.SearchResultItem{
					{Name: "Show", URL: "https://site.test/1.html"},
				})
			},
		}

		rule := rules.Rule{Name: "site", Color: "blue", Tags: []string{"cn"}}
		events := collect(o.Stream("query", []rules.Rule{rule}, false))

		So(events, ShouldHaveLength, 3)
		result := events[1].Result
		So(result, ShouldNotBeNil)
		So(result.Name, ShouldEqual, "site")
		So(result.Color, ShouldEqual, "blue")
		So(result.Tags, ShouldResemble, []string{"cn"})
		So(result.Items, ShouldHaveLength, 1)
		So(result.Error, ShouldBeEmpty)
	})

	Convey("A failed rule keeps its tags but takes the error color", t, func() {
		o := &Orchestrator{
			search: func(rules.Rule, string, bool) engine.PlatformResult {
				return engine.ResultWithError(errors.New("request timed out"))
			},
		}

		rule := rules.Rule{Name: "site", Color: "blue", Tags: []string{"cn"}}
		events := collect(o.Stream("query", []rules.Rule{rule}, false))

		So(events, ShouldHaveLength, 3)
		result := events[1].Result
		So(result, ShouldNotBeNil)
		So(result.Color, ShouldEqual, "red")
		So(result.Tags, ShouldResemble, []string{"cn"})
		So(result.Items, ShouldBeEmpty)
		So(result.Error, ShouldEqual, "request timed out")
	})

	Convey("The episodes flag is forwarded to the searcher", t, func() {
		var sawEpisodes bool
		o := &Orchestrator{
			search: func(_ rules.Rule, _ string, withEpisodes bool) engine.PlatformResult {
				sawEpisodes = withEpisodes
				return engine.ResultWithItems(nil)
			},
		}

		collect(o.Stream("query", namedRules("a"), true))
		So(sawEpisodes, ShouldBeTrue)
	})
}
