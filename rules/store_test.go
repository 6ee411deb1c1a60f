package rules

import (
	"path/filepath"
	"testing"

	"github.com/Moe-Sakura/anime-search-api/filesystem"
	"github.com/Moe-Sakura/anime-search-api/where"
	. "github.com/smartystreets/goconvey/convey"
)

func writeRule(name, doc string) {
	path := filepath.Join(where.Rules(), name+".json")
	err := filesystem.API().WriteFile(path, []byte(doc), 0o644)
	So(err, ShouldBeNil)
}

func TestStore(t *testing.T) {
	Convey("Given a rules directory with mixed content", t, func() {
		filesystem.SetMemMapFs()

		writeRule("girigiri", `{"name": "girigiri", "baseUrl": "https://g.test", "searchURL": "https://g.test/s?q=@keyword"}`)
		writeRule("libvio", `{"name": "libvio", "baseUrl": "https://l.test", "searchURL": "https://l.test/s?q=@keyword"}`)
		writeRule("broken", `{"name": "broken"`)
		writeRule("incomplete", `{"name": "incomplete"}`)

		store, err := Load()
		So(err, ShouldBeNil)

		Convey("Only valid rules survive loading, in sorted order", func() {
			So(store.Names(), ShouldResemble, []string{"girigiri", "libvio"})
		})

		Convey("Select resolves known names in request order", func() {
			selected, err := store.Select([]string{"libvio", "girigiri"})
			So(err, ShouldBeNil)
			So(selected, ShouldHaveLength, 2)
			So(selected[0].Name, ShouldEqual, "libvio")
			So(selected[1].Name, ShouldEqual, "girigiri")
		})

		Convey("Select fails on unknown names with suggestions", func() {
			_, err := store.Select([]string{"girigir"})
			So(err, ShouldNotBeNil)

			selErr, ok := err.(*SelectionError)
			So(ok, ShouldBeTrue)
			So(selErr.Unknown, ShouldResemble, []string{"girigir"})
			So(selErr.Suggestions, ShouldContain, "girigiri")
		})

		Convey("Select fails when nothing is named", func() {
			_, err := store.Select([]string{"", "  "})
			So(err, ShouldEqual, ErrNoSelection)
		})

		Convey("Find matches rule names fuzzily", func() {
			So(names(store.Find("lib")), ShouldResemble, []string{"libvio"})
			So(store.Find(""), ShouldHaveLength, 2)
		})
	})
}

func names(rs []Rule) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}
