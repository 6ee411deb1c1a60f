package rules

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRuleDecoding(t *testing.T) {
	Convey("Given a fully specified rule document", t, func() {
		raw := `{
			"name": "TestSite",
			"version": "2.1",
			"baseUrl": "https://example.com",
			"searchURL": "https://example.com/search?wd=@keyword",
			"searchList": "//div[@class='module-items']/a",
			"searchName": "//div[@class='module-card-item-title']",
			"searchResult": "",
			"chapterRoads": "//div[@class='module-list']",
			"chapterResult": "//a",
			"usePost": true,
			"color": "blue",
			"tags": ["cn", "web"]
		}`

		var rule Rule
		So(json.Unmarshal([]byte(raw), &rule), ShouldBeNil)
		So(rule.Name, ShouldEqual, "TestSite")
		So(rule.Version, ShouldEqual, "2.1")
		So(rule.UsePost, ShouldBeTrue)
		So(rule.Color, ShouldEqual, "blue")
		So(rule.Tags, ShouldResemble, []string{"cn", "web"})
		So(rule.Valid(), ShouldBeTrue)
	})

	Convey("Given a minimal document, defaults fill the gaps", t, func() {
		raw := `{"name": "Min", "baseUrl": "https://m.test", "searchURL": "https://m.test/s?q=@keyword"}`

		var rule Rule
		So(json.Unmarshal([]byte(raw), &rule), ShouldBeNil)
		So(rule.API, ShouldEqual, "1")
		So(rule.Type, ShouldEqual, "anime")
		So(rule.Version, ShouldEqual, "1.0")
		So(rule.Color, ShouldEqual, "white")
		So(rule.UseNativePlayer, ShouldBeTrue)
	})

	Convey("Key aliases resolve to the same fields", t, func() {
		raw := `{
			"Name": "Alias",
			"base_url": "https://a.test",
			"search_url": "https://a.test/s?q=@keyword",
			"use_post": true,
			"multiSources": true,
			"api": 2
		}`

		var rule Rule
		So(json.Unmarshal([]byte(raw), &rule), ShouldBeNil)
		So(rule.Name, ShouldEqual, "Alias")
		So(rule.BaseURL, ShouldEqual, "https://a.test")
		So(rule.SearchURL, ShouldEqual, "https://a.test/s?q=@keyword")
		So(rule.UsePost, ShouldBeTrue)
		So(rule.MuliSources, ShouldBeTrue)
		So(rule.API, ShouldEqual, "2")
	})

	Convey("A rule without a search endpoint is invalid", t, func() {
		var rule Rule
		So(json.Unmarshal([]byte(`{"name": "Broken"}`), &rule), ShouldBeNil)
		So(rule.Valid(), ShouldBeFalse)
	})
}
