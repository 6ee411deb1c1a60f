package engine

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalizeURL(t *testing.T) {
	Convey("Absolute URLs pass through untouched", t, func() {
		So(normalizeURL("https://site.test", "https://other.test/v/1"), ShouldEqual, "https://other.test/v/1")
		So(normalizeURL("https://site.test", "http://other.test/v/1"), ShouldEqual, "http://other.test/v/1")
	})

	Convey("Protocol-relative URLs get https", t, func() {
		So(normalizeURL("https://site.test", "//cdn.test/v/1"), ShouldEqual, "https://cdn.test/v/1")
	})

	Convey("Root-relative paths join onto the trimmed base", t, func() {
		So(normalizeURL("https://site.test/", "/video/1.html"), ShouldEqual, "https://site.test/video/1.html")
		So(normalizeURL("https://site.test", "/video/1.html"), ShouldEqual, "https://site.test/video/1.html")
	})

	Convey("Bare paths join with a separator, whatever the base's shape", t, func() {
		So(normalizeURL("https://site.test", "video/1.html"), ShouldEqual, "https://site.test/video/1.html")
		So(normalizeURL("https://site.test/", "video/1.html"), ShouldEqual, "https://site.test/video/1.html")
	})
}

func TestOrigin(t *testing.T) {
	Convey("A full page URL reduces to scheme and host", t, func() {
		base, err := origin("https://detail.site.test/play/42.html?road=1")
		So(err, ShouldBeNil)
		So(base, ShouldEqual, "https://detail.site.test")
	})

	Convey("A URL without an origin fails", t, func() {
		_, err := origin("/play/42.html")
		So(err, ShouldNotBeNil)
	})
}
