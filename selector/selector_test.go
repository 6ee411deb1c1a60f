package selector

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTranslate(t *testing.T) {
	Convey("Given simple element paths", t, func() {
		Convey("A single element", func() {
			c, err := Translate("//div")
			So(err, ShouldBeNil)
			So(c.Selector, ShouldEqual, "div")
			So(c.Filter.IsAbsent(), ShouldBeTrue)
		})
		Convey("A child path", func() {
			c, err := Translate("//div/a")
			So(err, ShouldBeNil)
			So(c.Selector, ShouldEqual, "div > a")
		})
		Convey("A descendant path", func() {
			c, err := Translate("//div//a")
			So(err, ShouldBeNil)
			So(c.Selector, ShouldEqual, "div a")
		})
		Convey("A relative path", func() {
			c, err := Translate(".//a")
			So(err, ShouldBeNil)
			So(c.Selector, ShouldEqual, "a")
		})
		Convey("A trailing text() call", func() {
			c, err := Translate("//h3/a/text()")
			So(err, ShouldBeNil)
			So(c.Selector, ShouldEqual, "h3 > a")
		})
	})

	Convey("Given positional indices", t, func() {
		c, err := Translate("//div[1]/a[2]")
		So(err, ShouldBeNil)
		So(c.Selector, ShouldEqual, "div:nth-of-type(1) > a:nth-of-type(2)")

		c, err = Translate("//div[1]/div[2]/div/ul/li")
		So(err, ShouldBeNil)
		So(c.Selector, ShouldEqual, "div:nth-of-type(1) > div:nth-of-type(2) > div > ul > li")
	})

	Convey("Given attribute predicates", t, func() {
		Convey("A class attribute", func() {
			c, err := Translate("//div[@class='item']")
			So(err, ShouldBeNil)
			So(c.Selector, ShouldEqual, "div.item")
		})
		Convey("Multiple space-separated classes", func() {
			c, err := Translate("//div[@class='module-play-list sortable']")
			So(err, ShouldBeNil)
			So(c.Selector, ShouldEqual, "div.module-play-list.sortable")
		})
		Convey("An id attribute on a wildcard", func() {
			c, err := Translate("//*[@id='main']")
			So(err, ShouldBeNil)
			So(c.Selector, ShouldEqual, "#main")
		})
		Convey("A contains(@class, ...) predicate", func() {
			c, err := Translate("//div[contains(@class, 'btn')]")
			So(err, ShouldBeNil)
			So(c.Selector, ShouldEqual, `div[class*="btn"]`)
		})
		Convey("A generic attribute predicate", func() {
			c, err := Translate("//a[@rel='nofollow']")
			So(err, ShouldBeNil)
			So(c.Selector, ShouldEqual, `a[rel="nofollow"]`)
		})
	})

	Convey("Given a position() predicate", t, func() {
		c, err := Translate("//div[position() > 1]")
		So(err, ShouldBeNil)
		So(c.Selector, ShouldEqual, "div")

		filter, ok := c.Filter.Get()
		So(ok, ShouldBeTrue)
		So(filter.GreaterThan, ShouldEqual, 1)

		Convey("The filter keeps positions at or past the threshold", func() {
			So(filter.Keep(0), ShouldBeFalse)
			So(filter.Keep(1), ShouldBeTrue)
			So(filter.Keep(2), ShouldBeTrue)
		})
	})

	Convey("Translation is deterministic", t, func() {
		first, err := Translate("//ul[contains(@class, 'anthology-list-play')]/li/a")
		So(err, ShouldBeNil)
		second, err := Translate("//ul[contains(@class, 'anthology-list-play')]/li/a")
		So(err, ShouldBeNil)
		So(first.Selector, ShouldEqual, second.Selector)
		So(first.Selector, ShouldEqual, `ul[class*="anthology-list-play"] > li > a`)
	})

	Convey("An empty expression fails", t, func() {
		_, err := Translate("")
		So(err, ShouldEqual, ErrEmptyExpression)

		_, err = Translate("   ")
		So(err, ShouldEqual, ErrEmptyExpression)
	})
}
