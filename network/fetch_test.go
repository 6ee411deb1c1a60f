package network

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func newTestClient(prefix string, timeout time.Duration) *Client {
	return &Client{
		direct: &http.Client{Timeout: timeout},
		mirror: &http.Client{Timeout: timeout},
		prefix: prefix,
		ua:     "test-agent",
	}
}

func TestFailover(t *testing.T) {
	Convey("Given a mirror that records its hits", t, func() {
		var mirrorHits atomic.Int32
		mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mirrorHits.Add(1)
			w.Write([]byte("from mirror"))
		}))
		defer mirror.Close()
		prefix := mirror.URL + "/?target="

		Convey("A 404 is returned as-is without consulting the mirror", func() {
			direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer direct.Close()

			_, err := newTestClient(prefix, time.Second).Get(direct.URL, "")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, "unexpected status code: 404")
			So(mirrorHits.Load(), ShouldEqual, 0)
		})

		Convey("A 429 triggers exactly one mirror attempt at the prefixed URL", func() {
			var directHits atomic.Int32
			direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				directHits.Add(1)
				w.WriteHeader(http.StatusTooManyRequests)
			}))
			defer direct.Close()

			body, err := newTestClient(prefix, time.Second).Get(direct.URL, "")
			So(err, ShouldBeNil)
			So(body, ShouldEqual, "from mirror")
			So(directHits.Load(), ShouldEqual, 1)
			So(mirrorHits.Load(), ShouldEqual, 1)
		})

		Convey("A timeout triggers the mirror attempt", func() {
			direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(500 * time.Millisecond)
			}))
			defer direct.Close()

			c := newTestClient(prefix, time.Second)
			c.direct.Timeout = 50 * time.Millisecond

			body, err := c.Get(direct.URL, "")
			So(err, ShouldBeNil)
			So(body, ShouldEqual, "from mirror")
			So(mirrorHits.Load(), ShouldEqual, 1)
		})

		Convey("When both attempts fail, the mirror error wins", func() {
			direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer direct.Close()

			badMirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer badMirror.Close()

			_, err := newTestClient(badMirror.URL+"/?target=", time.Second).Get(direct.URL, "")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, "unexpected status code: 502")
		})
	})
}

func TestPostForm(t *testing.T) {
	Convey("Form POSTs carry the encoded body and follow the failover policy", t, func() {
		var mirrorForm atomic.Value
		mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.ParseForm()
			mirrorForm.Store(r.PostForm.Get("wd"))
			w.Write([]byte("ok"))
		}))
		defer mirror.Close()

		direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer direct.Close()

		c := newTestClient(mirror.URL+"/?target=", time.Second)
		body, err := c.PostForm(direct.URL, url.Values{"wd": {"hello"}}, "")
		So(err, ShouldBeNil)
		So(body, ShouldEqual, "ok")
		So(mirrorForm.Load(), ShouldEqual, "hello")
	})
}

func TestPostJSON(t *testing.T) {
	Convey("JSON POSTs never fail over", t, func() {
		var mirrorHits atomic.Int32
		mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mirrorHits.Add(1)
		}))
		defer mirror.Close()

		direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer direct.Close()

		c := newTestClient(mirror.URL+"/?target=", time.Second)
		_, err := c.PostJSON(direct.URL, map[string]string{"q": "test"}, "")
		So(err, ShouldNotBeNil)
		So(mirrorHits.Load(), ShouldEqual, 0)
	})
}

func TestFailoverStatus(t *testing.T) {
	Convey("Only blocking and server-side statuses warrant the mirror", t, func() {
		So(failoverStatus(403), ShouldBeTrue)
		So(failoverStatus(429), ShouldBeTrue)
		So(failoverStatus(500), ShouldBeTrue)
		So(failoverStatus(503), ShouldBeTrue)
		So(failoverStatus(404), ShouldBeFalse)
		So(failoverStatus(401), ShouldBeFalse)
		So(failoverStatus(302), ShouldBeFalse)
	})
}
