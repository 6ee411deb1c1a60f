// Chrome TLS-fingerprint transport.
//
// Some rule sites sit behind anti-bot challenges (Cloudflare, DDoS-Guard) that
// reject the stock Go Client Hello. This transport leverages
// refraction-networking/utls to mimic Chrome's handshake signature. It prefers
// HTTP/2 and transparently falls back to a forced-HTTP/1.1 transport when the
// h2 attempt fails.
package network

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

const dialTimeout = 30 * time.Second

// fingerprintTransport routes requests through a utls-backed h2 transport with
// an http/1.1 fallback.
type fingerprintTransport struct {
	h2 *http2.Transport
	h1 *http.Transport
}

func newFingerprintTransport() *fingerprintTransport {
	return &fingerprintTransport{
		h2: &http2.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialChromeTLS(ctx, network, addr, nil)
			},
		},
		h1: &http.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialChromeTLS(ctx, network, addr, []string{"http/1.1"})
			},
		},
	}
}

// RoundTrip tries the h2 transport first and falls back to HTTP/1.1.
// The body is replayed through GetBody, which net/http populates for the
// form and JSON readers used by this package.
func (t *fingerprintTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.h2.RoundTrip(req)
	if err == nil {
		return resp, nil
	}

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			return nil, err
		}
		retry.Body = body
	}
	return t.h1.RoundTrip(retry)
}

// dialChromeTLS establishes a TLS connection presenting Chrome's Client Hello.
// A nil nextProtos advertises both h2 and http/1.1, matching real Chrome traffic.
func dialChromeTLS(ctx context.Context, network, addr string, nextProtos []string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		// Some rule sites serve mismatched or expired certificates.
		InsecureSkipVerify: true,
		MinVersion:         tls.VersionTLS12,
		NextProtos:         nextProtos,
	}, utls.HelloChrome_120)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	return tlsConn, nil
}
