// Package httpclient builds the outbound HTTP clients shared by the source
// adapters. Every request carries browser-like default headers; immobiliare
// serves the mobile API only to clients that look like one.
package httpclient

import (
	"net/http"
	"time"
)

type headerRoundTripper struct {
	base   http.RoundTripper
	header http.Header
}

func (rt *headerRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	for k, vs := range rt.header {
		if r.Header.Get(k) != "" {
			continue
		}
		for _, v := range vs {
			r.Header.Set(k, v)
		}
	}
	return rt.base.RoundTrip(r)
}

// WithHeaders wraps a transport so every request gets the given headers,
// without overriding headers the caller set explicitly.
func WithHeaders(base http.RoundTripper, header http.Header) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &headerRoundTripper{base: base, header: header}
}

// BrowserHeaders are the defaults the adapters send to the listing sources.
func BrowserHeaders() http.Header {
	return http.Header{
		"User-Agent":      {"Mozilla/5.0"},
		"Accept-Language": {"it-IT,it;q=0.9,en-US;q=0.8,en;q=0.7"},
	}
}

// New returns a client with browser headers and a request timeout. Timeouts
// are per-zone recoverable failures upstream, never fatal.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: WithHeaders(nil, BrowserHeaders()),
	}
}
