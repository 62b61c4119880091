/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"
)

// NewHttpClient returns an http.Client whose requests carry our User-Agent.
// jar may be nil.
func NewHttpClient(jar http.CookieJar) *http.Client {
	return &http.Client{
		Transport: NewUserAgentTransport(http.DefaultTransport),
		Jar:       jar,
	}
}

// NewUserAgentTransport decorates rt so that every request identifies itself
// with UserAgent unless the caller already set one.
func NewUserAgentTransport(rt http.RoundTripper) *HeaderOverrideTransport {
	return &HeaderOverrideTransport{
		wrappedRT: rt,
		Request: func(req *http.Request) {
			if req.Header.Get("User-Agent") == "" {
				req.Header.Set("User-Agent", UserAgent)
			}
		},
	}
}

// NewCookieJar returns an empty cookie jar scoped by the public suffix list.
func NewCookieJar() (http.CookieJar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

type HeaderOverrideTransport struct {
	Request func(req *http.Request)

	// Underlying RoundTripper (e.g. default transport or another decorator)
	wrappedRT http.RoundTripper
}

// RoundTrip applies the Request hook to a copy of req and hands it to the
// underlying transport.
func (t *HeaderOverrideTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so we don't stomp on the caller's original
	req2 := req.Clone(req.Context())
	if t.Request != nil {
		t.Request(req2)
	}

	rt := t.wrappedRT
	if rt == nil {
		rt = http.DefaultTransport
	}
	return rt.RoundTrip(req2)
}
