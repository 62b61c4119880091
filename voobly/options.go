/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package voobly

import (
	"net/http"
	"time"

	"github.com/mikeb26/voobly/cache"
)

// Option configures a Session.
type Option func(*Session)

// WithCacheExpiry sets how long cached responses are served. Defaults to
// DefaultCacheExpiry.
func WithCacheExpiry(d time.Duration) Option {
	return func(s *Session) {
		s.expiry = d
	}
}

// WithCacheDisabled bypasses the cache store entirely, for callers that
// front the client with their own cache.
func WithCacheDisabled() Option {
	return func(s *Session) {
		s.cacheDisabled = true
	}
}

// WithCache uses store instead of a private in-memory store.
func WithCache(store *cache.Store) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithHTTPClient uses client for all requests. Its Jar, if any, is ignored.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Session) {
		s.httpClient = client
	}
}

// WithBaseURL points the session at a different site root.
func WithBaseURL(u string) Option {
	return func(s *Session) {
		s.baseURL = u
	}
}

// WithMetrics records request and cache metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithClock replaces time.Now for cache stamping and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}
