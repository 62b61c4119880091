/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package voobly

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mikeb26/voobly/cache"
	"github.com/mikeb26/voobly/internal"
)

// DefaultCacheExpiry is how long cached responses are served when no
// expiry is configured.
const DefaultCacheExpiry = 7 * 24 * time.Hour

type AuthMode int

const (
	AuthAPIKey AuthMode = iota + 1
	AuthCredentials
)

func (m AuthMode) String() string {
	if m == AuthAPIKey {
		return "api-key"
	} else if m == AuthCredentials {
		return "credentials"
	} else {
		return "?"
	}
}

// Credentials supplies an API key, a username and password, or both. The API
// key authorizes calls to the data API; the username and password produce a
// web login needed for match pages and recorded game downloads.
type Credentials struct {
	Key      string
	Username string
	Password string
}

type apiKeyAuth struct {
	key string
}

type webAuth struct {
	username string
	password string
	cookies  []*http.Cookie
}

// Session is an authenticated handle for all requests. Create one with
// GetSession. A Session may be shared between goroutines.
type Session struct {
	apiKey *apiKeyAuth
	web    *webAuth

	store      *cache.Store
	httpClient *http.Client
	baseURL    string
	metrics    *Metrics
	now        func() time.Time

	mu            sync.RWMutex
	expiry        time.Duration
	cacheDisabled bool
}

func newSession(opts ...Option) *Session {
	s := &Session{
		baseURL: internal.BaseURL,
		expiry:  DefaultCacheExpiry,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.httpClient == nil {
		s.httpClient = internal.NewHttpClient(nil)
	}
	if s.store == nil {
		s.store = cache.New(cache.Memory())
	}
	s.baseURL = strings.TrimRight(s.baseURL, "/")
	return s
}

// clone copies everything but the credentials.
func (s *Session) clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &Session{
		apiKey:        s.apiKey,
		store:         s.store,
		httpClient:    s.httpClient,
		baseURL:       s.baseURL,
		metrics:       s.metrics,
		now:           s.now,
		expiry:        s.expiry,
		cacheDisabled: s.cacheDisabled,
	}
}

// Mode reports the session's primary authentication mode: AuthAPIKey when
// an API key was supplied, AuthCredentials otherwise.
func (s *Session) Mode() AuthMode {
	if s.apiKey != nil {
		return AuthAPIKey
	}
	return AuthCredentials
}

// HasWebLogin reports whether the session can reach login-only pages.
func (s *Session) HasWebLogin() bool {
	return s.web != nil
}

// Username returns the web login name, if any.
func (s *Session) Username() string {
	if s.web == nil {
		return ""
	}
	return s.web.username
}

// Store returns the session's cache store.
func (s *Session) Store() *cache.Store {
	return s.store
}

func (s *Session) CacheExpiry() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiry
}

// SetCacheExpiry overrides the expiry used for subsequent cache reads. A
// non-positive value disables caching.
func (s *Session) SetCacheExpiry(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiry = d
}

// DisableCache makes every subsequent request bypass the cache store.
func (s *Session) DisableCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheDisabled = true
}

func (s *Session) cacheEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.cacheDisabled && s.expiry > 0
}

// identity returns the auth identity that scopes cache keys for family, or
// false if the session holds no credentials for it.
func (s *Session) identity(family Family) (string, bool) {
	switch family {
	case FamilyAPI:
		if s.apiKey == nil {
			return "", false
		}
		sum := sha256.Sum256([]byte(s.apiKey.key))
		return "key:" + hex.EncodeToString(sum[:]), true
	case FamilyWeb:
		if s.web == nil {
			return "", false
		}
		// keyed by user rather than cookie so that entries survive re-login
		return "user:" + strings.ToLower(s.web.username), true
	}
	return "", false
}
