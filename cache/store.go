/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package cache stores raw responses keyed by a request fingerprint. Entries
// carry the time they were stored; whether an entry is still usable is
// decided by the reader, against the expiry it is configured with.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/gregjones/httpcache"
)

// Entry is one cached response.
type Entry struct {
	Body        []byte    `json:"body"`
	ContentType string    `json:"contentType"`
	Stored      time.Time `json:"stored"`
}

// Opener produces the backend a Store persists entries in.
type Opener func() (httpcache.Cache, error)

// Store is a lazily initialized key/value store of Entries on top of any
// httpcache.Cache backend. It is safe for concurrent use.
type Store struct {
	open Opener

	// mu guards backend; init is only called with mu held
	mu      sync.Mutex
	once    sync.Once
	backend httpcache.Cache
	openErr error
}

// New returns a Store whose backend is opened on first use. If opening
// fails the failure is logged and the Store behaves as an always-empty cache.
func New(open Opener) *Store {
	return &Store{open: open}
}

// NewWithBackend returns a Store over an already constructed backend.
func NewWithBackend(backend httpcache.Cache) *Store {
	return New(func() (httpcache.Cache, error) { return backend, nil })
}

func (s *Store) init() httpcache.Cache {
	s.once.Do(func() {
		s.backend, s.openErr = s.open()
		if s.openErr != nil {
			s.backend = nil
			log.Printf("cache.init: failed to open backend: %v; caching disabled",
				s.openErr)
		}
	})
	return s.backend
}

// Err reports why the backend could not be opened, if it could not.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.init()
	return s.openErr
}

// Get returns the entry stored under key regardless of its age.
func (s *Store) Get(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.get(key)
}

func (s *Store) get(key string) (Entry, bool) {
	backend := s.init()
	if backend == nil {
		return Entry{}, false
	}
	data, ok := backend.Get(key)
	if !ok {
		return Entry{}, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		log.Printf("cache.get: discarding undecodable entry %v: %v", key, err)
		return Entry{}, false
	}
	return entry, true
}

// Put stores entry under key, replacing whatever was there.
func (s *Store) Put(key string, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	backend := s.init()
	if backend == nil {
		return
	}
	data, err := json.Marshal(&entry)
	if err != nil {
		log.Printf("cache.put: failed to encode entry %v: %v", key, err)
		return
	}
	backend.Set(key, data)
}

// Lookup returns the entry under key only if it is still valid for expiry at
// now. An expired entry is reported as absent.
func (s *Store) Lookup(key string, expiry time.Duration,
	now time.Time) (Entry, bool) {

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.get(key)
	if !ok || !IsValid(entry, expiry, now) {
		return Entry{}, false
	}
	return entry, true
}

// Close releases the backend if it holds resources (e.g. a database handle).
// A backend that was never opened is left alone.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend == nil {
		return nil
	}
	if c, ok := s.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// IsValid reports whether entry is younger than expiry at now. A non-positive
// expiry never validates anything.
func IsValid(entry Entry, expiry time.Duration, now time.Time) bool {
	if expiry <= 0 {
		return false
	}
	return now.Sub(entry.Stored) < expiry
}

// Fingerprint derives the cache key for a request. Parameter order (both of
// keys and of repeated values) does not affect the result.
func Fingerprint(endpoint string, params url.Values, identity string) string {
	normalized := make(url.Values, len(params))
	for k, vs := range params {
		sorted := append([]string(nil), vs...)
		sort.Strings(sorted)
		normalized[k] = sorted
	}

	h := sha256.New()
	io.WriteString(h, endpoint)
	h.Write([]byte{0})
	// Encode sorts by key
	io.WriteString(h, normalized.Encode())
	h.Write([]byte{0})
	io.WriteString(h, identity)

	return hex.EncodeToString(h.Sum(nil))
}
