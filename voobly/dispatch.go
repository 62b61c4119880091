/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package voobly

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/mikeb26/voobly/cache"
)

// Family selects how a request is authorized.
type Family int

const (
	// FamilyAPI endpoints live under /api/ and take the key as a parameter.
	FamilyAPI Family = iota
	// FamilyWeb endpoints are site pages requiring a web login cookie.
	FamilyWeb
)

// Endpoint identifies one remote resource. Name is a low-cardinality label
// (e.g. "ladder"); Path is relative to /api/ for FamilyAPI and to the site
// root for FamilyWeb.
type Endpoint struct {
	Family Family
	Name   string
	Path   string
}

func apiEndpoint(name, path string) Endpoint {
	return Endpoint{Family: FamilyAPI, Name: name, Path: path}
}

func webEndpoint(name, path string) Endpoint {
	return Endpoint{Family: FamilyWeb, Name: name, Path: path}
}

func (ep Endpoint) String() string {
	if ep.Family == FamilyAPI {
		return "api:" + ep.Path
	}
	return "web:" + ep.Path
}

// Response is a successful, classified response body.
type Response struct {
	Body        []byte
	ContentType string
	FromCache   bool
}

type requestConfig struct {
	noCache bool
	decode  func(body []byte) error
}

type RequestOption func(*requestConfig)

// NoCache neither consults nor populates the cache for this request.
func NoCache() RequestOption {
	return func(c *requestConfig) {
		c.noCache = true
	}
}

// WithDecoder runs decode on the body before Request returns it. A body that
// fails to decode is not cached, and a cached body that fails to decode is
// dropped in favor of a fresh fetch. decode's error is returned as is.
func WithDecoder(decode func(body []byte) error) RequestOption {
	return func(c *requestConfig) {
		c.decode = decode
	}
}

// Request fetches ep with params, serving it from cache when a valid entry
// exists. Exactly one HTTP attempt is made on a miss; failures, including
// bodies rejected by a WithDecoder hook, are never cached.
func (s *Session) Request(ctx context.Context, ep Endpoint, params url.Values,
	opts ...RequestOption) (*Response, error) {

	var cfg requestConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	identity, ok := s.identity(ep.Family)
	if !ok {
		err := newError(KindAuth, ep, missingCredentialsMsg(ep.Family), nil, nil)
		s.metrics.recordError(ep, err)
		return nil, err
	}

	key := cache.Fingerprint(ep.String(), params, identity)
	useCache := !cfg.noCache && s.cacheEnabled()
	if useCache {
		entry, ok := s.store.Lookup(key, s.CacheExpiry(), s.now())
		if ok && cfg.decode != nil {
			if err := cfg.decode(entry.Body); err != nil {
				log.Printf("voobly.request: discarding cached %v: %v", ep, err)
				ok = false
			}
		}
		if ok {
			s.metrics.recordCacheHit(ep)
			return &Response{
				Body:        entry.Body,
				ContentType: entry.ContentType,
				FromCache:   true,
			}, nil
		}
		s.metrics.recordCacheMiss(ep)
	}

	resp, err := s.fetch(ctx, ep, params)
	if err == nil && cfg.decode != nil {
		err = cfg.decode(resp.Body)
	}
	if err != nil {
		s.metrics.recordError(ep, err)
		log.Printf("voobly.request: %v", err)
		return nil, err
	}

	if useCache {
		s.store.Put(key, cache.Entry{
			Body:        resp.Body,
			ContentType: resp.ContentType,
			Stored:      s.now(),
		})
	}
	return resp, nil
}

func missingCredentialsMsg(family Family) string {
	if family == FamilyAPI {
		return "session has no api key"
	}
	return "session has no web login"
}

// redactedKey stands in for the api key wherever a request URL is reported.
const redactedKey = "REDACTED"

func (s *Session) requestURL(ep Endpoint, params url.Values, key string) string {
	q := url.Values{}
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}

	var u string
	if ep.Family == FamilyAPI {
		q.Set("key", key)
		u = fmt.Sprintf("%v/api/%v", s.baseURL, ep.Path)
	} else {
		u = s.baseURL + ep.Path
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// fetch performs the single network attempt and classifies the result.
func (s *Session) fetch(ctx context.Context, ep Endpoint,
	params url.Values) (*Response, error) {

	var key string
	if ep.Family == FamilyAPI {
		key = s.apiKey.key
	}
	req, err := http.NewRequestWithContext(ctx, "GET", s.requestURL(ep, params, key), nil)
	if err != nil {
		return nil, newError(KindBadResponse, ep, "building request", nil,
			s.redactURL(err, ep, params))
	}
	if ep.Family == FamilyWeb {
		for _, c := range s.web.cookies {
			req.AddCookie(c)
		}
	}

	s.metrics.recordRequest(ep)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindNetwork, ep, "request failed", nil,
			s.redactURL(err, ep, params))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindNetwork, ep, "reading response", nil,
			s.redactURL(err, ep, params))
	}

	contentType := resp.Header.Get("Content-Type")
	if err := classify(ep, resp.StatusCode, contentType, body); err != nil {
		return nil, err
	}

	return &Response{Body: body, ContentType: contentType}, nil
}

// redactURL rewrites the URL carried by a *url.Error so the api key never
// reaches error text or logs.
func (s *Session) redactURL(err error, ep Endpoint, params url.Values) error {
	var uerr *url.Error
	if ep.Family == FamilyAPI && errors.As(err, &uerr) {
		uerr.URL = s.requestURL(ep, params, redactedKey)
	}
	return err
}
