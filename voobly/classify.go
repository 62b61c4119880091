/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package voobly

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Markers voobly uses to report failures inside otherwise successful
// responses.
const (
	apiBadKey        = "bad-key"
	apiTooBusy       = "too-busy"
	apiValidKey      = "valid-key"
	pageAccessFailed = "Page Access Failed"
	pageNotFound     = "Page Not Found"
)

// classify maps an HTTP response onto an *Error, or nil if it is a success.
// All knowledge of voobly's error shapes lives here.
func classify(ep Endpoint, status int, contentType string, body []byte) error {
	switch {
	case status == http.StatusTooManyRequests:
		return newError(KindRateLimit, ep, "rate limited", body, nil)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return newError(KindAuth, ep, fmt.Sprintf("status %d", status), body, nil)
	case status == http.StatusNotFound:
		return newError(KindNotFound, ep, "page not found", body, nil)
	case status < 200 || status > 299:
		return newError(KindBadResponse, ep, fmt.Sprintf("unexpected status %d",
			status), body, nil)
	}

	if ep.Family == FamilyAPI {
		switch strings.TrimSpace(string(body)) {
		case apiBadKey:
			return newError(KindAuth, ep, "bad api key", body, nil)
		case apiTooBusy:
			return newError(KindRateLimit, ep, "service too busy", body, nil)
		case "":
			return newError(KindBadResponse, ep, "no data returned", body, nil)
		}
		return nil
	}

	if !isTextual(contentType) {
		return nil
	}
	if bytes.Contains(body, []byte(pageAccessFailed)) {
		return newError(KindAuth, ep, "not logged in", body, nil)
	}
	if bytes.Contains(body, []byte(pageNotFound)) {
		return newError(KindNotFound, ep, "page not found", body, nil)
	}
	return nil
}

// isTextual reports whether a body of contentType could carry an HTML error
// page. Unlabelled bodies are treated as text.
func isTextual(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return true
	}
	return strings.HasPrefix(mediaType, "text/") ||
		mediaType == "application/xhtml+xml"
}

// loginRejected reports whether a page returned by the login form indicates
// the credentials were not accepted.
func loginRejected(body []byte) bool {
	if bytes.Contains(body, []byte(pageAccessFailed)) {
		return true
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return true
	}
	// a successful login never serves the login form back
	return doc.Find("form[action*='login/auth']").Length() > 0 ||
		doc.Find("input[type='password']").Length() > 0
}
