/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package voobly is a client for the voobly.com gaming platform.
//
// A Session authenticates either with an API key (for the CSV data API) or
// with a username and password (for match pages and recorded game
// downloads), or with both. Every request goes through Session.Request,
// which serves responses from a cache.Store while they are younger than the
// session's cache expiry, performs exactly one HTTP attempt otherwise, and
// reports failures as *Error values discriminated by Kind. Failed responses
// are never cached and nothing is retried.
//
//	s, err := voobly.GetSession(ctx, voobly.Credentials{Key: key},
//		voobly.WithCacheExpiry(24*time.Hour))
//	ladder, err := s.GetLadder(ctx, voobly.LadderNamed("RM - 1v1"),
//		voobly.LadderQuery{})
package voobly
