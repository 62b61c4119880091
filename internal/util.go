/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseDateOrZero returns a parsed time or zero if input is empty or "null".
// Dates without a zone are interpreted as UTC.
func ParseDateOrZero(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return time.Time{}, nil
	}
	return dateparse.ParseIn(s, time.UTC)
}

// Truncate returns at most max bytes of b.
func Truncate(b []byte, max int) []byte {
	if len(b) <= max {
		return b
	}
	return b[:max]
}
