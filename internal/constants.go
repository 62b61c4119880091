/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

const (
	UserAgent      = "voobly/0.3.0 (+https://github.com/mikeb26/voobly)"
	BaseURL        = "https://www.voobly.com"
	WebCacheBucket = "bopmatic-voobly-prod-webcache"
)
