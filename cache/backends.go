/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package cache

import (
	"fmt"
	"os"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
)

// Memory opens a process-lifetime in-memory backend.
func Memory() Opener {
	return func() (httpcache.Cache, error) {
		return httpcache.NewMemoryCache(), nil
	}
}

// Disk opens a file-per-entry backend rooted at dir, creating dir if needed.
func Disk(dir string) Opener {
	return func() (httpcache.Cache, error) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("cache.disk: creating %v: %w", dir, err)
		}
		return diskcache.New(dir), nil
	}
}
