/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package sqlitecache

import (
	"path/filepath"
	"testing"

	"github.com/gregjones/httpcache/test"
)

func TestSqliteCache(t *testing.T) {
	cache, err := Open(filepath.Join(t.TempDir(), "cache.db"), true)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer cache.Close()

	test.Cache(t, cache)
}

func TestSqliteCachePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "cache.db")

	cache, err := Open(path, true)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	cache.Set("k", []byte("v1"))
	cache.Set("k", []byte("v2"))
	cache.Close()

	cache, err = Open(path, true)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer cache.Close()

	data, ok := cache.Get("k")
	if !ok || string(data) != "v2" {
		t.Errorf("expected v2 after reopen, got %q (ok=%v)", data, ok)
	}
	n, err := cache.Len()
	if err != nil {
		t.Fatalf("Len returned error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 entry, got %v", n)
	}
}
