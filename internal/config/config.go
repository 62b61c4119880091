/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package config builds voobly sessions for the commands in this repository
// from environment variables, optionally loaded from a .env file.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/joho/godotenv"

	"github.com/mikeb26/voobly/cache"
	"github.com/mikeb26/voobly/internal"
	"github.com/mikeb26/voobly/s3cache"
	"github.com/mikeb26/voobly/sqlitecache"
	"github.com/mikeb26/voobly/voobly"
)

const (
	EnvKey         = "VOOBLY_KEY"
	EnvUsername    = "VOOBLY_USERNAME"
	EnvPassword    = "VOOBLY_PASSWORD"
	EnvCache       = "VOOBLY_CACHE"
	EnvCachePath   = "VOOBLY_CACHE_PATH"
	EnvCacheExpiry = "VOOBLY_CACHE_EXPIRY"
)

// Cache backends selectable through VOOBLY_CACHE.
const (
	CacheMemory = "memory"
	CacheDisk   = "disk"
	CacheSqlite = "sqlite"
	CacheS3     = "s3"
	CacheNone   = "none"
)

type Config struct {
	Key      string
	Username string
	Password string
	// Cache is one of the Cache* backend names.
	Cache string
	// CachePath is the disk directory, sqlite file or S3 bucket.
	CachePath   string
	CacheExpiry time.Duration
}

// Load reads the configuration from the environment after merging in
// envFiles (by default .env in the working directory) where they exist.
// Variables already set in the environment win over the files.
func Load(envFiles ...string) (Config, error) {
	_ = godotenv.Load(envFiles...)

	cfg := Config{
		Key:         os.Getenv(EnvKey),
		Username:    os.Getenv(EnvUsername),
		Password:    os.Getenv(EnvPassword),
		Cache:       strings.ToLower(strings.TrimSpace(os.Getenv(EnvCache))),
		CachePath:   os.Getenv(EnvCachePath),
		CacheExpiry: voobly.DefaultCacheExpiry,
	}
	if cfg.Cache == "" {
		cfg.Cache = CacheDisk
	}
	if v := os.Getenv(EnvCacheExpiry); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("config.load: invalid %v %q: %w", EnvCacheExpiry,
				v, err)
		}
		cfg.CacheExpiry = d
	}
	return cfg, nil
}

func (cfg Config) Credentials() voobly.Credentials {
	return voobly.Credentials{
		Key:      cfg.Key,
		Username: cfg.Username,
		Password: cfg.Password,
	}
}

// OpenStore returns the cache store cfg selects, or nil for CacheNone. The
// backend itself is opened on first use.
func (cfg Config) OpenStore(ctx context.Context) (*cache.Store, error) {
	switch cfg.Cache {
	case CacheNone:
		return nil, nil
	case CacheMemory:
		return cache.New(cache.Memory()), nil
	case CacheDisk:
		dir := cfg.CachePath
		if dir == "" {
			dir = filepath.Join(defaultCacheDir(), "http")
		}
		return cache.New(cache.Disk(dir)), nil
	case CacheSqlite:
		path := cfg.CachePath
		if path == "" {
			path = filepath.Join(defaultCacheDir(), "cache.db")
		}
		return cache.New(func() (httpcache.Cache, error) {
			c, err := sqlitecache.Open(path, true)
			if err != nil {
				return nil, err
			}
			return c, nil
		}), nil
	case CacheS3:
		bucket := cfg.CachePath
		if bucket == "" {
			bucket = internal.WebCacheBucket
		}
		return cache.New(func() (httpcache.Cache, error) {
			c := s3cache.New(ctx, bucket, s3cache.DefaultPrefix, true, true)
			if err := c.Init(); err != nil {
				return nil, err
			}
			return c, nil
		}), nil
	}
	return nil, fmt.Errorf("config.store: unknown cache backend %q (want one of %v)",
		cfg.Cache, strings.Join(CacheBackends(), ", "))
}

func CacheBackends() []string {
	return []string{CacheMemory, CacheDisk, CacheSqlite, CacheS3, CacheNone}
}

// NewSession opens the configured store and authenticates. opts are applied
// after the configured ones.
func (cfg Config) NewSession(ctx context.Context,
	opts ...voobly.Option) (*voobly.Session, error) {

	store, err := cfg.OpenStore(ctx)
	if err != nil {
		return nil, err
	}

	base := []voobly.Option{voobly.WithCacheExpiry(cfg.CacheExpiry)}
	if store == nil {
		base = append(base, voobly.WithCacheDisabled())
	} else {
		base = append(base, voobly.WithCache(store))
	}
	return voobly.GetSession(ctx, cfg.Credentials(), append(base, opts...)...)
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "voobly")
}
