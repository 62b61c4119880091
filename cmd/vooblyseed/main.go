/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mikeb26/voobly/internal/config"
	"github.com/mikeb26/voobly/voobly"
)

// this program exists just to seed the voobly cache ahead of the bot

func main() {
	ctx := context.Background()

	ladder := flag.String("ladder", "RM - 1v1", "Ladder to seed")
	pages := flag.Int("pages", 1, "Number of 40 row ladder pages to seed")
	workers := flag.Int("workers", 2, "Concurrent requests")
	delay := flag.Duration("delay", 2*time.Second, "Pause after each request")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("vooblyseed: %v", err)
	}
	if os.Getenv(config.EnvCache) == "" {
		cfg.Cache = config.CacheSqlite
	}
	s, err := cfg.NewSession(ctx)
	if err != nil {
		log.Fatalf("vooblyseed: %v", err)
	}
	defer s.Store().Close()

	names := flag.Args()
	for page := 0; page < *pages; page++ {
		entries, err := s.GetLadder(ctx, voobly.LadderNamed(*ladder),
			voobly.LadderQuery{Start: page * voobly.LadderResultLimit})
		time.Sleep(*delay) // avoid pegging voobly.com
		if err != nil {
			log.Printf("vooblyseed: ladder page %v: %v", page, err)
			break
		}
		for _, e := range entries {
			names = append(names, e.Name)
		}
		fmt.Printf("seeded ladder page %v\n", page)
		if len(entries) < voobly.LadderResultLimit {
			break
		}
	}

	seeded, err := seedUsers(ctx, s, names, voobly.LadderNamed(*ladder),
		*workers, *delay)
	if err != nil {
		log.Fatalf("vooblyseed: %v", err)
	}
	fmt.Printf("seeded %v of %v users\n", seeded, len(names))
}

// seedUsers fetches each user's summary so it lands in the cache. Failures
// for individual users are logged and skipped; only rate limiting aborts.
func seedUsers(ctx context.Context, s *voobly.Session, names []string,
	ladder voobly.LadderRef, workers int, delay time.Duration) (int, error) {

	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	results := make(chan string, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		name := name // per-iteration copy for the closure (go 1.21 loop semantics)
		g.Go(func() error {
			_, err := s.User(gctx, name, ladder)
			time.Sleep(delay) // avoid pegging voobly.com
			if err != nil {
				if voobly.KindOf(err) == voobly.KindRateLimit {
					return fmt.Errorf("seeding %v: %w", name, err)
				}
				// best effort
				log.Printf("vooblyseed: %v: %v", name, err)
				return nil
			}
			results <- name
			return nil
		})
	}
	err := g.Wait()
	close(results)

	seeded := 0
	for name := range results {
		fmt.Printf("seeded %v\n", name)
		seeded++
	}
	return seeded, err
}
