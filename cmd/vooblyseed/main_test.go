/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mikeb26/voobly/voobly"
)

func newSeedServer(t *testing.T, busy *atomic.Bool) *httptest.Server {
	users := map[string]int{"Alice": 1, "Bob": 2}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter,
		r *http.Request) {

		if busy.Load() {
			fmt.Fprint(w, "too-busy")
			return
		}
		path := strings.TrimPrefix(r.URL.Path, "/api/")
		switch {
		case strings.HasPrefix(path, "finduser/"):
			fmt.Fprint(w, "uid,display_name\n")
			name := strings.TrimPrefix(path, "finduser/")
			if uid, ok := users[name]; ok {
				fmt.Fprintf(w, "%d,%v\n", uid, name)
			}
		case strings.HasPrefix(path, "user/"):
			uid := strings.TrimPrefix(path, "user/")
			fmt.Fprintf(w, "uid,display_name\n%v,someone\n", uid)
		case strings.HasPrefix(path, "ladder/"):
			fmt.Fprint(w, "rank,uid,display_name,rating\n")
			if uid := r.URL.Query().Get("uid"); uid != "" {
				fmt.Fprintf(w, "1,%v,someone,1500\n", uid)
			}
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSeedUsers(t *testing.T) {
	var busy atomic.Bool
	srv := newSeedServer(t, &busy)
	s, err := voobly.GetSession(context.Background(), voobly.Credentials{Key: "k"},
		voobly.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}

	seeded, err := seedUsers(context.Background(), s,
		[]string{"Alice", "Mallory", " ", "Bob"}, voobly.Ladder(131), 2, 0)
	if err != nil {
		t.Fatalf("seedUsers returned error: %v", err)
	}
	if seeded != 2 {
		t.Errorf("seeded %v users; want 2", seeded)
	}
}

func TestSeedUsersStopsOnRateLimit(t *testing.T) {
	var busy atomic.Bool
	busy.Store(true)
	srv := newSeedServer(t, &busy)
	s, err := voobly.GetSession(context.Background(), voobly.Credentials{Key: "k"},
		voobly.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}

	_, err = seedUsers(context.Background(), s, []string{"Alice", "Bob"},
		voobly.Ladder(131), 1, 0)
	if voobly.KindOf(err) != voobly.KindRateLimit {
		t.Errorf("expected RATE_LIMIT error, got %v", err)
	}
}
