/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package voobly

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestGetLadder(t *testing.T) {
	ctx := context.Background()
	f := newFakeVoobly(t)
	s := testSessionFor(t, f, Credentials{Key: testKey})

	entries, err := s.GetLadder(ctx, LadderNamed("RM - 1v1"), LadderQuery{})
	if err != nil {
		t.Fatalf("GetLadder returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %v", len(entries))
	}
	want := LadderEntry{Rank: 1, UserID: 123, Name: "Alice", Rating: 1650,
		Wins: 10, Losses: 2, Streak: 3}
	got := entries[0]
	got.Raw = nil
	if !reflect.DeepEqual(got, want) {
		t.Errorf("entries[0] = %+v; want %+v", got, want)
	}
	if entries[0].Raw["display_name"] != "Alice" {
		t.Errorf("expected raw record to be kept")
	}

	// equivalent by id
	if _, err := s.GetLadder(ctx, Ladder(131), LadderQuery{}); err != nil {
		t.Fatalf("GetLadder returned error: %v", err)
	}
	if f.Hits("/api/ladder/131") != 1 {
		t.Errorf("expected name and id lookups to share a cache entry")
	}
}

func TestGetLadderValidation(t *testing.T) {
	f := newFakeVoobly(t)
	s := testSessionFor(t, f, Credentials{Key: testKey})

	tests := []struct {
		name  string
		ref   LadderRef
		query LadderQuery
	}{
		{"limit too large", Ladder(131), LadderQuery{Limit: LadderResultLimit + 1}},
		{"negative limit", Ladder(131), LadderQuery{Limit: -1}},
		{"negative start", Ladder(131), LadderQuery{Start: -1}},
		{"unknown name", LadderNamed("RM - 9v9"), LadderQuery{}},
		{"zero id", Ladder(0), LadderQuery{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.GetLadder(context.Background(), tt.ref, tt.query)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected VALIDATION, got %v", err)
			}
		})
	}
	if f.TotalHits() != 0 {
		t.Errorf("expected no network calls, got %v", f.TotalHits())
	}
}

func TestGetLadderMaxLimit(t *testing.T) {
	f := newFakeVoobly(t)
	s := testSessionFor(t, f, Credentials{Key: testKey})

	_, err := s.GetLadder(context.Background(), Ladder(131),
		LadderQuery{Limit: LadderResultLimit})
	if err != nil {
		t.Errorf("expected limit %v to be accepted, got %v", LadderResultLimit, err)
	}
}

func TestGetLadderUserListRanksAreLocal(t *testing.T) {
	f := newFakeVoobly(t)
	s := testSessionFor(t, f, Credentials{Key: testKey})

	entries, err := s.GetLadder(context.Background(), Ladder(131),
		LadderQuery{UserIDs: []UserID{456}})
	if err != nil {
		t.Fatalf("GetLadder returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].UserID != 456 || entries[0].Rank != 1 {
		t.Errorf("expected Bob ranked 1 within the result set, got %+v", entries)
	}
}

func TestGetLadderEntry(t *testing.T) {
	ctx := context.Background()
	f := newFakeVoobly(t)
	s := testSessionFor(t, f, Credentials{Key: testKey})

	entry, err := s.GetLadderEntry(ctx, Ladder(131), 456)
	if err != nil {
		t.Fatalf("GetLadderEntry returned error: %v", err)
	}
	if entry.Rank != 2 || entry.Rating != 1588 {
		t.Errorf("unexpected entry %+v", entry)
	}

	_, err = s.GetLadderEntry(ctx, Ladder(163), 456)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected NOT_FOUND for unranked user, got %v", err)
	}
}
