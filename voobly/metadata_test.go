/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package voobly

import (
	"errors"
	"sort"
	"testing"
)

func TestLookupLadderID(t *testing.T) {
	tests := []struct {
		name string
		want LadderID
	}{
		{"RM - 1v1", 131},
		{"RM - Team Games", 132},
		{"DM - 1v1", 163},
	}
	for _, tt := range tests {
		got, err := LookupLadderID(tt.name)
		if err != nil || got != tt.want {
			t.Errorf("LookupLadderID(%q) = %v, %v; want %v", tt.name, got, err, tt.want)
		}
	}
	if _, err := LookupLadderID("rm - 1v1"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected lookups to be exact, got %v", err)
	}
}

func TestLookupGameID(t *testing.T) {
	got, err := LookupGameID("Age of Empires II: The Conquerors")
	if err != nil || got != 13 {
		t.Errorf("LookupGameID = %v, %v; want 13", got, err)
	}
	if _, err := LookupGameID("Pong"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected VALIDATION for unknown game, got %v", err)
	}
}

func TestMetadataNames(t *testing.T) {
	for _, names := range [][]string{LadderNames(), GameNames()} {
		if len(names) == 0 {
			t.Errorf("expected embedded names")
		}
		if !sort.StringsAreSorted(names) {
			t.Errorf("expected sorted names, got %v", names)
		}
	}
}
